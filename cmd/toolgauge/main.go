// Command toolgauge measures a tool against a reference object in a photo
// and keeps a history of saved measurements.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"tool-gauge/internal/calibration"
	"tool-gauge/internal/fit"
	"tool-gauge/internal/history"
	"tool-gauge/internal/measure"
	"tool-gauge/internal/photo"
	"tool-gauge/internal/prefs"
	"tool-gauge/internal/shape"
	"tool-gauge/internal/version"
	"tool-gauge/pkg/geometry"
)

type options struct {
	imagePath string
	refClick  string
	toolClick string
	manual    string
	kind      string
	view      string
	maxDim    int
	auto      bool
	analyze   bool

	save     bool
	toolID   string
	operator string
	notes    string

	historyN   int
	exportCSV  string
	exportJSON string
	dbPath     string
	report     bool
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	prefsPath := flag.String("prefs", "", "Preferences file (default: user config dir)")
	reference := flag.String("reference", "", "Reference preset name, or Custom")
	size := flag.Float64("size", 0, "Custom reference size in mm")
	strategy := flag.String("strategy", "", "Fit strategy: automatic or manual")
	precise := flag.Bool("precise", false, "Enable precision mode")
	savePrefs := flag.Bool("save-prefs", false, "Store the reference, strategy and precision settings")

	var opts options
	flag.StringVar(&opts.imagePath, "image", "", "Photo of the reference and tool (JPEG, PNG, TIFF, WebP)")
	flag.StringVar(&opts.refClick, "ref", "", "Click point on the reference object: x,y")
	flag.StringVar(&opts.toolClick, "tool", "", "Click point on the tool: x,y")
	flag.StringVar(&opts.manual, "manual", "", "Manual points: x1,y1,x2,y2,x3,y3,x4,y4")
	flag.StringVar(&opts.kind, "kind", "", "Measurement: diameter, inner_diameter, height or all")
	flag.StringVar(&opts.view, "view", "", "View: top or side (default: guessed from the image name, else top)")
	flag.IntVar(&opts.maxDim, "max-dim", 0, "Downsize photos larger than this many pixels")
	flag.BoolVar(&opts.auto, "auto", false, "Detect circles instead of clicking: smallest is the reference, largest the tool")
	flag.BoolVar(&opts.analyze, "analyze", false, "Print a shape analysis of the detected tool")
	flag.BoolVar(&opts.save, "save", false, "Save the measurements to the history database")
	flag.StringVar(&opts.toolID, "tool-id", "", "Tool identifier stored with -save")
	flag.StringVar(&opts.operator, "operator", "", "Operator name stored with -save")
	flag.StringVar(&opts.notes, "notes", "", "Notes stored with -save")
	flag.IntVar(&opts.historyN, "history", 0, "List the N most recent history entries")
	flag.StringVar(&opts.exportCSV, "export-csv", "", "Export the history to a CSV file")
	flag.StringVar(&opts.exportJSON, "export-json", "", "Export the history to a JSON file")
	flag.StringVar(&opts.dbPath, "db", "", "History database (default: next to the preferences)")
	flag.BoolVar(&opts.report, "report", false, "Print the instrument calibration report")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	var p *prefs.Prefs
	if *prefsPath != "" {
		p = prefs.LoadFrom(*prefsPath)
	} else {
		p = prefs.Load()
	}

	cfg, err := p.Settings()
	if err != nil {
		log.Printf("Ignoring stored settings: %v", err)
		cfg = measure.DefaultConfig()
	}

	if *reference != "" {
		if cfg.ReferenceSize, err = calibration.Lookup(*reference, *size); err != nil {
			fatalf("Invalid reference: %v", err)
		}
	} else if *size > 0 {
		cfg.ReferenceSize = *size
	}
	if *strategy != "" {
		if cfg.Strategy, err = fit.ParseStrategy(*strategy); err != nil {
			fatalf("%v", err)
		}
	}
	if isFlagSet(flag.CommandLine, "precise") {
		cfg.Precision = *precise
	}
	if opts.kind == "" {
		opts.kind = cfg.Kind.String()
	}
	if opts.operator == "" {
		opts.operator = p.String(prefs.KeyOperator)
	}
	if opts.dbPath == "" {
		opts.dbPath = p.HistoryPath()
	}

	if *savePrefs {
		name := *reference
		if name == "" {
			name = p.StringWithFallback(prefs.KeyReferencePreset, calibration.DefaultPreset)
		}
		p.SetSettings(cfg, name)
		if opts.operator != "" {
			p.SetString(prefs.KeyOperator, opts.operator)
		}
		if err := p.Save(); err != nil {
			fatalf("Failed to save preferences: %v", err)
		}
		fmt.Printf("Preferences saved to %s\n", p.Path())
	}

	if err := run(cfg, opts); err != nil {
		fatalf("%v", err)
	}
}

// isFlagSet reports whether name was given on the command line, so an
// explicit -precise=false can override a stored preference.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func run(cfg measure.Config, opts options) error {
	if opts.report {
		fmt.Println(calibration.NewInstrumentReport(cfg.Accuracy*1000, time.Now()))
	}

	sess := measure.NewSession(cfg, fit.New())
	sess.On(measure.EventCalibrated, func(data interface{}) {
		fmt.Printf("Scale: %.4f px/mm\n", data.(calibration.State).PixelsPerUnit)
	})
	if opts.view != "" {
		view, err := measure.ParseView(opts.view)
		if err != nil {
			return err
		}
		sess.SetView(view)
	}

	fmt.Printf("Reference: %.3f mm  Strategy: %s  Precision: %v\n",
		cfg.ReferenceSize, cfg.Strategy, cfg.Precision)

	switch {
	case opts.manual != "":
		if err := runManual(sess, opts); err != nil {
			return err
		}
	case opts.imagePath != "":
		if err := runAutomatic(sess, opts); err != nil {
			return err
		}
	}

	if opts.analyze {
		a, err := sess.Analyze()
		if err != nil {
			return fmt.Errorf("analyze (needs -image): %w", err)
		}
		fmt.Print(a)
	}

	if opts.save || opts.historyN > 0 || opts.exportCSV != "" || opts.exportJSON != "" {
		return runHistory(sess, opts)
	}
	if opts.manual == "" && opts.imagePath == "" && !opts.report && !opts.analyze {
		flag.Usage()
	}
	return nil
}

func runManual(sess *measure.Session, opts options) error {
	if k := strings.TrimSpace(opts.kind); strings.EqualFold(k, "all") || strings.Contains(k, ",") {
		return fmt.Errorf("-manual measures one kind per point set, got -kind %q: use diameter, inner_diameter or height", opts.kind)
	}
	kind, err := fit.ParseKind(opts.kind)
	if err != nil {
		return err
	}
	sess.SetKind(kind)

	pts, err := parsePoints(opts.manual)
	if err != nil {
		return err
	}

	m := sess.Manual()
	for _, pt := range pts {
		rec, err := m.AddPoint(pt)
		if err != nil {
			return fmt.Errorf("point (%.1f, %.1f): %w", pt.X, pt.Y, err)
		}
		if rec != nil {
			fmt.Printf("%s: %s\n", sess.View(), rec)
		}
	}
	if len(m.Points()) > 0 {
		return fmt.Errorf("%w: %d of 4 points", measure.ErrIncompletePointSet, len(m.Points()))
	}
	return nil
}

func runAutomatic(sess *measure.Session, opts options) error {
	kinds, err := parseKinds(opts.kind)
	if err != nil {
		return err
	}
	if !opts.auto && (opts.refClick == "" || opts.toolClick == "") {
		return fmt.Errorf("automatic measurement needs -ref and -tool click points, or -auto")
	}

	ph, err := photo.Load(opts.imagePath, opts.maxDim)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded image: %dx%d pixels\n", ph.Width(), ph.Height())
	if ph.Scale != 1 {
		fmt.Printf("Resized by %.3f\n", ph.Scale)
	}
	if opts.view == "" && ph.ViewKnown {
		sess.SetView(ph.View)
	}

	ext := shape.NewExtractor()
	a := sess.Automatic()
	if opts.auto {
		circles, err := ext.CirclesFromImage(ph.Image)
		if err != nil {
			return err
		}
		ref, tool, err := shape.PairFromCircles(circles)
		if err != nil {
			return err
		}
		fmt.Printf("Found %d circles: reference %.1f px, tool %.1f px\n",
			len(circles), ref.Box.MaxSide(), tool.Box.MaxSide())
		a.SetObjects(ref, tool)
	} else {
		refClick, err := parsePoint(opts.refClick)
		if err != nil {
			return err
		}
		toolClick, err := parsePoint(opts.toolClick)
		if err != nil {
			return err
		}
		refClick, toolClick = ph.ToImage(refClick), ph.ToImage(toolClick)

		prims, err := ext.FromImage(ph.Image)
		if err != nil {
			return err
		}
		fmt.Printf("Found %d shapes\n", len(prims))
		if err := a.Select(refClick, toolClick, prims); err != nil {
			return err
		}
	}
	if err := a.Calibrate(); err != nil {
		return err
	}

	for _, kind := range kinds {
		rec, res, err := a.MeasureDetail(kind)
		if err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
		fmt.Printf("%s: %s  [%s", sess.View(), rec, res.Method)
		if !res.Fallback() && res.Radius > 0 {
			fmt.Printf(", r %.2f px at (%.1f, %.1f)", res.Radius, res.Center.X, res.Center.Y)
		}
		if res.Residual > 0 {
			fmt.Printf(", rms %.3f px", res.Residual)
		}
		fmt.Println("]")
	}
	return nil
}

func runHistory(sess *measure.Session, opts options) error {
	store, err := history.Open(opts.dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if opts.save {
		e, err := store.SaveNow(sess, history.Metadata{
			ToolID:   opts.toolID,
			Operator: opts.operator,
			Notes:    opts.notes,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Saved entry %s\n", e.ID)
	}

	if opts.historyN > 0 {
		entries, err := store.List(opts.historyN)
		if err != nil {
			return err
		}
		printEntries(entries)
	}

	if opts.exportCSV == "" && opts.exportJSON == "" {
		return nil
	}
	entries, err := store.List(0)
	if err != nil {
		return err
	}
	if opts.exportJSON != "" {
		if err := history.SaveFile(opts.exportJSON, entries); err != nil {
			return fmt.Errorf("export json: %w", err)
		}
		fmt.Printf("Exported %d entries to %s\n", len(entries), opts.exportJSON)
	}
	if opts.exportCSV != "" {
		f, err := os.Create(opts.exportCSV)
		if err != nil {
			return err
		}
		if err := history.WriteCSV(f, entries); err != nil {
			f.Close()
			return fmt.Errorf("export csv: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("Exported %d entries to %s\n", len(entries), opts.exportCSV)
	}
	return nil
}

func printEntries(entries []*history.Entry) {
	fmt.Printf("%-20s %-12s %-12s %-10s %s\n", "Timestamp", "Tool ID", "Operator", "View", "Measurements")
	fmt.Println(strings.Repeat("-", 80))
	for _, e := range entries {
		for _, v := range measure.Views {
			recs, ok := e.Views[v]
			if !ok {
				continue
			}
			var parts []string
			for _, kind := range fit.Kinds {
				m, ok := recs[kind]
				if !ok {
					continue
				}
				s := fmt.Sprintf("%s=%.4f", kind, m.Value)
				if m.Uncertainty != nil {
					s += fmt.Sprintf("±%.4f", *m.Uncertainty)
				}
				parts = append(parts, s)
			}
			fmt.Printf("%-20s %-12s %-12s %-10s %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.ToolID, e.Operator, v, strings.Join(parts, " "))
		}
	}
	fmt.Printf("\nTotal: %d entries\n", len(entries))
}

// parseKinds accepts a comma-separated list of kinds, or "all".
func parseKinds(s string) ([]fit.Kind, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return fit.Kinds, nil
	}
	var kinds []fit.Kind
	for _, part := range strings.Split(s, ",") {
		k, err := fit.ParseKind(part)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// parsePoint parses "x,y".
func parsePoint(s string) (geometry.Point2D, error) {
	pts, err := parsePoints(s)
	if err != nil {
		return geometry.Point2D{}, err
	}
	if len(pts) != 1 {
		return geometry.Point2D{}, fmt.Errorf("expected one x,y point, got %q", s)
	}
	return pts[0], nil
}

// parsePoints parses "x1,y1,x2,y2,...".
func parsePoints(s string) ([]geometry.Point2D, error) {
	fields := strings.Split(s, ",")
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("odd number of coordinates in %q", s)
	}
	pts := make([]geometry.Point2D, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad x coordinate %q", fields[i])
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad y coordinate %q", fields[i+1])
		}
		pts = append(pts, geometry.Point2D{X: x, Y: y})
	}
	return pts, nil
}
