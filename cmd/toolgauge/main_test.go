package main

import (
	"errors"
	"flag"
	goimage "image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tool-gauge/internal/fit"
	"tool-gauge/internal/history"
	"tool-gauge/internal/measure"

	"gocv.io/x/gocv"
)

func TestParsePoints(t *testing.T) {
	pts, err := parsePoints("0,0, 10.5,0,0,0,5,-2")
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 4 || pts[1].X != 10.5 || pts[3].Y != -2 {
		t.Errorf("points = %v", pts)
	}

	for _, bad := range []string{"1,2,3", "a,b", ""} {
		if _, err := parsePoints(bad); err == nil {
			t.Errorf("parsePoints(%q) should fail", bad)
		}
	}
	if _, err := parsePoint("1,2,3,4"); err == nil {
		t.Error("parsePoint should reject two points")
	}
}

func TestParseKinds(t *testing.T) {
	kinds, err := parseKinds("all")
	if err != nil || len(kinds) != len(fit.Kinds) {
		t.Errorf("all = %v, %v", kinds, err)
	}
	kinds, err = parseKinds("height,inner")
	if err != nil || len(kinds) != 2 || kinds[0] != fit.Height || kinds[1] != fit.InnerDiameter {
		t.Errorf("height,inner = %v, %v", kinds, err)
	}
	if _, err := parseKinds("width"); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}

func TestRun_ManualSaveAndExport(t *testing.T) {
	dir := t.TempDir()
	cfg := measure.DefaultConfig()
	cfg.ReferenceSize = 10

	opts := options{
		manual:     "0,0,10,0,0,0,5,0",
		kind:       "diameter",
		view:       "top",
		save:       true,
		toolID:     "D5",
		dbPath:     filepath.Join(dir, "history.db"),
		exportCSV:  filepath.Join(dir, "out.csv"),
		exportJSON: filepath.Join(dir, "out.json"),
	}
	if err := run(cfg, opts); err != nil {
		t.Fatalf("run: %v", err)
	}

	entries, err := history.LoadFile(opts.exportJSON)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ToolID != "D5" {
		t.Fatalf("entries = %v", entries)
	}
	if m, ok := entries[0].Get(measure.ViewTop, fit.OuterDiameter); !ok || m.Value != 5 {
		t.Errorf("diameter = %+v", m)
	}

	data, err := os.ReadFile(opts.exportCSV)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), ",D5,,5,") {
		t.Errorf("csv = %q", data)
	}
}

func TestRun_ManualIncomplete(t *testing.T) {
	cfg := measure.DefaultConfig()
	err := run(cfg, options{manual: "0,0,10,0,3,3", kind: "diameter", view: "top"})
	if err == nil || !strings.Contains(err.Error(), "3 of 4") {
		t.Errorf("expected an incomplete point set error, got %v", err)
	}
}

func TestRun_ManualRejectsMultipleKinds(t *testing.T) {
	cfg := measure.DefaultConfig()
	for _, kind := range []string{"all", "ALL", "diameter,height"} {
		err := run(cfg, options{manual: "0,0,10,0,0,0,5,0", kind: kind, view: "top"})
		if err == nil || !strings.Contains(err.Error(), "one kind per point set") {
			t.Errorf("kind %q: expected a clear rejection, got %v", kind, err)
		}
	}
}

func TestIsFlagSet_ExplicitFalseOverridesStored(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{nil, true},
		{[]string{"-precise"}, true},
		{[]string{"-precise=false"}, false},
	}

	for _, tt := range tests {
		fs := flag.NewFlagSet("toolgauge", flag.ContinueOnError)
		precise := fs.Bool("precise", false, "")
		if err := fs.Parse(tt.args); err != nil {
			t.Fatal(err)
		}

		cfg := measure.DefaultConfig()
		cfg.Precision = true // stored preference
		if isFlagSet(fs, "precise") {
			cfg.Precision = *precise
		}
		if cfg.Precision != tt.want {
			t.Errorf("args %v: precision = %v, want %v", tt.args, cfg.Precision, tt.want)
		}
	}
}

func TestRun_AnalyzeNeedsDetections(t *testing.T) {
	cfg := measure.DefaultConfig()
	err := run(cfg, options{manual: "0,0,10,0,0,0,5,0", kind: "diameter", analyze: true})
	if !errors.Is(err, measure.ErrNoReferenceDetected) {
		t.Errorf("expected ErrNoReferenceDetected, got %v", err)
	}
}

func TestRun_AutoDetectsCircles(t *testing.T) {
	dir := t.TempDir()
	img := gocv.Zeros(300, 420, gocv.MatTypeCV8UC3)
	defer img.Close()
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gocv.Circle(&img, goimage.Pt(100, 150), 30, white, -1)
	gocv.Circle(&img, goimage.Pt(280, 150), 80, white, -1)

	imagePath := filepath.Join(dir, "endmill_top.png")
	if !gocv.IMWrite(imagePath, img) {
		t.Fatal("failed to write test image")
	}

	cfg := measure.DefaultConfig()
	cfg.ReferenceSize = 10
	opts := options{
		imagePath:  imagePath,
		auto:       true,
		analyze:    true,
		kind:       "diameter",
		save:       true,
		dbPath:     filepath.Join(dir, "history.db"),
		exportJSON: filepath.Join(dir, "out.json"),
	}
	if err := run(cfg, opts); err != nil {
		t.Fatalf("run: %v", err)
	}

	entries, err := history.LoadFile(opts.exportJSON)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %v", entries)
	}
	m, ok := entries[0].Get(measure.ViewTop, fit.OuterDiameter)
	if !ok || m.Value < 24 || m.Value > 29.5 {
		t.Errorf("tool diameter = %+v, want ~26.7 (80/30 of the reference)", m)
	}
}
