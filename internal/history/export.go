package history

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"tool-gauge/internal/fit"
	"tool-gauge/internal/measure"
)

// fileVersion is the version written to exported history files.
const fileVersion = 1

// File is the on-disk JSON form of a history export.
type File struct {
	Version  int       `json:"version"`
	Exported time.Time `json:"exported"`
	Entries  []*Entry  `json:"entries"`
}

// WriteJSON writes entries as an indented JSON document.
func WriteJSON(w io.Writer, entries []*Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(File{Version: fileVersion, Exported: time.Now(), Entries: entries})
}

// ReadJSON reads a document written by WriteJSON.
func ReadJSON(r io.Reader) ([]*Entry, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	if f.Version > fileVersion {
		return nil, fmt.Errorf("unsupported history file version %d", f.Version)
	}
	return f.Entries, nil
}

// SaveFile writes entries to a JSON file.
func SaveFile(path string, entries []*Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads entries from a JSON file.
func LoadFile(path string) ([]*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}

// csvHeader is the column layout of the CSV export.
var csvHeader = []string{"Timestamp", "Tool ID", "Operator", "Diameter (mm)", "Notes"}

// WriteCSV writes one row per entry with the top-view outer diameter.
// Entries without that measurement get an empty cell. Notes are flattened
// to a single line.
func WriteCSV(w io.Writer, entries []*Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range entries {
		diameter := ""
		if m, ok := e.Get(measure.ViewTop, fit.OuterDiameter); ok {
			diameter = fmt.Sprintf("%g", m.Value)
		}
		row := []string{
			e.Timestamp.Format(time.RFC3339),
			e.ToolID,
			e.Operator,
			diameter,
			strings.ReplaceAll(e.Notes, "\n", " "),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
