package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tool-gauge/internal/calibration"
	"tool-gauge/internal/fit"
	"tool-gauge/internal/measure"
)

func TestSettings_Defaults(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))

	cfg, err := p.Settings()
	if err != nil {
		t.Fatal(err)
	}
	if cfg != measure.DefaultConfig() {
		t.Errorf("settings = %+v, want defaults", cfg)
	}
	if got := filepath.Base(p.HistoryPath()); got != "history.db" {
		t.Errorf("history path = %s", p.HistoryPath())
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preferences.json")
	p := LoadFrom(path)

	cfg := measure.Config{
		ReferenceSize: 85.6,
		Strategy:      fit.Manual,
		Kind:          fit.InnerDiameter,
		Precision:     true,
		Accuracy:      0.001,
	}
	p.SetSettings(cfg, "standard credit card")
	if err := p.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := LoadFrom(path)
	if got := loaded.String(KeyReferencePreset); got != "standard credit card" {
		t.Errorf("preset = %q", got)
	}
	got, err := loaded.Settings()
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("settings = %+v, want %+v", got, cfg)
	}
}

func TestSettings_CustomSize(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "p.json"))
	cfg := measure.DefaultConfig()
	cfg.ReferenceSize = 12.5
	p.SetSettings(cfg, "my gauge block")

	if got := p.String(KeyReferencePreset); got != calibration.CustomPreset {
		t.Errorf("preset = %q, want custom", got)
	}
	got, err := p.Settings()
	if err != nil || got.ReferenceSize != 12.5 {
		t.Errorf("settings = %+v, %v", got, err)
	}
}

func TestSettings_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	if err := os.WriteFile(path, []byte(`{"reference_preset": "Custom", "custom_reference_size": -1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path).Settings(); !errors.Is(err, calibration.ErrInvalidReference) {
		t.Errorf("expected ErrInvalidReference, got %v", err)
	}

	p := LoadFrom(filepath.Join(t.TempDir(), "q.json"))
	p.SetString(KeyStrategy, "guess")
	if _, err := p.Settings(); err == nil {
		t.Error("expected an error for an unknown strategy")
	}
}

func TestLoadFrom_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := LoadFrom(path)
	if !p.Bool(KeyPrecision, true) {
		t.Error("corrupt file should fall back to defaults")
	}
}
