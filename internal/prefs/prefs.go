// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"tool-gauge/internal/calibration"
	"tool-gauge/internal/fit"
	"tool-gauge/internal/measure"
)

const (
	appDir      = "tool-gauge"
	prefsFile   = "preferences.json"
	historyFile = "history.db"
)

// Preference keys.
const (
	KeyReferencePreset = "reference_preset"
	KeyCustomSize      = "custom_reference_size"
	KeyStrategy        = "strategy"
	KeyKind            = "measurement_kind"
	KeyPrecision       = "precision_mode"
	KeyAccuracy        = "accuracy_mm"
	KeyOperator        = "operator"
	KeyHistoryDB       = "history_db"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Dir returns the application config directory.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir)
}

// Load reads preferences from <config dir>/tool-gauge/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	return LoadFrom(filepath.Join(Dir(), prefsFile))
}

// LoadFrom reads preferences from path. A missing or unreadable file yields
// empty preferences bound to path.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Path returns the file the preferences are saved to.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// FloatWithFallback returns a float64 preference, or fallback if not set.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// StringWithFallback returns a string preference, or fallback if not set.
func (p *Prefs) StringWithFallback(key, fallback string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	return p.StringWithFallback(key, "")
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if b, ok := p.values[key].(bool); ok {
		return b
	}
	return fallback
}

// SetBool stores a bool preference.
func (p *Prefs) SetBool(key string, val bool) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// HistoryPath returns the measurement history database path.
func (p *Prefs) HistoryPath() string {
	return p.StringWithFallback(KeyHistoryDB, filepath.Join(filepath.Dir(p.path), historyFile))
}

// Settings builds a session configuration from the stored preferences,
// falling back to measure.DefaultConfig for anything unset.
func (p *Prefs) Settings() (measure.Config, error) {
	cfg := measure.DefaultConfig()

	size, err := calibration.Lookup(
		p.StringWithFallback(KeyReferencePreset, calibration.DefaultPreset),
		p.FloatWithFallback(KeyCustomSize, 0),
	)
	if err != nil {
		return cfg, err
	}
	cfg.ReferenceSize = size

	if s := p.String(KeyStrategy); s != "" {
		if cfg.Strategy, err = fit.ParseStrategy(s); err != nil {
			return cfg, err
		}
	}
	if s := p.String(KeyKind); s != "" {
		if cfg.Kind, err = fit.ParseKind(s); err != nil {
			return cfg, err
		}
	}
	cfg.Precision = p.Bool(KeyPrecision, false)
	cfg.Accuracy = p.FloatWithFallback(KeyAccuracy, measure.DefaultAccuracy)
	return cfg, nil
}

// SetSettings stores cfg. preset names the reference the size came from;
// any name other than a built-in preset is stored as a custom size.
func (p *Prefs) SetSettings(cfg measure.Config, preset string) {
	if size, err := calibration.Lookup(preset, 0); err == nil && size == cfg.ReferenceSize {
		p.SetString(KeyReferencePreset, preset)
	} else {
		p.SetString(KeyReferencePreset, calibration.CustomPreset)
		p.SetFloat(KeyCustomSize, cfg.ReferenceSize)
	}
	p.SetString(KeyStrategy, cfg.Strategy.String())
	p.SetString(KeyKind, cfg.Kind.String())
	p.SetBool(KeyPrecision, cfg.Precision)
	p.SetFloat(KeyAccuracy, cfg.Accuracy)
}
