package calibration

import (
	"fmt"
	"strings"
	"time"
)

// CustomPreset is the preset name that requires an explicit size.
const CustomPreset = "Custom"

// Preset is a named reference object with a known size in millimeters.
type Preset struct {
	Name   string
	SizeMM float64
}

// Presets lists the built-in reference objects.
var Presets = []Preset{
	{Name: "Indian ₹5 Coin", SizeMM: 23.0},
	{Name: "Indian ₹10 Coin", SizeMM: 27.0},
	{Name: "Standard Credit Card", SizeMM: 85.6},
}

// DefaultPreset is used when no reference has been chosen.
const DefaultPreset = "Indian ₹5 Coin"

// Lookup resolves a preset name (case-insensitive) to its size. For the
// custom preset, custom is returned if it is a valid size.
func Lookup(name string, custom float64) (float64, error) {
	if strings.EqualFold(name, CustomPreset) {
		if !positive(custom) {
			return 0, fmt.Errorf("%w: custom reference size %g", ErrInvalidReference, custom)
		}
		return custom, nil
	}
	for _, p := range Presets {
		if strings.EqualFold(p.Name, name) {
			return p.SizeMM, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown reference %q", ErrInvalidReference, name)
}

// InstrumentReport summarizes the simulated instrument calibration for a
// nominal linear accuracy in microns.
type InstrumentReport struct {
	Date               time.Time `json:"date"`
	LinearAccuracy     float64   `json:"linear_accuracy"`
	VolumetricAccuracy float64   `json:"volumetric_accuracy"`
	Repeatability      float64   `json:"repeatability"`
}

// NewInstrumentReport derives volumetric accuracy and repeatability from
// the linear accuracy.
func NewInstrumentReport(accuracyMicrons float64, now time.Time) InstrumentReport {
	return InstrumentReport{
		Date:               now,
		LinearAccuracy:     accuracyMicrons,
		VolumetricAccuracy: accuracyMicrons * 1.5,
		Repeatability:      accuracyMicrons * 0.3,
	}
}

func (r InstrumentReport) String() string {
	return fmt.Sprintf("Date: %s\nLinear Accuracy: ±%gµm\nVolumetric Accuracy: ±%gµm\nRepeatability: ±%gµm",
		r.Date.Format(time.RFC3339), r.LinearAccuracy, r.VolumetricAccuracy, r.Repeatability)
}
