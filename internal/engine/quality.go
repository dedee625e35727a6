// Package engine implements the streaming 2x FIR stages the oversampler is
// built from.
package engine

import "fmt"

// Quality selects the stopband attenuation of the stage filters.
type Quality int

// Quality presets, from shortest filters to deepest stopband.
const (
	QualityQuick Quality = iota
	QualityLow
	QualityMedium
	QualityHigh // default
	QualityVeryHigh
)

// Each preset rejects images down to (bits+1)*6.02 dB.
const dbPerBit = 6.0206

var qualityPresets = [...]struct {
	name string
	bits int
}{
	QualityQuick:    {"quick", 8},
	QualityLow:      {"low", 16},
	QualityMedium:   {"medium", 18},
	QualityHigh:     {"high", 20},
	QualityVeryHigh: {"veryhigh", 28},
}

func (q Quality) valid() bool {
	return q >= 0 && int(q) < len(qualityPresets)
}

// Attenuation returns the stopband attenuation in dB. Unknown values use
// the QualityHigh figure.
func (q Quality) Attenuation() float64 {
	if !q.valid() {
		q = QualityHigh
	}
	return float64(qualityPresets[q].bits+1) * dbPerBit
}

func (q Quality) String() string {
	if !q.valid() {
		return fmt.Sprintf("Quality(%d)", int(q))
	}
	return qualityPresets[q].name
}

// ParseQuality maps a preset name to a Quality.
func ParseQuality(name string) (Quality, error) {
	for q := range qualityPresets {
		if qualityPresets[q].name == name {
			return Quality(q), nil
		}
	}
	return QualityHigh, fmt.Errorf("unknown quality preset %q", name)
}
