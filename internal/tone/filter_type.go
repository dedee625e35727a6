// Package tone implements the per-channel linear filters that follow the
// waveshaper and the wet-path DC blocker.
package tone

import (
	"errors"
	"fmt"
	"strings"
)

// FilterType selects the tone filter of one channel.
type FilterType int

// Filter types. The 6 dB slopes are one-pole filters, the 12 dB slopes are
// taps of a state-variable filter.
const (
	None FilterType = iota
	LowPass6
	HighPass6
	LowPass12
	HighPass12
	BandPass12

	numFilterTypes
)

// ErrUnknownFilterType is returned by ParseFilterType for an unknown name.
var ErrUnknownFilterType = errors.New("unknown filter type")

var filterTypeNames = [numFilterTypes]string{
	None:       "none",
	LowPass6:   "lowpass6",
	HighPass6:  "highpass6",
	LowPass12:  "lowpass12",
	HighPass12: "highpass12",
	BandPass12: "bandpass12",
}

// String returns the filter type name.
func (f FilterType) String() string {
	if f < 0 || f >= numFilterTypes {
		return fmt.Sprintf("FilterType(%d)", int(f))
	}
	return filterTypeNames[f]
}

// ParseFilterType converts a name back to a FilterType.
func ParseFilterType(name string) (FilterType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range filterTypeNames {
		if n == name {
			return FilterType(i), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownFilterType, name)
}

// Count returns the number of filter types, for parameter ranges.
func Count() int { return int(numFilterTypes) }

// Valid reports whether f is a known type.
func (f FilterType) Valid() bool { return f >= 0 && f < numFilterTypes }

// Engaged reports whether the filter alters the signal.
func (f FilterType) Engaged() bool { return f > None && f < numFilterTypes }
