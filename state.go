package overdraw

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// State is a flat snapshot of every parameter and the knot list, for a
// host or preset file to persist.
type State struct {
	// Params maps parameter names to plain values. Knot parameters are
	// carried by Knots and ActiveKnots instead.
	Params map[string]float64 `yaml:"params"`

	// ActiveKnots is the number of leading knots in use.
	ActiveKnots int `yaml:"active_knots"`

	// Knots lists the knots in index order. An empty list leaves the
	// curve untouched when the state is applied.
	Knots []Knot `yaml:"knots,omitempty"`
}

// State captures the current parameter values and knots.
func (p *Processor) State() State {
	s := State{Params: make(map[string]float64, int(ParamKnotBase))}
	for id := range ParamKnotBase {
		if id == ParamActiveKnots {
			continue
		}
		s.Params[paramInfos[id].Name] = p.params.load(id)
	}
	s.Knots, s.ActiveKnots = p.Knots()
	return s
}

// SetState applies a snapshot. Unknown names or too many knots reject the
// whole state before anything changes; values are clamped like SetParameter.
func (p *Processor) SetState(s State) error {
	ids := make(map[ParamID]float64, len(s.Params))
	for name, v := range s.Params {
		id, err := ParamByName(name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidState, err)
		}
		if id >= ParamKnotBase || id == ParamActiveKnots {
			return fmt.Errorf("%w: %q belongs in the knot list", ErrInvalidState, name)
		}
		ids[id] = v
	}
	if len(s.Knots) > MaxKnots {
		return fmt.Errorf("%w: %d knots (max %d)", ErrInvalidState, len(s.Knots), MaxKnots)
	}

	for id, v := range ids {
		if err := p.SetParameter(id, v); err != nil {
			return err
		}
	}
	if len(s.Knots) > 0 {
		p.knots.Replace(s.Knots, s.ActiveKnots)
	}
	return nil
}

// LoadPreset decodes a YAML preset.
func LoadPreset(r io.Reader) (State, error) {
	var s State
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return State{}, fmt.Errorf("%w: empty preset", ErrInvalidState)
		}
		return State{}, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return s, nil
}

// SavePreset encodes s as YAML.
func SavePreset(w io.Writer, s State) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	return enc.Close()
}
