package overdraw

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/tphakala/go-overdraw/internal/curve"
	"github.com/tphakala/go-overdraw/internal/mathutil"
	"github.com/tphakala/go-overdraw/internal/oversampling"
	"github.com/tphakala/go-overdraw/internal/stereo"
	"github.com/tphakala/go-overdraw/internal/tone"
)

// ParamID identifies an automatable parameter.
type ParamID int

// Global parameters.
const (
	ParamMidSide ParamID = iota
	ParamSmoothingTime
	ParamOversampling
	ParamLinearPhase
	ParamDCFilter
	ParamActiveKnots

	// Linked parameters occupy three consecutive ids: link flag, channel 0,
	// channel 1.
	ParamSymmetryLink
	ParamSymmetry0
	ParamSymmetry1
	ParamWetLink
	ParamWet0
	ParamWet1
	ParamInputGainLink
	ParamInputGain0
	ParamInputGain1
	ParamOutputGainLink
	ParamOutputGain0
	ParamOutputGain1
	ParamFilterTypeLink
	ParamFilterType0
	ParamFilterType1
	ParamCutoffLink
	ParamCutoff0
	ParamCutoff1
	ParamResonanceLink
	ParamResonance0
	ParamResonance1
	ParamBandwidthLink
	ParamBandwidth0
	ParamBandwidth1

	// ParamKnotBase is the first per-knot id; see KnotParam.
	ParamKnotBase
)

// KnotField selects a coordinate of a knot parameter.
type KnotField int

// Knot parameter fields.
const (
	KnotX KnotField = iota
	KnotY
	KnotTension
	knotFields
)

var knotFieldNames = [knotFields]string{"X", "Y", "Tension"}

// numParams is the total parameter count including the knots.
const numParams = int(ParamKnotBase) + curve.MaxKnots*int(knotFields)

// KnotParam returns the id of one coordinate of knot i.
func KnotParam(i int, field KnotField) ParamID {
	return ParamKnotBase + ParamID(i*int(knotFields)+int(field))
}

// isKnot splits a knot parameter id into index and field.
func (id ParamID) isKnot() (index int, field KnotField, ok bool) {
	if id < ParamKnotBase || int(id) >= numParams {
		return 0, 0, false
	}
	off := int(id - ParamKnotBase)
	return off / int(knotFields), KnotField(off % int(knotFields)), true
}

// ParamKind describes how a parameter value is interpreted.
type ParamKind int

// Parameter kinds.
const (
	KindFloat ParamKind = iota
	KindBool
	KindChoice
)

// ParamInfo describes one parameter.
type ParamInfo struct {
	ID      ParamID
	Name    string
	Unit    string
	Kind    ParamKind
	Min     float64
	Max     float64
	Default float64
}

// Clamp limits v to the parameter range. Bool and choice values are rounded
// to the nearest step. NaN maps to the default.
func (pi ParamInfo) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return pi.Default
	}
	v = math.Max(pi.Min, math.Min(v, pi.Max))
	if pi.Kind != KindFloat {
		v = math.Round(v)
	}
	return v
}

const (
	linkSuffix = "_is_linked"
	ch0Suffix  = "_ch0"
	ch1Suffix  = "_ch1"

	boolTrue  = 1.0
	boolFalse = 0.0
	percent   = 100.0
	gainRange = 48.0
)

var paramInfos = buildParamInfos()

func buildParamInfos() []ParamInfo {
	infos := make([]ParamInfo, numParams)
	set := func(id ParamID, name, unit string, kind ParamKind, lo, hi, def float64) {
		infos[id] = ParamInfo{ID: id, Name: name, Unit: unit, Kind: kind, Min: lo, Max: hi, Default: def}
	}
	linked := func(link ParamID, name, unit string, kind ParamKind, lo, hi, def float64) {
		set(link, name+linkSuffix, "", KindBool, boolFalse, boolTrue, boolTrue)
		set(link+1, name+ch0Suffix, unit, kind, lo, hi, def)
		set(link+2, name+ch1Suffix, unit, kind, lo, hi, def)
	}

	set(ParamMidSide, "Mid-Side", "", KindBool, boolFalse, boolTrue, boolFalse)
	set(ParamSmoothingTime, "Smoothing-Time", "ms", KindFloat, 0, 500, 50)
	set(ParamOversampling, "Oversampling", "", KindChoice, 0, oversampling.MaxOrder, 0)
	set(ParamLinearPhase, "Linear-Phase-Oversampling", "", KindBool, boolFalse, boolTrue, boolFalse)
	set(ParamDCFilter, "DC-Filter", "", KindBool, boolFalse, boolTrue, boolFalse)
	set(ParamActiveKnots, "Active-Knots", "", KindChoice, 0, curve.MaxKnots, curve.DefaultActiveKnots)

	linked(ParamSymmetryLink, "Symmetry", "", KindBool, boolFalse, boolTrue, boolTrue)
	linked(ParamWetLink, "Wet", "%", KindFloat, 0, percent, percent)
	linked(ParamInputGainLink, "Input-Gain", "dB", KindFloat, -gainRange, gainRange, 0)
	linked(ParamOutputGainLink, "Output-Gain", "dB", KindFloat, -gainRange, gainRange, 0)
	linked(ParamFilterTypeLink, "Filter-Type", "", KindChoice, 0, float64(tone.Count()-1), float64(tone.None))
	linked(ParamCutoffLink, "Filter-Cutoff", "Hz", KindFloat, tone.MinCutoff, tone.MaxCutoff, 1000)
	linked(ParamResonanceLink, "Filter-Resonance", "", KindFloat, tone.MinResonance, tone.MaxResonance, math.Sqrt2/2)
	linked(ParamBandwidthLink, "Filter-Bandwidth", "oct", KindFloat, tone.MinBandwidth, tone.MaxBandwidth, 1)

	defaults := curve.DefaultKnots()
	for i := range curve.MaxKnots {
		prefix := "Knot-" + strconv.Itoa(i) + "-"
		set(KnotParam(i, KnotX), prefix+knotFieldNames[KnotX], "", KindFloat, curve.MinCoord, curve.MaxCoord, defaults[i].X)
		set(KnotParam(i, KnotY), prefix+knotFieldNames[KnotY], "", KindFloat, curve.MinCoord, curve.MaxCoord, defaults[i].Y)
		set(KnotParam(i, KnotTension), prefix+knotFieldNames[KnotTension], "", KindFloat, curve.MinTension, curve.MaxTension, defaults[i].Tension)
	}
	return infos
}

var paramsByName = func() map[string]ParamID {
	m := make(map[string]ParamID, numParams)
	for _, pi := range paramInfos {
		m[pi.Name] = pi.ID
	}
	return m
}()

func lookupParam(id ParamID) (ParamInfo, error) {
	if id < 0 || int(id) >= numParams {
		return ParamInfo{}, fmt.Errorf("%w: id %d", ErrUnknownParameter, id)
	}
	return paramInfos[id], nil
}

// ParamByName returns the id of the parameter with the given name.
func ParamByName(name string) (ParamID, error) {
	id, ok := paramsByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return id, nil
}

// String returns the parameter name.
func (id ParamID) String() string {
	if id < 0 || int(id) >= numParams {
		return "ParamID(" + strconv.Itoa(int(id)) + ")"
	}
	return paramInfos[id].Name
}

// registry stores plain parameter values as float64 bits so the audio
// thread can load them without locks. Knot parameters live in the curve
// store instead.
type registry struct {
	values [ParamKnotBase]atomic.Uint64
}

func newRegistry() *registry {
	r := &registry{}
	for id := range ParamKnotBase {
		r.store(id, paramInfos[id].Default)
	}
	return r
}

func (r *registry) load(id ParamID) float64 {
	return math.Float64frombits(r.values[id].Load())
}

func (r *registry) store(id ParamID, v float64) {
	r.values[id].Store(math.Float64bits(v))
}

func (r *registry) bool(id ParamID) bool {
	return r.load(id) >= 0.5
}

// linked resolves a linked parameter: channel 1 follows channel 0 while
// the link flag is set.
func (r *registry) linked(link ParamID) stereo.Vec2 {
	v0 := r.load(link + 1)
	if r.bool(link) {
		return stereo.Vec2{v0, v0}
	}
	return stereo.Vec2{v0, r.load(link + 2)}
}

// blockParams is the parameter set resolved once at the top of a block.
type blockParams struct {
	midSide     bool
	smoothingMs float64
	dcFilter    bool
	symmetric   [2]bool
	wet         stereo.Vec2 // 0..1
	inputGain   stereo.Vec2 // linear
	outputGain  stereo.Vec2 // linear
	tone        tone.Settings
}

func (r *registry) resolve(bp *blockParams) {
	bp.midSide = r.bool(ParamMidSide)
	bp.smoothingMs = r.load(ParamSmoothingTime)
	bp.dcFilter = r.bool(ParamDCFilter)

	sym := r.linked(ParamSymmetryLink)
	bp.symmetric = [2]bool{sym[0] >= 0.5, sym[1] >= 0.5}

	wet := r.linked(ParamWetLink)
	in := r.linked(ParamInputGainLink)
	out := r.linked(ParamOutputGainLink)
	for ch := range 2 {
		bp.wet[ch] = wet[ch] / percent
		bp.inputGain[ch] = mathutil.DBToGain(in[ch])
		bp.outputGain[ch] = mathutil.DBToGain(out[ch])
	}

	ft := r.linked(ParamFilterTypeLink)
	bp.tone.Type = [2]tone.FilterType{tone.FilterType(ft[0]), tone.FilterType(ft[1])}
	bp.tone.Cutoff = r.linked(ParamCutoffLink)
	bp.tone.Resonance = r.linked(ParamResonanceLink)
	bp.tone.Bandwidth = r.linked(ParamBandwidthLink)
}

// SetParameter sets a parameter to a plain value, clamped to its range.
// Changing the oversampling order or phase mode reports the new latency
// before the matching oversampler is built.
func (p *Processor) SetParameter(id ParamID, plain float64) error {
	info, err := lookupParam(id)
	if err != nil {
		return err
	}
	v := info.Clamp(plain)

	if index, field, ok := id.isKnot(); ok {
		switch field {
		case KnotX:
			return p.knots.SetX(index, v)
		case KnotY:
			return p.knots.SetY(index, v)
		default:
			return p.knots.SetTension(index, v)
		}
	}

	switch id {
	case ParamActiveKnots:
		p.knots.SetActive(int(v))
	case ParamOversampling, ParamLinearPhase:
		p.cfgMu.Lock()
		defer p.cfgMu.Unlock()
		if p.params.load(id) == v {
			return nil
		}
		p.params.store(id, v)
		p.requestOversamplerLocked()
	default:
		p.params.store(id, v)
	}
	return nil
}

// Parameter returns the plain value of a parameter.
func (p *Processor) Parameter(id ParamID) (float64, error) {
	if _, err := lookupParam(id); err != nil {
		return 0, err
	}

	if index, field, ok := id.isKnot(); ok {
		k := p.knots.Load().Knots[index]
		switch field {
		case KnotX:
			return k.X, nil
		case KnotY:
			return k.Y, nil
		default:
			return k.Tension, nil
		}
	}

	if id == ParamActiveKnots {
		return float64(p.knots.Load().Active), nil
	}
	return p.params.load(id), nil
}

// ParamInfo describes a parameter.
func (p *Processor) ParamInfo(id ParamID) (ParamInfo, error) {
	return lookupParam(id)
}

// Parameters describes every parameter in id order.
func (p *Processor) Parameters() []ParamInfo {
	out := make([]ParamInfo, len(paramInfos))
	copy(out, paramInfos)
	return out
}
