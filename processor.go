package overdraw

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tphakala/go-overdraw/internal/curve"
	"github.com/tphakala/go-overdraw/internal/filter"
	"github.com/tphakala/go-overdraw/internal/meter"
	"github.com/tphakala/go-overdraw/internal/oversampling"
	"github.com/tphakala/go-overdraw/internal/simdops"
	"github.com/tphakala/go-overdraw/internal/smoothing"
	"github.com/tphakala/go-overdraw/internal/stereo"
	"github.com/tphakala/go-overdraw/internal/tone"
	"github.com/tphakala/simd/cpu"
)

// Knot is one control point of the transfer curve.
type Knot = curve.Knot

// MaxKnots is the number of knots the curve holds.
const MaxKnots = curve.MaxKnots

// ErrKnotIndex is returned for a knot index outside 0..MaxKnots-1.
var ErrKnotIndex = curve.ErrKnotIndex

// Processor is a stereo waveshaper. The Process methods belong to a single
// audio goroutine and never allocate, lock or block. Parameter, knot and
// meter methods may be called from any goroutine at any time. Prepare and
// Reset must not run concurrently with processing.
type Processor struct {
	params  *registry
	knots   *curve.Store
	handoff *oversampling.Handoff
	latency atomic.Int64

	// cfgMu guards cfg and serializes oversampler rebuild requests.
	cfgMu sync.Mutex
	cfg   Config

	// audio goroutine state
	sampleRate float64
	maxBlock   int
	bp         blockParams
	automator  *curve.Automator
	bank       *tone.Bank
	dc         *tone.DCBlocker
	meter      *meter.Meter
	ops        *simdops.Ops[float64]

	inGain  smoothing.Stereo
	outGain smoothing.Stereo
	wet     smoothing.Stereo

	dry     [2][]float64
	wetOut  [2][]float64
	dryOut  [2][]float64
	scratch [2][]float64
}

// New creates a processor and starts building its oversampler. Until the
// build completes every processed block is silent; offline callers can use
// WaitReady.
func New(cfg Config) (*Processor, error) {
	return newProcessor(cfg, nil)
}

func newProcessor(cfg Config, build oversampling.Builder) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Processor{
		params:  newRegistry(),
		knots:   curve.NewStore(),
		handoff: oversampling.NewHandoff(build),
		bank:    tone.NewBank(),
		meter:   meter.New(cfg.SampleRate),
		ops:     simdops.For[float64](),
		cfg:     cfg,
	}
	p.automator = curve.NewAutomator(p.knots.Load())

	if err := p.Prepare(cfg.SampleRate, cfg.MaxBlockSize); err != nil {
		return nil, err
	}
	return p, nil
}

// Prepare sets the host sample rate and the largest block size. It
// discards the current oversampler, so output is silent until the
// replacement is built.
func (p *Processor) Prepare(sampleRate float64, maxBlockSize int) error {
	p.cfgMu.Lock()
	defer p.cfgMu.Unlock()

	cfg := p.cfg
	cfg.SampleRate = sampleRate
	cfg.MaxBlockSize = maxBlockSize
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.cfg = cfg

	p.sampleRate = sampleRate
	p.maxBlock = maxBlockSize
	for ch := range 2 {
		p.dry[ch] = make([]float64, maxBlockSize)
		p.wetOut[ch] = make([]float64, maxBlockSize)
		p.dryOut[ch] = make([]float64, maxBlockSize)
		p.scratch[ch] = make([]float64, maxBlockSize)
	}
	p.dc = tone.NewDCBlocker(cfg.DCCutoff, sampleRate)
	p.meter.SetSampleRate(sampleRate)

	p.handoff.Drop()
	p.requestOversamplerLocked()
	p.resetState()
	return nil
}

// oversamplingConfigLocked builds the oversampler configuration from the
// current parameters. Caller holds cfgMu.
func (p *Processor) oversamplingConfigLocked() oversampling.Config {
	return oversampling.Config{
		Order:        int(p.params.load(ParamOversampling)),
		LinearPhase:  p.params.bool(ParamLinearPhase),
		MaxBlockSize: p.cfg.MaxBlockSize,
		Quality:      p.cfg.Quality,
	}
}

// requestOversamplerLocked reports the latency of the current settings and
// then starts building the matching oversampler. Caller holds cfgMu.
func (p *Processor) requestOversamplerLocked() {
	oc := p.oversamplingConfigLocked()
	latency := int64(oc.Latency())
	if old := p.latency.Swap(latency); old != latency && p.cfg.OnLatencyChange != nil {
		p.cfg.OnLatencyChange(int(latency))
	}
	p.handoff.Request(oc)
}

// WaitReady blocks until the most recently requested oversampler is built
// and returns its build error. Never call it from the audio goroutine.
func (p *Processor) WaitReady(ctx context.Context) error {
	return p.handoff.Await(ctx, p.handoff.Latest())
}

// Latency returns the processing delay in host samples.
func (p *Processor) Latency() int {
	return int(p.latency.Load())
}

// Config returns the current configuration.
func (p *Processor) Config() Config {
	p.cfgMu.Lock()
	defer p.cfgMu.Unlock()
	return p.cfg
}

// Reset snaps every smoothed value to its target and clears the meter and
// all filter histories.
func (p *Processor) Reset() {
	p.resetState()
	if pair := p.handoff.Acquire(); pair != nil {
		pair.Reset()
	}
}

func (p *Processor) resetState() {
	p.params.resolve(&p.bp)
	p.inGain.Snap(p.bp.inputGain)
	p.outGain.Snap(p.bp.outputGain)
	p.wet.Snap(p.bp.wet)

	p.automator.Consume(p.knots.Load())
	p.automator.Snap()

	p.bank.Configure(p.bp.tone, p.sampleRate*float64(oversamplingRate(p.params)))
	p.bank.Reset()
	p.dc.Reset()
	p.meter.Reset()
}

func oversamplingRate(r *registry) int {
	return 1 << int(r.load(ParamOversampling))
}

// Meter returns the last published wet level relative to the dry level in
// dB, per channel.
func (p *Processor) Meter() [2]float64 {
	return [2]float64(p.meter.Snapshot())
}

// Knots returns a copy of every knot and the active count.
func (p *Processor) Knots() ([]Knot, int) {
	ks := p.knots.Load()
	knots := make([]Knot, MaxKnots)
	copy(knots, ks.Knots[:])
	return knots, ks.Active
}

// SetKnot replaces knot i. Values are clamped to the knot ranges.
func (p *Processor) SetKnot(i int, k Knot) error {
	return p.knots.SetKnot(i, k)
}

// SetActiveKnots sets how many leading knots shape the curve.
func (p *Processor) SetActiveKnots(n int) {
	p.knots.SetActive(n)
}

// Info describes the processing configuration.
type Info struct {
	// Order is the number of 2x oversampling stages.
	Order int

	// Rate is the oversampling factor.
	Rate int

	// LinearPhase reports whether the oversampling filters are linear phase.
	LinearPhase bool

	// Latency is the processing latency in host samples.
	Latency int

	// FilterLengths is the tap count of each oversampling stage.
	FilterLengths []int

	// Quality is the oversampling quality preset.
	Quality Quality

	// SIMDType describes the SIMD instruction set in use.
	SIMDType string
}

// Info returns information about the current oversampling setup.
func (p *Processor) Info() Info {
	p.cfgMu.Lock()
	oc := p.oversamplingConfigLocked()
	p.cfgMu.Unlock()

	lengths := make([]int, 0, oc.Order)
	for stage := 1; stage <= oc.Order; stage++ {
		spec := filter.StageSpec{
			Stage:        stage,
			Attenuation:  oc.Quality.Attenuation(),
			MinimumPhase: !oc.LinearPhase,
		}
		lengths = append(lengths, spec.Length())
	}

	return Info{
		Order:         oc.Order,
		Rate:          oc.Rate(),
		LinearPhase:   oc.LinearPhase,
		Latency:       oc.Latency(),
		FilterLengths: lengths,
		Quality:       oc.Quality,
		SIMDType:      cpu.Info(),
	}
}

// ProcessFloat64 processes a stereo block in place. Buffers longer than the
// prepared block size are processed in pieces; extra samples in the longer
// of two unequal buffers are left untouched.
func (p *Processor) ProcessFloat64(left, right []float64) {
	n := min(len(left), len(right))
	for off := 0; off < n; off += p.maxBlock {
		end := min(off+p.maxBlock, n)
		p.processBlock(left[off:end], right[off:end])
	}
}

// ProcessFloat32 is ProcessFloat64 for single-precision buffers. Samples
// are converted to float64 through preallocated scratch buffers.
func (p *Processor) ProcessFloat32(left, right []float32) {
	n := min(len(left), len(right))
	for off := 0; off < n; off += p.maxBlock {
		end := min(off+p.maxBlock, n)
		l := p.scratch[0][:end-off]
		r := p.scratch[1][:end-off]
		for i := range l {
			l[i] = float64(left[off+i])
			r[i] = float64(right[off+i])
		}

		p.processBlock(l, r)

		for i := range l {
			left[off+i] = float32(l[i])
			right[off+i] = float32(r[i])
		}
	}
}

// wetPredicates decides whether the dry/wet blend must run and whether the
// wet path can be dropped entirely. The blend is skipped only when the
// wet amount sits at 100% (or at 0%) on both channels with no transition
// in flight.
func wetPredicates(current, target stereo.Vec2) (wetPassNeeded, bypassing bool) {
	m := target.Product() * current.Product()
	switch m {
	case 1:
		wetPassNeeded = false
	case 0:
		wetPassNeeded = target != stereo.Vec2{} || current != stereo.Vec2{}
	default:
		wetPassNeeded = true
	}
	bypassing = !wetPassNeeded && current[0] == 0
	return wetPassNeeded, bypassing
}

func (p *Processor) processBlock(left, right []float64) {
	n := len(left)
	io := [2][]float64{left, right}

	pair := p.handoff.Acquire()
	if pair == nil || pair.Wet.MaxBlockSize() < n {
		p.silence(io)
		return
	}

	bp := &p.bp
	p.params.resolve(bp)
	alpha := smoothing.AlphaMs(bp.smoothingMs, p.sampleRate)
	overRate := p.sampleRate * float64(pair.Wet.Rate())
	overAlpha := smoothing.AlphaMs(bp.smoothingMs, overRate)

	p.automator.Consume(p.knots.Load())
	p.bank.Configure(bp.tone, overRate)

	wetPassNeeded, bypassing := wetPredicates(p.wet.Value(), bp.wet)

	if bp.midSide {
		stereo.EncodeBlock(left, right)
	}

	dry := [2][]float64{p.dry[0][:n], p.dry[1][:n]}
	copy(dry[0], left)
	copy(dry[1], right)

	p.applyInputGain(io, bp.inputGain, alpha)

	produced := pair.Wet.UpSample(io, n)
	pair.Dry.UpSample(dry, n)
	if produced == 0 {
		p.silence(io)
		return
	}

	if !bypassing && (!p.automator.IsIdentity() || p.bank.Engaged()) {
		p.shape(pair.Wet.Output(), produced, bp.symmetric, overAlpha)
	}

	pair.Wet.DownSample(p.wetOut, n)
	pair.Dry.DownSample(p.dryOut, n)

	if bypassing {
		copy(left, p.dryOut[0][:n])
		copy(right, p.dryOut[1][:n])
		p.meter.PublishZero()
	} else {
		if bp.dcFilter {
			p.dc.ProcessBlock(p.wetOut[0][:n], p.wetOut[1][:n])
		}
		p.mix(io, bp, alpha, wetPassNeeded)
		p.meter.Publish(bp.inputGain.Mul(bp.outputGain))
	}

	if bp.midSide {
		stereo.DecodeBlock(left, right)
	}
}

func (p *Processor) silence(io [2][]float64) {
	clear(io[0])
	clear(io[1])
}

func (p *Processor) applyInputGain(io [2][]float64, target stereo.Vec2, alpha float64) {
	if p.inGain.Settled(target) {
		p.ops.ApplyGain(io[0], target[0])
		p.ops.ApplyGain(io[1], target[1])
		return
	}

	a := stereo.Splat(alpha)
	left, right := io[0], io[1][:len(io[0])]
	for i := range left {
		g := p.inGain.Advance(target, a)
		left[i] *= g[0]
		right[i] *= g[1]
	}
}

// shape runs the curve and the tone filters over the first m oversampled
// samples in place.
func (p *Processor) shape(buf [2][]float64, m int, symmetric [2]bool, alpha float64) {
	sp := p.automator.Spline()
	filtered := p.bank.Engaged()
	left, right := buf[0][:m], buf[1][:m]

	for i := range left {
		p.automator.Step(alpha)
		y := stereo.Vec2{
			sp.Eval(left[i], symmetric[0]),
			sp.Eval(right[i], symmetric[1]),
		}
		if filtered {
			y = p.bank.Process(y, alpha)
		}
		left[i], right[i] = y[0], y[1]
	}
}

// mix applies the output gain, blends wet against dry and feeds the meter.
func (p *Processor) mix(io [2][]float64, bp *blockParams, alpha float64, blend bool) {
	a := stereo.Splat(alpha)
	wetL, wetR := p.wetOut[0], p.wetOut[1]
	dryL, dryR := p.dryOut[0], p.dryOut[1]

	for i := range io[0] {
		g := p.outGain.Advance(bp.outputGain, a)
		wet := stereo.Vec2{g[0] * wetL[i], g[1] * wetR[i]}
		dry := stereo.Vec2{dryL[i], dryR[i]}

		out := wet
		if blend {
			amt := p.wet.Advance(bp.wet, a)
			out[0] = amt[0]*(wet[0]-dry[0]) + dry[0]
			out[1] = amt[1]*(wet[1]-dry[1]) + dry[1]
		}

		p.meter.Update(wet, dry)
		io[0][i], io[1][i] = out[0], out[1]
	}
}
