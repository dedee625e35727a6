// Package oversampling runs a stereo signal through a cascade of 2x stages
// around a nonlinear stage and hands prepared instances to the audio thread.
package oversampling

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-overdraw/internal/engine"
	"github.com/tphakala/go-overdraw/internal/filter"
)

// Channels is the fixed channel count.
const Channels = 2

// MaxOrder is the deepest supported order (32x).
const MaxOrder = filter.MaxStages

// ErrInvalidConfig is returned for an out-of-range configuration.
var ErrInvalidConfig = errors.New("invalid oversampling config")

// Config describes one oversampler instance.
type Config struct {
	// Order is the number of 2x stages, 0 (off) to MaxOrder.
	Order int

	// LinearPhase selects symmetric stage filters. Otherwise the
	// minimum-phase equivalents are used.
	LinearPhase bool

	// MaxBlockSize is the largest host block UpSample accepts.
	MaxBlockSize int

	// Quality sets the stopband attenuation of every stage.
	Quality engine.Quality
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Order < 0 || c.Order > MaxOrder {
		return fmt.Errorf("%w: order %d (want 0..%d)", ErrInvalidConfig, c.Order, MaxOrder)
	}
	if c.MaxBlockSize < 1 {
		return fmt.Errorf("%w: block size %d", ErrInvalidConfig, c.MaxBlockSize)
	}
	return nil
}

// Rate returns the oversampling factor.
func (c Config) Rate() int {
	return 1 << c.Order
}

// Latency returns the delay in host samples introduced by an up/down
// round trip. Minimum-phase cascades have no constant group delay and
// report 0.
func (c Config) Latency() int {
	if !c.LinearPhase || c.Order == 0 {
		return 0
	}
	return int(math.Round(filter.CascadeLatency(c.Order, c.Quality.Attenuation())))
}

// Oversampler upsamples a stereo block by 2^order into an internal buffer
// and downsamples that buffer back to the host rate. Buffers are sized at
// construction; UpSample and DownSample never allocate.
type Oversampler struct {
	cfg Config

	up   [Channels][]*engine.Interpolator[float64]
	down [Channels][]*engine.Decimator[float64]

	// mid[k] holds one channel pair at 2^k times the host rate, k = 1..order-1.
	mid  [][Channels][]float64
	work [Channels][]float64

	filterLengths []int
}

// New designs the stage filters and allocates every buffer.
func New(cfg Config) (*Oversampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Oversampler{
		cfg: cfg,
		mid: make([][Channels][]float64, max(cfg.Order, 1)),
	}

	for stage := 1; stage <= cfg.Order; stage++ {
		coeffs, err := filter.DesignStage(filter.StageSpec{
			Stage:        stage,
			Attenuation:  cfg.Quality.Attenuation(),
			MinimumPhase: !cfg.LinearPhase,
		})
		if err != nil {
			return nil, fmt.Errorf("design stage %d: %w", stage, err)
		}
		o.filterLengths = append(o.filterLengths, len(coeffs))

		inBlock := cfg.MaxBlockSize << (stage - 1)
		for ch := range Channels {
			up, err := engine.NewInterpolator[float64](coeffs, inBlock)
			if err != nil {
				return nil, fmt.Errorf("stage %d interpolator: %w", stage, err)
			}
			down, err := engine.NewDecimator[float64](coeffs, inBlock)
			if err != nil {
				return nil, fmt.Errorf("stage %d decimator: %w", stage, err)
			}
			o.up[ch] = append(o.up[ch], up)
			o.down[ch] = append(o.down[ch], down)

			if stage < cfg.Order {
				o.mid[stage][ch] = make([]float64, cfg.MaxBlockSize<<stage)
			}
		}
	}

	for ch := range Channels {
		o.work[ch] = make([]float64, cfg.MaxBlockSize*cfg.Rate())
	}

	return o, nil
}

// Config returns the configuration the instance was built with.
func (o *Oversampler) Config() Config { return o.cfg }

// Order returns the number of 2x stages.
func (o *Oversampler) Order() int { return o.cfg.Order }

// LinearPhase reports whether the stages are linear phase.
func (o *Oversampler) LinearPhase() bool { return o.cfg.LinearPhase }

// Rate returns the oversampling factor.
func (o *Oversampler) Rate() int { return o.cfg.Rate() }

// Latency returns the round-trip delay in host samples.
func (o *Oversampler) Latency() int { return o.cfg.Latency() }

// MaxBlockSize returns the largest accepted host block.
func (o *Oversampler) MaxBlockSize() int { return o.cfg.MaxBlockSize }

// FilterLengths returns the tap count of each stage, first stage first.
func (o *Oversampler) FilterLengths() []int { return o.filterLengths }

// UpSample upsamples n samples of each channel of in. It returns the number
// of samples per channel now held in Output, or 0 when n exceeds the
// prepared block size.
func (o *Oversampler) UpSample(in [Channels][]float64, n int) int {
	if n <= 0 || n > o.cfg.MaxBlockSize {
		return 0
	}

	if o.cfg.Order == 0 {
		for ch := range Channels {
			copy(o.work[ch][:n], in[ch][:n])
		}
		return n
	}

	produced := 0
	for ch := range Channels {
		src := in[ch][:n]
		for k, stage := range o.up[ch] {
			dst := o.work[ch]
			if k+1 < o.cfg.Order {
				dst = o.mid[k+1][ch]
			}
			produced = stage.Process(dst, src)
			if produced == 0 {
				return 0
			}
			src = dst[:produced]
		}
	}

	return produced
}

// Output returns the oversampled buffers. After UpSample returned m, the
// first m samples of each channel are valid and may be modified in place
// before DownSample.
func (o *Oversampler) Output() [Channels][]float64 {
	return o.work
}

// DownSample brings the first n*Rate() samples of Output back to the host
// rate, writing n samples per channel to out. It returns n, or 0 when n
// exceeds the prepared block size.
func (o *Oversampler) DownSample(out [Channels][]float64, n int) int {
	if n <= 0 || n > o.cfg.MaxBlockSize {
		return 0
	}

	if o.cfg.Order == 0 {
		for ch := range Channels {
			copy(out[ch][:n], o.work[ch][:n])
		}
		return n
	}

	for ch := range Channels {
		src := o.work[ch][:n*o.cfg.Rate()]
		for k := o.cfg.Order; k >= 1; k-- {
			dst := out[ch]
			if k > 1 {
				dst = o.mid[k-1][ch]
			}
			produced := o.down[ch][k-1].Process(dst, src)
			if produced == 0 {
				return 0
			}
			src = dst[:produced]
		}
	}

	return n
}

// Reset clears every stage history.
func (o *Oversampler) Reset() {
	for ch := range Channels {
		for _, s := range o.up[ch] {
			s.Reset()
		}
		for _, s := range o.down[ch] {
			s.Reset()
		}
		clear(o.work[ch])
	}
}

// MemoryUsage returns the approximate footprint in bytes.
func (o *Oversampler) MemoryUsage() int64 {
	const bytesPerSample = 8
	samples := 0
	for ch := range Channels {
		for _, s := range o.up[ch] {
			samples += s.MemoryUsage()
		}
		for _, s := range o.down[ch] {
			samples += s.MemoryUsage()
		}
		samples += len(o.work[ch])
	}
	for _, m := range o.mid {
		samples += len(m[0]) + len(m[1])
	}
	return int64(samples) * bytesPerSample
}
