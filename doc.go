// Package overdraw is the real-time core of a stereo waveshaping
// distortion: a transfer curve drawn through up to 15 knots, applied at an
// oversampled rate between smoothed input and output gain stages, with
// optional tone filters, mid-side processing, a dry/wet blend and a level
// meter.
//
// # Quick Start
//
// For offline processing of a whole signal:
//
//	left, right, err := overdraw.Render(ctx, left, right, 48000, &preset)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For a host audio callback:
//
//	p, err := overdraw.New(overdraw.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = p.SetParameter(overdraw.ParamOversampling, 2) // 4x
//	_ = p.SetParameter(overdraw.ParamInputGain0, 12)
//
//	// audio goroutine
//	p.ProcessFloat32(left, right)
//
// # Pipeline
//
// Each block runs the same fixed sequence:
//
//	mid-side encode -> dry copy -> input gain -> upsample
//	  -> curve + tone filter -> downsample -> DC blocker
//	  -> output gain + dry/wet -> mid-side decode -> meter
//
// The curve stage is skipped when fewer than two knots are active and no
// tone filter is selected, and the whole wet path is dropped while the wet
// amount rests at 0%.
//
// # Parameters
//
// Every control is an automatable parameter addressed by [ParamID] with a
// plain value clamped to its range. Stereo controls come as a link flag and
// two channel values; while linked, channel 1 follows channel 0. Knot
// coordinates are parameters too, see [KnotParam].
//
// # Thread Safety
//
// [Processor.ProcessFloat64] and [Processor.ProcessFloat32] belong to one
// audio goroutine and never allocate, lock or block. Parameters, knots and
// the meter may be accessed from any goroutine. Changing the oversampling
// order or phase mode builds new filters on a worker goroutine; the audio
// goroutine swaps them in at the next block and keeps the old ones until
// then. The reported latency changes before the swap.
package overdraw
