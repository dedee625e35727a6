// Command analyze-filter prints the design figures of every oversampling
// stage filter: tap count, DC gain, passband ripple and stopband
// attenuation.
//
// Usage:
//
//	analyze-filter
//	analyze-filter --quality veryhigh --order 5 --minimum-phase
package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/alecthomas/kong"
	"github.com/tphakala/go-overdraw/internal/cli"
	"github.com/tphakala/go-overdraw/internal/engine"
	"github.com/tphakala/go-overdraw/internal/filter"
	"gonum.org/v1/gonum/floats"
)

// responsePoints is the frequency grid density per stage.
const responsePoints = 4096

// CLI defines the command-line interface.
type CLI struct {
	Quality      string `short:"q" default:"high" enum:"quick,low,medium,high,veryhigh" help:"Quality preset"`
	Order        int    `short:"o" default:"5" help:"Number of 2x stages to analyze"`
	MinimumPhase bool   `help:"Analyze the minimum-phase versions"`
}

// stageReport holds the measured figures of one stage filter.
type stageReport struct {
	stage        int
	taps         int
	dcGain       float64
	rippleDB     float64
	stopbandDB   float64
	delaySamples float64
}

func main() {
	args := &CLI{}
	kong.Parse(args,
		kong.Name("analyze-filter"),
		kong.Description("Analyze the oversampling stage filters"),
		kong.UsageOnError(),
	)

	if err := run(os.Stdout, args); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func run(w io.Writer, args *CLI) error {
	quality, err := engine.ParseQuality(args.Quality)
	if err != nil {
		return err
	}
	if args.Order < 1 || args.Order > filter.MaxStages {
		return fmt.Errorf("order %d out of range 1..%d", args.Order, filter.MaxStages)
	}

	fmt.Fprintf(w, "=== Stage filters: %s (%.0f dB), %s ===\n",
		quality, quality.Attenuation(), phaseName(args.MinimumPhase))
	fmt.Fprintf(w, "%5s %6s %14s %12s %12s %10s\n", "stage", "taps", "DC gain", "ripple dB", "stop dB", "delay")

	for stage := 1; stage <= args.Order; stage++ {
		r, err := analyzeStage(filter.StageSpec{
			Stage:        stage,
			Attenuation:  quality.Attenuation(),
			MinimumPhase: args.MinimumPhase,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%5d %6d %14.10f %12.6f %12.2f %10.2f\n",
			r.stage, r.taps, r.dcGain, r.rippleDB, r.stopbandDB, r.delaySamples)
	}

	if !args.MinimumPhase {
		fmt.Fprintf(w, "\nRound-trip latency at order %d: %.2f host samples\n",
			args.Order, filter.CascadeLatency(args.Order, quality.Attenuation()))
	}
	return nil
}

func phaseName(minimum bool) string {
	if minimum {
		return "minimum phase"
	}
	return "linear phase"
}

// analyzeStage designs one stage and measures it. Ripple is the largest
// deviation from unity gain in the passband. The stopband figure is the
// weakest rejection above the stopband edge, relative to the passband
// gain of 2 an interpolator applies.
func analyzeStage(spec filter.StageSpec) (stageReport, error) {
	coeffs, err := filter.DesignStage(spec)
	if err != nil {
		return stageReport{}, err
	}

	pass, stop := spec.Edges()
	resp := filter.ComputeFrequencyResponse(coeffs, responsePoints)
	dc := floats.Sum(coeffs)

	var ripple float64
	stopband := math.Inf(1)
	for i, f := range resp.Frequencies {
		db := filter.MagnitudeDB(resp.Magnitude[i] / dc)
		switch {
		case f <= pass:
			ripple = math.Max(ripple, math.Abs(db))
		case f >= stop:
			stopband = math.Min(stopband, -db)
		}
	}

	return stageReport{
		stage:        spec.Stage,
		taps:         len(coeffs),
		dcGain:       dc,
		rippleDB:     ripple,
		stopbandDB:   stopband,
		delaySamples: centroid(coeffs),
	}, nil
}

// centroid returns the energy centroid of an impulse response in taps,
// which equals the group delay for a symmetric filter.
func centroid(h []float64) float64 {
	var num, den float64
	for n, v := range h {
		e := v * v
		num += float64(n) * e
		den += e
	}
	if den == 0 {
		return 0
	}
	return num / den
}
