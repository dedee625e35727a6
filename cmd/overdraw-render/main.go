// Command overdraw-render renders a WAV file through the waveshaper.
//
// Usage:
//
//	overdraw-render input.wav output.wav
//	overdraw-render --preset warm.yaml --oversampling 3 input.wav output.wav
//	overdraw-render --drive 18 --wet 60 --set DC-Filter=1 input.wav output.wav
//	overdraw-render --drive 12 --save-preset drive.yaml input.wav output.wav
//
// Mono input is processed as dual mono and written back as mono. The output
// keeps the input sample rate and bit depth and is aligned with the input.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"

	"github.com/alecthomas/kong"
	overdraw "github.com/tphakala/go-overdraw"
	"github.com/tphakala/go-overdraw/internal/cli"
)

var version = "dev"

const commandName = "overdraw-render"

// CLI defines the command-line interface.
type CLI struct {
	Version      bool               `short:"v" help:"Show version information"`
	Verbose      bool               `help:"Log progress and settings"`
	Preset       string             `short:"p" type:"existingfile" help:"YAML preset to apply first"`
	SavePreset   string             `type:"path" help:"Write the effective settings to a YAML preset"`
	Quality      string             `short:"q" default:"high" enum:"quick,low,medium,high,veryhigh" help:"Oversampling filter quality"`
	BlockSize    int                `default:"512" help:"Processing block size in frames"`
	Oversampling *int               `short:"o" help:"Oversampling order 0..5 (2^order times)"`
	LinearPhase  bool               `help:"Use linear-phase oversampling filters"`
	Drive        *float64           `short:"d" help:"Input gain in dB"`
	Trim         *float64           `short:"t" help:"Output gain in dB"`
	Wet          *float64           `short:"w" help:"Wet amount in percent"`
	Set          map[string]float64 `placeholder:"NAME=VALUE" help:"Set any parameter by name"`
	Input        string             `arg:"" name:"input" type:"existingfile" optional:"" help:"Input WAV file"`
	Output       string             `arg:"" name:"output" type:"path" optional:"" help:"Output WAV file"`
}

func main() {
	cliArgs := &CLI{}
	kctx := kong.Parse(cliArgs,
		kong.Name(commandName),
		kong.Description("Render audio through the overdraw waveshaper"),
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter("Overdraw", "Render audio through the overdraw waveshaper")),
	)

	if cliArgs.Version {
		cli.PrintVersion(commandName, version)
		os.Exit(0)
	}

	if cliArgs.Input == "" || cliArgs.Output == "" {
		cli.PrintError("input and output files are required")
		_ = kctx.PrintUsage(false)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, cliArgs)
	stop()
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, args *CLI) error {
	quality, err := overdraw.ParseQuality(args.Quality)
	if err != nil {
		return err
	}

	in, err := openWAVInput(args.Input, args.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	cfg := overdraw.DefaultConfig()
	cfg.SampleRate = float64(in.rate)
	cfg.MaxBlockSize = args.BlockSize
	cfg.Quality = quality
	p, err := overdraw.New(cfg)
	if err != nil {
		return err
	}

	if err := configure(p, args); err != nil {
		return err
	}
	if args.SavePreset != "" {
		if err := savePresetFile(args.SavePreset, p.State()); err != nil {
			return err
		}
	}

	if err := p.WaitReady(ctx); err != nil {
		return fmt.Errorf("failed to prepare oversampler: %w", err)
	}
	p.Reset()

	if args.Verbose {
		info := p.Info()
		log.Printf("Oversampling: %dx (%d stages, linear phase %v)", info.Rate, info.Order, info.LinearPhase)
		log.Printf("Latency: %d frames", info.Latency)
		log.Printf("SIMD: %s", info.SIMDType)
	}

	out, err := createWAVOutput(args.Output, in.rate, in.bitDepth, in.channels)
	if err != nil {
		return err
	}

	r := newRenderer(p, in.channels, in.bitDepth, in.format, out)
	stats, err := r.run(ctx, in.decoder, newProgressTracker(in.totalSamples, args.Verbose))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	printStats(args, in, p.Info(), stats)
	return nil
}

// configure applies the preset, then the --set overrides, then the
// dedicated flags.
func configure(p *overdraw.Processor, args *CLI) error {
	if args.Preset != "" {
		state, err := loadPresetFile(args.Preset)
		if err != nil {
			return err
		}
		if err := p.SetState(state); err != nil {
			return err
		}
	}

	for name, v := range args.Set {
		id, err := overdraw.ParamByName(name)
		if err != nil {
			return err
		}
		if err := p.SetParameter(id, v); err != nil {
			return err
		}
	}

	overrides := []struct {
		id  overdraw.ParamID
		set bool
		v   float64
	}{
		{overdraw.ParamOversampling, args.Oversampling != nil, derefInt(args.Oversampling)},
		{overdraw.ParamLinearPhase, args.LinearPhase, 1},
		{overdraw.ParamInputGain0, args.Drive != nil, derefFloat(args.Drive)},
		{overdraw.ParamOutputGain0, args.Trim != nil, derefFloat(args.Trim)},
		{overdraw.ParamWet0, args.Wet != nil, derefFloat(args.Wet)},
	}
	for _, o := range overrides {
		if !o.set {
			continue
		}
		if err := p.SetParameter(o.id, o.v); err != nil {
			return err
		}
	}
	return nil
}

func derefInt(v *int) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func loadPresetFile(path string) (overdraw.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return overdraw.State{}, fmt.Errorf("failed to open preset: %w", err)
	}
	defer func() { _ = f.Close() }()

	state, err := overdraw.LoadPreset(f)
	if err != nil {
		return overdraw.State{}, fmt.Errorf("%s: %w", path, err)
	}
	return state, nil
}

func savePresetFile(path string, state overdraw.State) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create preset: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return overdraw.SavePreset(f, state)
}

func printStats(args *CLI, in *wavInputInfo, info overdraw.Info, stats *renderStats) {
	seconds := float64(stats.frames) / float64(in.rate)
	speed := 0.0
	if stats.elapsed > 0 {
		speed = seconds / stats.elapsed.Seconds()
	}

	cli.PrintSummary(os.Stdout, "Rendered", []cli.Field{
		{Key: "Input", Value: args.Input},
		{Key: "Output", Value: args.Output},
		{Key: "Format", Value: fmt.Sprintf("%d Hz, %d ch, %d-bit", in.rate, in.channels, in.bitDepth)},
		{Key: "Duration", Value: fmt.Sprintf("%.2f s", seconds)},
		{Key: "Oversampling", Value: strconv.Itoa(info.Rate) + "x"},
		{Key: "Latency", Value: fmt.Sprintf("%d frames", stats.latency)},
		{Key: "Peak in", Value: formatDB(stats.inPeak)},
		{Key: "Peak out", Value: formatDB(stats.outPeak)},
		{Key: "Wet/dry", Value: fmt.Sprintf("%+.1f / %+.1f dB", stats.meter[0], stats.meter[1])},
		{Key: "Speed", Value: fmt.Sprintf("%.1fx realtime", speed)},
	})
}
