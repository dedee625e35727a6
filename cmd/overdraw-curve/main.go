// Command overdraw-curve prints the transfer curve of a preset as a table
// of input, output and slope.
//
// Usage:
//
//	overdraw-curve
//	overdraw-curve --preset warm.yaml --points 33
//	overdraw-curve --preset warm.yaml --asymmetric --from -1 --to 1
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	overdraw "github.com/tphakala/go-overdraw"
	"github.com/tphakala/go-overdraw/internal/cli"
	"github.com/tphakala/go-overdraw/internal/curve"
)

var version = "dev"

const (
	commandName = "overdraw-curve"
	minPoints   = 2
	barWidth    = 40
)

var errRange = errors.New("invalid range")

// CLI defines the command-line interface.
type CLI struct {
	Version    bool    `short:"v" help:"Show version information"`
	Preset     string  `short:"p" type:"existingfile" help:"YAML preset to read knots from"`
	Points     int     `short:"n" default:"17" help:"Number of rows"`
	From       float64 `default:"-2" help:"First input value"`
	To         float64 `default:"2" help:"Last input value"`
	Asymmetric bool    `help:"Evaluate without odd symmetry"`
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFAF00"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D75F00"))
)

func main() {
	args := &CLI{}
	kong.Parse(args,
		kong.Name(commandName),
		kong.Description("Print the waveshaper transfer curve"),
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter("Overdraw curve", "Print the waveshaper transfer curve")),
	)

	if args.Version {
		cli.PrintVersion(commandName, version)
		os.Exit(0)
	}

	if err := run(os.Stdout, args); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func run(w io.Writer, args *CLI) error {
	if args.Points < minPoints {
		return fmt.Errorf("%w: need at least %d points", errRange, minPoints)
	}
	if !(args.To > args.From) {
		return fmt.Errorf("%w: --to must be above --from", errRange)
	}

	store := curve.NewStore()
	if args.Preset != "" {
		state, err := loadPreset(args.Preset)
		if err != nil {
			return err
		}
		if len(state.Knots) > 0 {
			store.Replace(state.Knots, state.ActiveKnots)
		}
	}
	ks := store.Load()

	var sp curve.Spline
	sp.Build(ks.Sorted())

	cli.PrintSummary(w, "Curve", []cli.Field{
		{Key: "Active knots", Value: fmt.Sprint(ks.Active)},
		{Key: "Segments", Value: fmt.Sprint(sp.Segments())},
		{Key: "Symmetric", Value: fmt.Sprint(!args.Asymmetric)},
	})
	fmt.Fprintln(w)

	for _, k := range ks.Sorted() {
		fmt.Fprintf(w, "  knot  x=%+.3f  y=%+.3f  tension=%+.2f\n", k.X, k.Y, k.Tension)
	}
	fmt.Fprintln(w)

	rows := sample(&sp, args.From, args.To, args.Points, !args.Asymmetric)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%9s %9s %9s", "x", "f(x)", "f'(x)")))
	for _, r := range rows {
		fmt.Fprintf(w, "%+9.4f %+9.4f %+9.4f %s\n", r.x, r.y, r.slope, barStyle.Render(bar(r.y, barWidth)))
	}
	return nil
}

type row struct {
	x, y, slope float64
}

// sample evaluates the curve at n evenly spaced inputs from lo to hi.
func sample(sp *curve.Spline, lo, hi float64, n int, symmetric bool) []row {
	rows := make([]row, n)
	step := (hi - lo) / float64(n-1)
	for i := range rows {
		x := lo + float64(i)*step
		rows[i] = row{x: x, y: sp.Eval(x, symmetric), slope: sp.Derivative(x, symmetric)}
	}
	return rows
}

// bar draws y in [-2, 2] as a marker on a track of the given width with
// the center at zero.
func bar(y float64, width int) string {
	span := curve.MaxCoord - curve.MinCoord
	pos := int((y - curve.MinCoord) / span * float64(width-1))
	pos = max(0, min(pos, width-1))

	track := []byte(strings.Repeat(" ", width))
	track[(width-1)/2] = '|'
	track[pos] = '*'
	return string(track)
}

func loadPreset(path string) (overdraw.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return overdraw.State{}, fmt.Errorf("failed to open preset: %w", err)
	}
	defer func() { _ = f.Close() }()
	return overdraw.LoadPreset(f)
}
