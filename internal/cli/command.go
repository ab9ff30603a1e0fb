package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/cwbudde/spectrafit/config"
	"github.com/cwbudde/spectrafit/internal/buildinfo"
	"github.com/cwbudde/spectrafit/internal/failure"
	"github.com/cwbudde/spectrafit/spectrum"
)

const name = "spectrafit"

// ErrUsage marks invocation errors such as a missing data file.
var ErrUsage = errors.New("usage")

// App wires the command to its environment.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time
}

// NewApp returns an App bound to the process streams.
func NewApp() *App {
	return &App{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr, Now: time.Now}
}

// Run executes the command with args (program name first) and returns the
// process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	cmd := a.command()
	if err := cmd.Run(ctx, args); err != nil {
		a.printError(err)
		return 1
	}
	return 0
}

func (a *App) printError(err error) {
	var ufe *config.UnsupportedFormatError
	if errors.As(err, &ufe) {
		fmt.Fprintln(a.Stderr, ufe.Error())
		return
	}
	var mke *config.MissingKeyError
	if errors.As(err, &mke) {
		fmt.Fprintln(a.Stderr, mke.Error())
		return
	}
	switch kind := failure.KindOf(err); kind {
	case "", failure.KindConfig:
		fmt.Fprintf(a.Stderr, "ERROR: %v\n", err)
	default:
		// Anything but a configuration mistake names its kind.
		fmt.Fprintf(a.Stderr, "ERROR (%s): %v\n", kind, err)
	}
}

func (a *App) command() *cli.Command {
	return &cli.Command{
		Name:        name,
		Usage:       "fit peak models to one-dimensional spectra",
		ArgsUsage:   "DATA",
		HideVersion: true,
		Writer:      a.Stdout,
		ErrWriter:   a.Stderr,
		Reader:      a.Stdin,
		Description: `Fits a sum of peak shapes described in INPUT to the energy/intensity
pairs in DATA and writes the results next to the output basename.

# Examples

Fit with defaults:
  spectrafit data.csv -i fit.yaml

Restrict the energy range and oversample the fitted grid:
  spectrafit data.csv -i fit.toml -e0 0 -e1 5 --oversampling -o results/run1`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Fit description (*.json, *.yaml or *.toml)",
			},
			&cli.StringFlag{
				Name:    keyOutfile,
				Aliases: []string{"o"},
				Value:   DefaultOutfile,
				Usage:   "Basename of the output files",
			},
			&cli.FloatFlag{
				Name:    keyEnergyStart,
				Aliases: []string{"e0"},
				Usage:   "Lowest energy kept for fitting",
			},
			&cli.FloatFlag{
				Name:    keyEnergyStop,
				Aliases: []string{"e1"},
				Usage:   "Highest energy kept for fitting",
			},
			&cli.BoolFlag{
				Name:    keyOversampling,
				Aliases: []string{"ov"},
				Usage:   fmt.Sprintf("Fit on a %dx denser interpolated grid", config.DefaultOversampling),
			},
			&cli.StringFlag{
				Name:    keyInterp,
				Aliases: []string{"ip"},
				Value:   spectrum.Linear.String(),
				Usage:   "Oversampling interpolation: linear or hermite",
			},
			&cli.FloatFlag{
				Name:    keyShift,
				Aliases: []string{"s"},
				Usage:   "Constant added to every energy before clipping",
			},
			&cli.IntFlag{
				Name:    keySmooth,
				Aliases: []string{"sm"},
				Usage:   "Savitzky-Golay window length (odd, 0 disables smoothing)",
			},
			&cli.StringFlag{
				Name:    keySeparator,
				Aliases: []string{"sep"},
				Usage:   `Field separator of DATA, e.g. ",", ";", "\t" or "whitespace" (default: detected)`,
			},
			&cli.StringFlag{
				Name:    keyDecimal,
				Aliases: []string{"dec"},
				Value:   ".",
				Usage:   "Decimal mark of DATA",
			},
			&cli.IntFlag{
				Name:    keyHeader,
				Aliases: []string{"hd"},
				Value:   -1,
				Usage:   "Header rows to skip in DATA (-1 detects them)",
			},
			&cli.StringFlag{
				Name:    keyColumn,
				Aliases: []string{"c"},
				Value:   "0,1",
				Usage:   "Energy and intensity columns, by index or header name",
			},
			&cli.IntFlag{
				Name:    keyVerbose,
				Aliases: []string{"vb"},
				Usage:   "Log verbosity: 0 silent, 1 info, 2 debug",
			},
			&cli.BoolFlag{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "Print the version and exit",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Overwrite existing output files without asking",
			},
			&cli.StringFlag{
				Name:  keyMetricsFile,
				Usage: "Write run metrics in Prometheus text format to this file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("version") {
				_, err := fmt.Fprintf(a.Stdout, "Currently used version is: %s\n", buildinfo.String())
				return err
			}
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: expected exactly one DATA file, got %d", ErrUsage, cmd.NArg())
			}
			if cmd.String("input") == "" {
				return fmt.Errorf("%w: missing fit description (-i INPUT)", ErrUsage)
			}
			return a.fit(ctx, cmd, cmd.Args().First(), cmd.String("input"))
		},
	}
}
