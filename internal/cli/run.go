package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/cwbudde/spectrafit/config"
	"github.com/cwbudde/spectrafit/fit"
	"github.com/cwbudde/spectrafit/internal/buildinfo"
	"github.com/cwbudde/spectrafit/internal/dataio"
	"github.com/cwbudde/spectrafit/internal/logging"
	"github.com/cwbudde/spectrafit/internal/metrics"
	"github.com/cwbudde/spectrafit/internal/output"
	"github.com/cwbudde/spectrafit/model"
	"github.com/cwbudde/spectrafit/report"
	"github.com/cwbudde/spectrafit/spectrum"
)

// Pipeline stage names used for timing metrics.
const (
	stageLoad       = "load"
	stagePreprocess = "preprocess"
	stageCompose    = "compose"
	stageFit        = "fit"
	stageReport     = "report"
	stageWrite      = "write"
)

// declinedNotice is printed when the user keeps existing outputs.
const declinedNotice = "Existing output files kept, nothing written."

type run struct {
	app     *App
	log     logr.Logger
	metrics *metrics.Recorder
}

func (r *run) stage(name string, fn func() error) error {
	started := time.Now()
	err := fn()
	r.metrics.ObserveStage(name, time.Since(started))
	return err
}

func (a *App) fit(ctx context.Context, cmd *cli.Command, dataFile, inputFile string) (err error) {
	r := &run{app: a, log: logr.Discard(), metrics: metrics.New()}

	metricsFile := cmd.String(keyMetricsFile)
	defer func() {
		var ff *fit.FitFailure
		switch {
		case errors.As(err, &ff):
			r.metrics.ObserveFailure()
		case err != nil:
			r.metrics.ObserveError()
		}
		if metricsFile == "" {
			return
		}
		if werr := r.metrics.WriteFile(metricsFile); werr != nil && err == nil {
			err = fmt.Errorf("metrics: %w", werr)
		}
	}()

	var (
		cfg *config.Configuration
		set settings
	)
	err = r.stage(stageLoad, func() error {
		raw, order, err := config.Load(inputFile)
		if err != nil {
			return err
		}
		if cfg, err = config.Validate(raw, config.WithKeyOrder(order)); err != nil {
			return err
		}
		if set, err = resolveSettings(cmd, cfg); err != nil {
			return err
		}
		cfg.Range = set.Range
		cfg.Oversampling = set.Oversampling
		return cfg.Check()
	})
	if err != nil {
		return err
	}
	metricsFile = set.MetricsFile

	r.log = logging.New(set.Verbose, a.Stdout).WithName(name)
	runID := uuid.NewString()
	r.log.Info("starting run", "runID", runID, "data", dataFile, "input", inputFile,
		"peaks", len(cfg.Peaks), "verbosity", logging.Level(set.Verbose))

	var raw, data *spectrum.Spectrum
	err = r.stage(stagePreprocess, func() error {
		var err error
		raw, err = dataio.ReadFile(dataFile,
			dataio.WithSeparator(set.Separator),
			dataio.WithDecimal(set.Decimal),
			dataio.WithHeader(set.Header),
			dataio.WithColumns(set.Columns[0], set.Columns[1]),
		)
		if err != nil {
			return err
		}
		opts := []spectrum.Option{
			spectrum.WithShift(set.Shift),
			spectrum.WithRange(cfg.Range.Start, cfg.Range.Stop),
		}
		if set.Smooth > 0 {
			opts = append(opts, spectrum.WithSmoothing(set.Smooth))
		}
		if cfg.Oversampling > 0 {
			opts = append(opts,
				spectrum.WithOversampling(cfg.Oversampling),
				spectrum.WithInterpolation(set.Interpolation),
			)
		}
		data, err = spectrum.Preprocess(raw, opts...)
		return err
	})
	if err != nil {
		return err
	}
	r.log.V(1).Info("preprocessed spectrum", "samples", raw.Len(), "fitted", data.Len())

	var m *model.Model
	if err = r.stage(stageCompose, func() (err error) {
		m, err = model.Compose(cfg)
		return err
	}); err != nil {
		return err
	}
	r.log.V(1).Info("composed model", "params", m.NumParams(), "free", len(m.FreeIndices()))

	fitOpts, err := fit.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	fitOpts = append(fitOpts, fit.WithLogger(r.log))

	var res *fit.Result
	if err = r.stage(stageFit, func() (err error) {
		res, err = fit.Run(ctx, m, data, fitOpts...)
		return err
	}); err != nil {
		return err
	}
	r.metrics.ObserveFit(metrics.Fit{
		Duration: res.Elapsed,
		Success:  res.Success,
		Nfev:     res.Nfev,
		Ndata:    res.Ndata,
		Redchi:   res.Redchi,
		RSquared: res.RSquared,
	})
	r.log.Info("fit finished", "method", res.Method, "nfev", res.Nfev,
		"redchi", res.Redchi, "rsquared", res.RSquared)

	var tables *report.Tables
	if err = r.stage(stageReport, func() (err error) {
		tables, err = report.Aggregate(res, raw,
			report.WithMinCorrel(cfg.Report.Float("min_correl", report.DefaultMinCorrel)),
			report.WithDescription(cfg.Description),
			report.WithMetadata(report.Metadata{
				Version:   buildinfo.String(),
				RunID:     runID,
				Timestamp: a.Now().UTC(),
				DataFile:  filepath.Base(dataFile),
				InputFile: filepath.Base(inputFile),
				Outfile:   set.Outfile,
			}),
		)
		return err
	}); err != nil {
		return err
	}

	return r.stage(stageWrite, func() error {
		return r.write(cmd, output.Paths(set.Outfile), tables)
	})
}

func (r *run) write(cmd *cli.Command, artifacts output.Artifacts, tables *report.Tables) error {
	if !cmd.Bool("yes") {
		existing, err := artifacts.Existing()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			ok, err := output.NewPrompter(r.app.Stdin, r.app.Stdout).ConfirmOverwrite(existing)
			if err != nil {
				return err
			}
			if !ok {
				_, err := fmt.Fprintln(r.app.Stdout, declinedNotice)
				return err
			}
		}
	}

	if err := artifacts.Write(tables); err != nil {
		return err
	}
	for _, p := range artifacts.All() {
		r.log.V(1).Info("wrote output", "path", p)
	}
	return nil
}
