package fit

import (
	"strings"
	"time"

	"github.com/cwbudde/spectrafit/config"
	"github.com/go-logr/logr"
)

// NaN policies of the minimizer block.
const (
	NaNRaise     = "raise"
	NaNPropagate = "propagate"
	NaNOmit      = "omit"
)

// Default tolerances of the Levenberg-Marquardt solver.
const (
	DefaultXtol = 1.5e-8
	DefaultFtol = 1.5e-8
	DefaultGtol = 0.0
)

// Config holds the solver settings.
type Config struct {
	Method string
	// MaxNfev bounds residual evaluations. Zero selects 2000*(nfree+1).
	MaxNfev      int
	Xtol         float64
	Ftol         float64
	Gtol         float64
	Timeout      time.Duration
	NaNPolicy    string
	Covariance   bool
	ConfInterval *config.ConfInterval
	Logger       logr.Logger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns Levenberg-Marquardt with covariance estimation and
// no confidence intervals.
func DefaultConfig() Config {
	return Config{
		Method:     MethodLeastSq,
		Xtol:       DefaultXtol,
		Ftol:       DefaultFtol,
		Gtol:       DefaultGtol,
		NaNPolicy:  NaNRaise,
		Covariance: true,
		Logger:     logr.Discard(),
	}
}

// WithMethod selects the solver by name (case-insensitive).
func WithMethod(name string) Option {
	return func(cfg *Config) {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			cfg.Method = name
		}
	}
}

// WithMaxNfev bounds the number of residual evaluations.
func WithMaxNfev(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxNfev = n
		}
	}
}

// WithTolerances sets the relative step and cost tolerances.
func WithTolerances(xtol, ftol float64) Option {
	return func(cfg *Config) {
		if xtol > 0 {
			cfg.Xtol = xtol
		}
		if ftol > 0 {
			cfg.Ftol = ftol
		}
	}
}

// WithGtol sets the gradient convergence threshold.
func WithGtol(gtol float64) Option {
	return func(cfg *Config) {
		if gtol >= 0 {
			cfg.Gtol = gtol
		}
	}
}

// WithTimeout bounds the wall time of the solve.
func WithTimeout(d time.Duration) Option {
	return func(cfg *Config) {
		if d > 0 {
			cfg.Timeout = d
		}
	}
}

// WithNaNPolicy selects how non-finite residuals are treated.
func WithNaNPolicy(policy string) Option {
	return func(cfg *Config) {
		if policy != "" {
			cfg.NaNPolicy = strings.ToLower(policy)
		}
	}
}

// WithCovariance enables or disables the covariance estimate.
func WithCovariance(enabled bool) Option {
	return func(cfg *Config) {
		cfg.Covariance = enabled
	}
}

// WithConfInterval requests confidence intervals.
func WithConfInterval(ci *config.ConfInterval) Option {
	return func(cfg *Config) {
		cfg.ConfInterval = ci
	}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// OptionsFromConfig translates the minimizer, optimizer and conf_interval
// blocks into options.
func OptionsFromConfig(c *config.Configuration) ([]Option, error) {
	opts := []Option{
		WithMethod(c.Optimizer.String("method", MethodLeastSq)),
		WithMaxNfev(c.Optimizer.Int("max_nfev", 0)),
		WithTolerances(c.Optimizer.Float("xtol", 0), c.Optimizer.Float("ftol", 0)),
		WithConfInterval(c.ConfInterval),
	}
	if c.Optimizer.Has("gtol") {
		opts = append(opts, WithGtol(c.Optimizer.Float("gtol", DefaultGtol)))
	}
	if secs := c.Optimizer.Float("timeout", 0); secs > 0 {
		opts = append(opts, WithTimeout(time.Duration(secs*float64(time.Second))))
	}

	policy := strings.ToLower(c.Minimizer.String("nan_policy", NaNRaise))
	switch policy {
	case NaNRaise, NaNPropagate, NaNOmit:
		opts = append(opts, WithNaNPolicy(policy))
	default:
		return nil, configError("%w: minimizer.nan_policy %q (want raise, propagate or omit)", errInvalidOption, policy)
	}
	opts = append(opts, WithCovariance(c.Minimizer.Bool("calc_covar", true)))

	if c.Optimizer.Has("method") {
		if _, ok := c.Optimizer["method"].(string); !ok {
			return nil, configError("%w: optimizer.method must be a string", errInvalidOption)
		}
	}

	return opts, nil
}
