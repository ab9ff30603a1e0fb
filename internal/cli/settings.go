package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"github.com/urfave/cli/v3"

	"github.com/cwbudde/spectrafit/config"
	"github.com/cwbudde/spectrafit/internal/failure"
	"github.com/cwbudde/spectrafit/spectrum"
)

// Setting keys. They double as flag names, settings block keys and, upper
// cased with the SPECTRAFIT_ prefix, environment variables.
const (
	keyOutfile      = "outfile"
	keyEnergyStart  = "energy_start"
	keyEnergyStop   = "energy_stop"
	keyOversampling = "oversampling"
	keyInterp       = "interpolation"
	keyShift        = "shift"
	keySmooth       = "smooth"
	keySeparator    = "separator"
	keyDecimal      = "decimal"
	keyHeader       = "header"
	keyColumn       = "column"
	keyVerbose      = "verbose"
	keyMetricsFile  = "metrics-file"
)

const envPrefix = "SPECTRAFIT"

// DefaultOutfile is the output basename when none is configured.
const DefaultOutfile = "fit_results"

// settings are the resolved run settings.
type settings struct {
	Outfile       string
	Range         config.Range
	Oversampling  int
	Interpolation spectrum.Interpolation
	Shift         float64
	Smooth        int
	Separator     string
	Decimal       rune
	Header        int
	Columns       [2]string
	Verbose       int
	MetricsFile   string
}

// resolveSettings layers the configuration's settings block, the
// environment and the command line, in increasing precedence.
func resolveSettings(cmd *cli.Command, cfg *config.Configuration) (settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyOutfile, DefaultOutfile)
	v.SetDefault(keyInterp, spectrum.Linear.String())
	v.SetDefault(keyShift, 0.0)
	v.SetDefault(keySmooth, 0)
	v.SetDefault(keySeparator, "")
	v.SetDefault(keyDecimal, ".")
	v.SetDefault(keyHeader, -1)
	v.SetDefault(keyColumn, "0,1")
	v.SetDefault(keyVerbose, 0)
	v.SetDefault(keyMetricsFile, "")

	file := map[string]any(cfg.Settings.Clone())
	if !math.IsInf(cfg.Range.Start, -1) {
		file[keyEnergyStart] = cfg.Range.Start
	}
	if !math.IsInf(cfg.Range.Stop, 1) {
		file[keyEnergyStop] = cfg.Range.Stop
	}
	file[keyOversampling] = cfg.Oversampling
	if err := v.MergeConfigMap(file); err != nil {
		return settings{}, failure.Wrap("settings", failure.KindConfig, err)
	}

	for _, f := range cmd.Flags {
		name := f.Names()[0]
		if !cmd.IsSet(name) {
			continue
		}
		switch name {
		case keyOutfile, keyInterp, keySeparator, keyDecimal, keyColumn, keyMetricsFile:
			v.Set(name, cmd.String(name))
		case keyEnergyStart, keyEnergyStop, keyShift:
			v.Set(name, cmd.Float(name))
		case keySmooth, keyHeader, keyVerbose:
			v.Set(name, cmd.Int(name))
		case keyOversampling:
			v.Set(name, cmd.Bool(name))
		}
	}

	s := settings{
		Outfile:     v.GetString(keyOutfile),
		Range:       config.FullRange(),
		Shift:       v.GetFloat64(keyShift),
		Smooth:      v.GetInt(keySmooth),
		Separator:   v.GetString(keySeparator),
		Header:      v.GetInt(keyHeader),
		Verbose:     v.GetInt(keyVerbose),
		MetricsFile: v.GetString(keyMetricsFile),
	}
	if s.Outfile == "" {
		s.Outfile = DefaultOutfile
	}
	if v.IsSet(keyEnergyStart) {
		s.Range.Start = v.GetFloat64(keyEnergyStart)
	}
	if v.IsSet(keyEnergyStop) {
		s.Range.Stop = v.GetFloat64(keyEnergyStop)
	}

	var err error
	if s.Oversampling, err = parseOversampling(v.Get(keyOversampling)); err != nil {
		return settings{}, err
	}
	if s.Interpolation, err = spectrum.ParseInterpolation(v.GetString(keyInterp)); err != nil {
		return settings{}, failure.Wrap("settings", failure.KindConfig, err)
	}
	if s.Decimal, err = parseDecimal(v.GetString(keyDecimal)); err != nil {
		return settings{}, err
	}
	if s.Columns, err = parseColumns(v.Get(keyColumn)); err != nil {
		return settings{}, err
	}
	if s.Smooth < 0 {
		return settings{}, failure.New("settings", failure.KindConfig, "smooth window must not be negative, got %d", s.Smooth)
	}
	return s, nil
}

// parseOversampling accepts the forms the settings block allows plus their
// string spellings from the environment.
func parseOversampling(v any) (int, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if b, err := strconv.ParseBool(s); err == nil {
			return config.ParseOversampling(b)
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, failure.New("settings", failure.KindConfig, "oversampling %q is neither a boolean nor an integer", s)
		}
		return config.ParseOversampling(n)
	}
	return config.ParseOversampling(v)
}

func parseDecimal(s string) (rune, error) {
	r := []rune(s)
	if len(r) != 1 {
		return 0, failure.New("settings", failure.KindConfig, "decimal mark %q must be a single character", s)
	}
	return r[0], nil
}

// parseColumns reads "0,1", "energy,intensity" or a two-element list.
func parseColumns(v any) ([2]string, error) {
	var parts []string
	switch t := v.(type) {
	case string:
		parts = strings.Split(t, ",")
	case []any:
		for _, e := range t {
			parts = append(parts, fmt.Sprint(e))
		}
	case []string:
		parts = t
	default:
		return [2]string{}, failure.New("settings", failure.KindConfig, "column must be a list of two columns, got %v", v)
	}
	if len(parts) != 2 {
		return [2]string{}, failure.New("settings", failure.KindConfig, "column needs exactly two entries, got %d", len(parts))
	}
	return [2]string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])}, nil
}
