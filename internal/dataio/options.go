package dataio

// Separator values with special meaning.
const (
	// SeparatorAuto picks the separator from the first data line.
	SeparatorAuto = ""
	// SeparatorWhitespace splits on runs of spaces and tabs.
	SeparatorWhitespace = "whitespace"
)

// HeaderAuto skips leading rows that do not parse as numbers.
const HeaderAuto = -1

// Config controls how a data file is read.
type Config struct {
	Separator string
	Decimal   rune
	Header    int
	// Columns selects the energy and intensity columns, either by zero-based
	// index or by header name.
	Columns [2]string
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns auto-detected separator and header with the first
// two columns as energy and intensity.
func DefaultConfig() Config {
	return Config{
		Separator: SeparatorAuto,
		Decimal:   '.',
		Header:    HeaderAuto,
		Columns:   [2]string{"0", "1"},
	}
}

// WithSeparator sets the field separator. "\\t" and "tab" mean a tab.
func WithSeparator(sep string) Option {
	return func(cfg *Config) {
		switch sep {
		case `\t`, "tab":
			sep = "\t"
		case `\s`, " ", "space":
			sep = SeparatorWhitespace
		}
		cfg.Separator = sep
	}
}

// WithDecimal sets the decimal mark.
func WithDecimal(mark rune) Option {
	return func(cfg *Config) {
		if mark != 0 {
			cfg.Decimal = mark
		}
	}
}

// WithHeader skips exactly n leading rows after comments.
func WithHeader(n int) Option {
	return func(cfg *Config) {
		if n >= HeaderAuto {
			cfg.Header = n
		}
	}
}

// WithColumns selects the energy and intensity columns.
func WithColumns(energy, intensity string) Option {
	return func(cfg *Config) {
		if energy != "" && intensity != "" {
			cfg.Columns = [2]string{energy, intensity}
		}
	}
}

// ApplyOptions applies opts to the defaults.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
