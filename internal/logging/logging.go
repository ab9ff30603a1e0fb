// Package logging builds the run logger.
//
// Loggers are logr.Logger values backed by zap. Verbosity 0 discards
// everything, 1 enables info messages and every further level enables one
// more V-level of debug output.
package logging

import (
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MaxVerbosity is the highest verbosity with a distinct effect.
const MaxVerbosity = 3

// New returns a logger writing console-formatted lines to w. A nil w writes
// to stdout.
func New(verbosity int, w io.Writer) logr.Logger {
	if verbosity <= 0 {
		return logr.Discard()
	}
	if verbosity > MaxVerbosity {
		verbosity = MaxVerbosity
	}
	if w == nil {
		w = os.Stdout
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""

	// logr's V(n) maps to zap level -n.
	level := zap.NewAtomicLevelAt(zapcore.Level(1 - verbosity))
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zapr.NewLogger(zap.New(core))
}

// Level names the verbosity for log lines and help text.
func Level(verbosity int) string {
	switch {
	case verbosity <= 0:
		return "silent"
	case verbosity == 1:
		return "info"
	default:
		return "debug"
	}
}
