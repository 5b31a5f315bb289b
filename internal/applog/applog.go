// Package applog builds the zerolog.Logger the CLI threads into every
// engine.Simulation, writing to out/dtnsim.log with rotation via
// lumberjack when not running in console-only (--debug) mode, the same
// split the logging examples in the pack use between a stdout writer and
// a rotating file writer.
package applog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogPath   = "out/dtnsim.log"
	defaultMaxSizeMB = 50
	defaultMaxAge    = 7
	defaultBackups   = 3
)

// New builds a logger. debug writes pretty-printed, level-debug output to
// stderr only (for interactive runs); otherwise it writes level-info JSON
// lines to a rotating file under out/.
func New(debug bool) zerolog.Logger {
	if debug {
		console := zerolog.ConsoleWriter{Out: os.Stderr}
		return zerolog.New(console).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}

	var w io.Writer = &lumberjack.Logger{
		Filename:   defaultLogPath,
		MaxSize:    defaultMaxSizeMB,
		MaxAge:     defaultMaxAge,
		MaxBackups: defaultBackups,
		Compress:   true,
	}
	return zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}
