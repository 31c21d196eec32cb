// Package logging builds the structured logger shared by the binaries.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how much the logger writes.
type Options struct {
	Level string
	// File enables a size-rotated log file.
	File string
	// FileOnly keeps stderr clean, for terminal UIs. Without a File nothing is written;
	// pair it with DefaultFile.
	FileOnly bool
}

// New returns a JSON logger. An unknown level falls back to info.
func New(opts Options) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.SetOutput(output(opts))
	return logger
}

func output(opts Options) io.Writer {
	var sinks []io.Writer
	if !opts.FileOnly {
		sinks = append(sinks, os.Stderr)
	}
	if opts.File != "" {
		sinks = append(sinks, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}

	switch len(sinks) {
	case 0:
		return io.Discard
	case 1:
		return sinks[0]
	default:
		return io.MultiWriter(sinks...)
	}
}

// DefaultFile is where app logs when no LOG_FILE is configured and stderr is not an option:
// the user cache directory, or the temp directory when there is none.
func DefaultFile(app string) string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "partselect-chat", app+".log")
}
