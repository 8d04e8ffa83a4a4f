package logger

import (
	"io"
	"os"

	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

var Log *slog.Logger

// Init sets up the package-level logger. Log lines go to stderr and to a
// size-rotated file so long-running receive sessions don't grow unbounded.
func Init(logFilePath string) {
	rotator := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    10, // MB
		MaxBackups: 0,  // only one file
		MaxAge:     0,  // ignore age
		Compress:   false,
	}
	writer := io.MultiWriter(os.Stderr, rotator)
	Log = slog.New(slog.NewJSONHandler(writer, nil))
	slog.SetDefault(Log)
}

// InitDiscard routes log output nowhere. Used by tests.
func InitDiscard() {
	Log = slog.New(slog.NewJSONHandler(io.Discard, nil))
}
