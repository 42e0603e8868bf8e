package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field names shared by every component so log lines stay greppable.
const (
	FieldKey     = "key"
	FieldFolder  = "folder"
	FieldIntent  = "intent"
	FieldIndex   = "index"
	FieldSurface = "surface"
	FieldBackend = "backend"
	FieldAddr    = "addr"
	FieldError   = "error"
)

type Options struct {
	// Level is a zapcore level name (debug|info|warn|error). LINKBOX_DEBUG forces debug.
	Level string
	// File receives output; empty means stderr.
	File string
}

// New builds a console logger. The returned cleanup flushes and closes the sink.
func New(opts Options) (*zap.Logger, func(), error) {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var sink zapcore.WriteSyncer
	closeFn := func() {}
	if f := strings.TrimSpace(opts.File); f != "" {
		if err := os.MkdirAll(filepath.Dir(f), 0o755); err != nil {
			return nil, nil, err
		}
		fh, err := os.OpenFile(f, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		sink = zapcore.AddSync(fh)
		closeFn = func() { _ = fh.Close() }
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		sink = zapcore.Lock(os.Stderr)
	}

	level := ParseLevel(opts.Level)
	if os.Getenv("LINKBOX_DEBUG") != "" {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, level)
	logger := zap.New(core, zap.AddCaller())
	return logger, func() {
		_ = logger.Sync()
		closeFn()
	}, nil
}

func ParseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
