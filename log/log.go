package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Plugin = zapcore.Core

// NOTE: options passed here are appended after DefaultOption, some of them
// cannot be overridden.
func NewLogger(plugin zapcore.Core, options ...zap.Option) *zap.Logger {
	return zap.New(plugin, append(DefaultOption(), options...)...)
}

func NewPlugin(writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(DefaultEncoder(), writer, enabler)
}

func NewStdoutPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stdout)), enabler)
}

func NewStderrPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stderr)), enabler)
}

// lumberjack holds the file but does not expose Sync, so the returned closer
// must be closed before the process exits to flush everything to disk.
func NewFilePlugin(
	filePath string, enabler zapcore.LevelEnabler) (Plugin, io.Closer) {
	var writer = DefaultLumberjackLogger()
	writer.Filename = filePath

	return NewPlugin(zapcore.AddSync(writer), enabler), writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the process logger from a level name. Output goes to stderr so
// it never interleaves with the interactive prompts on stdout; when filePath
// is set the same entries are also written to a rotating file.
func New(level string, filePath string) (*zap.Logger, io.Closer, error) {
	logLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	plugin := NewStderrPlugin(logLevel)
	if filePath == "" {
		return NewLogger(plugin), nopCloser{}, nil
	}

	filePlugin, closer := NewFilePlugin(filePath, logLevel)

	return NewLogger(zapcore.NewTee(plugin, filePlugin)), closer, nil
}
