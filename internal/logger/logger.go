// Package logger builds the zap logger used for diagnostics on stderr.
package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a debug-level console logger writing to w when verbose is set,
// and a no-op logger otherwise.
func New(verbose bool, w io.Writer) *zap.Logger {
	if !verbose || w == nil {
		return zap.NewNop()
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.CallerKey = ""
	enc.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.AddSync(w),
		zap.DebugLevel,
	)
	return zap.New(core).Named("pa")
}
