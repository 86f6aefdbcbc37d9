package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a preconfigured zap.Logger writing JSON to stdout.
// Development mode switches to the console encoder.
func New(level string, development bool) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// MaskEmail hides the local part of an address, keeping the domain.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return strings.Repeat("*", len(email))
	}
	local := email[:at]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + email[at:]
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + email[at:]
}
