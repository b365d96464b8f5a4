// Package logging builds the engine's internal trace logger. This logger is
// strictly diagnostic: the directive-processing transcript is written
// straight to stdout by pkg/sim and pkg/driver, never through here, so that
// structured log lines can never interleave with or reformat the required
// output.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a SugaredLogger writing to stderr. verbose raises the level
// from Info to Debug.
func New(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Component returns a child logger tagged with the component name. This
// generalizes a per-process log-prefix scheme into a per-component one,
// since the simulator runs as a single process.
func Component(base *zap.SugaredLogger, name string) *zap.SugaredLogger {
	return base.With("component", name)
}
