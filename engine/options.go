package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// defaultCompactionThreshold is the ratio of redundant-to-live index entries that
// triggers compaction. Deliberately coarse: it bounds wasted log space at
// roughly this fraction of live data, it isn't an exact waste measurement.
const defaultCompactionThreshold = 0.5

// Option configures a LogEngine at Open time.
type Option func(*logEngineConfig) error

type logEngineConfig struct {
	compactionThreshold float64
	logger              *zap.Logger
}

func newLogEngineConfig() *logEngineConfig {
	return &logEngineConfig{
		compactionThreshold: defaultCompactionThreshold,
		logger:              zap.NewNop(),
	}
}

// WithCompactionThreshold overrides the redundant/live ratio that triggers
// compaction after a Set.
func WithCompactionThreshold(ratio float64) Option {
	return func(c *logEngineConfig) error {
		if ratio <= 0 {
			return fmt.Errorf("compaction threshold must be positive, got %v", ratio)
		}
		c.compactionThreshold = ratio
		return nil
	}
}

// WithLogger attaches a logger the engine uses to report compaction runs.
// Callers that don't supply one get a no-op logger, so the engine stays
// usable outside of a server process.
func WithLogger(logger *zap.Logger) Option {
	return func(c *logEngineConfig) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}
