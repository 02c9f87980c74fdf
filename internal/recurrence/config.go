package recurrence

import (
	"time"
)

// Config holds configuration options for the recurrence engine
type Config struct {
	// Cache configuration
	CacheEnabled bool
	Cache        CacheConfig

	// MaxOccurrences caps how many occurrences a single expansion may yield,
	// guarding against degenerate rule/window combinations.
	MaxOccurrences int

	// DefaultHorizon is the expansion window used when a caller does not
	// supply one: now .. now+DefaultHorizon.
	DefaultHorizon time.Duration
}

// DefaultConfig provides sensible defaults for production use
var DefaultConfig = Config{
	CacheEnabled:   true,
	Cache:          DefaultCacheConfig,
	MaxOccurrences: 1000,
	DefaultHorizon: 365 * 24 * time.Hour,
}

// DisabledCacheConfig turns off result caching entirely
var DisabledCacheConfig = Config{
	CacheEnabled:   false,
	MaxOccurrences: 1000,
	DefaultHorizon: 365 * 24 * time.Hour,
}
