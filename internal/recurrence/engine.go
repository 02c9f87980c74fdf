// Package recurrence parses recurrence rules and expands recurring series
// into concrete occurrences within a bounded window.
package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Engine expands recurring series. It is safe for concurrent use.
type Engine struct {
	cache  *Cache
	config Config
}

// NewEngine creates an engine with the default configuration.
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultConfig)
}

// NewEngineWithConfig creates an engine with custom configuration.
func NewEngineWithConfig(config Config) *Engine {
	var cache *Cache
	if config.CacheEnabled {
		cache = NewCache(config.Cache)
	}

	return &Engine{
		cache:  cache,
		config: config,
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Close stops the cache's background cleanup, if caching is enabled.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// Expand materializes the series' occurrences whose start instants fall
// inside [windowStart, windowEnd]. Each occurrence keeps the duration of the
// series' first occurrence. Occurrence starts listed in the series' exception
// dates are omitted. The result is a pure function of the inputs: identical
// series and window always yield identical occurrences.
func (e *Engine) Expand(series Series, windowStart, windowEnd time.Time) ([]TimeOccurrence, error) {
	if windowEnd.Before(windowStart) {
		return nil, fmt.Errorf("expansion window end %v precedes start %v", windowEnd, windowStart)
	}

	rule, err := ParseRule(series.Rule)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if occurrences, ok := e.cache.Get(cacheKey(series, windowStart, windowEnd)); ok {
			return occurrences, nil
		}
	}

	r, err := rrule.NewRRule(rule.options(series.Start))
	if err != nil {
		return nil, &InvalidRuleError{Rule: series.Rule, Reason: err.Error()}
	}

	starts := r.Between(windowStart, windowEnd, true)
	if max := e.config.MaxOccurrences; max > 0 && len(starts) > max {
		starts = starts[:max]
	}

	duration := series.End.Sub(series.Start)
	occurrences := make([]TimeOccurrence, 0, len(starts))
	for _, start := range starts {
		if isExcluded(start, series.ExceptionDates) {
			continue
		}
		occurrences = append(occurrences, TimeOccurrence{
			Start: start,
			End:   start.Add(duration),
		})
	}

	if e.cache != nil {
		e.cache.Put(cacheKey(series, windowStart, windowEnd), occurrences)
	}

	return occurrences, nil
}

// isExcluded checks if a given time is in the exception list
func isExcluded(t time.Time, exceptions []time.Time) bool {
	for _, ex := range exceptions {
		if t.Equal(ex) {
			return true
		}
	}
	return false
}
