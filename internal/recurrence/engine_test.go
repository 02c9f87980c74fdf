package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-06-10 is a Monday.
var monday = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func weeklySeries(exceptions ...time.Time) Series {
	return Series{
		Start:          monday,
		End:            monday.Add(time.Hour),
		Rule:           "FREQ=WEEKLY;BYDAY=MO,WE",
		ExceptionDates: exceptions,
	}
}

func TestEngine_ExpandWeeklyByday(t *testing.T) {
	engine := NewEngineWithConfig(DisabledCacheConfig)

	windowStart := monday.Truncate(24 * time.Hour)
	windowEnd := windowStart.Add(14 * 24 * time.Hour)

	occurrences, err := engine.Expand(weeklySeries(), windowStart, windowEnd)
	require.NoError(t, err)
	require.Len(t, occurrences, 4, "two Mondays and two Wednesdays in a 14-day window")

	expected := []time.Time{
		monday,                         // Mon
		monday.Add(2 * 24 * time.Hour), // Wed
		monday.Add(7 * 24 * time.Hour), // Mon
		monday.Add(9 * 24 * time.Hour), // Wed
	}
	for i, occ := range occurrences {
		assert.True(t, occ.Start.Equal(expected[i]), "occurrence %d: got %v, want %v", i, occ.Start, expected[i])
		assert.Equal(t, time.Hour, occ.End.Sub(occ.Start), "duration preserved")
	}
}

func TestEngine_ExpandExcludesExceptions(t *testing.T) {
	engine := NewEngineWithConfig(DisabledCacheConfig)

	windowStart := monday.Truncate(24 * time.Hour)
	windowEnd := windowStart.Add(14 * 24 * time.Hour)
	firstWednesday := monday.Add(2 * 24 * time.Hour)

	occurrences, err := engine.Expand(weeklySeries(firstWednesday), windowStart, windowEnd)
	require.NoError(t, err)
	require.Len(t, occurrences, 3)

	for _, occ := range occurrences {
		assert.False(t, occ.Start.Equal(firstWednesday), "excluded occurrence still present")
	}
}

func TestEngine_ExpandDailyInterval(t *testing.T) {
	engine := NewEngineWithConfig(DisabledCacheConfig)

	series := Series{
		Start: monday,
		End:   monday.Add(30 * time.Minute),
		Rule:  "FREQ=DAILY;INTERVAL=2",
	}

	occurrences, err := engine.Expand(series, monday, monday.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, occurrences, 4, "days 0, 2, 4, 6")

	for i, occ := range occurrences {
		want := monday.Add(time.Duration(i*2) * 24 * time.Hour)
		assert.True(t, occ.Start.Equal(want), "occurrence %d: got %v, want %v", i, occ.Start, want)
	}
}

func TestEngine_ExpandMonthlyAnchorsOnStart(t *testing.T) {
	engine := NewEngineWithConfig(DisabledCacheConfig)

	series := Series{
		Start: monday,
		End:   monday.Add(time.Hour),
		Rule:  "FREQ=MONTHLY",
	}

	occurrences, err := engine.Expand(series, monday, monday.AddDate(0, 3, 0))
	require.NoError(t, err)
	require.Len(t, occurrences, 4)
	for _, occ := range occurrences {
		assert.Equal(t, 10, occ.Start.Day())
		assert.Equal(t, 9, occ.Start.Hour())
	}
}

func TestEngine_ExpandWindowBeforeSeries(t *testing.T) {
	engine := NewEngineWithConfig(DisabledCacheConfig)

	occurrences, err := engine.Expand(weeklySeries(),
		monday.AddDate(-1, 0, 0), monday.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Empty(t, occurrences, "no occurrences before the series anchor")
}

func TestEngine_ExpandInvalidRule(t *testing.T) {
	engine := NewEngineWithConfig(DisabledCacheConfig)

	_, err := engine.Expand(Series{
		Start: monday,
		End:   monday.Add(time.Hour),
		Rule:  "FREQ=SOMETIMES",
	}, monday, monday.Add(24*time.Hour))

	var ire *InvalidRuleError
	require.ErrorAs(t, err, &ire)
}

func TestEngine_ExpandInvertedWindow(t *testing.T) {
	engine := NewEngineWithConfig(DisabledCacheConfig)

	_, err := engine.Expand(weeklySeries(), monday.Add(time.Hour), monday)
	require.Error(t, err)
}

func TestEngine_ExpandOccurrenceCap(t *testing.T) {
	cfg := DisabledCacheConfig
	cfg.MaxOccurrences = 5
	engine := NewEngineWithConfig(cfg)

	series := Series{
		Start: monday,
		End:   monday.Add(time.Hour),
		Rule:  "FREQ=DAILY",
	}

	occurrences, err := engine.Expand(series, monday, monday.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Len(t, occurrences, 5)
}

func TestEngine_ExpandDeterministic(t *testing.T) {
	// Determinism must hold with the cache both cold and warm.
	engine := NewEngine()
	defer engine.Close()

	windowStart := monday.Truncate(24 * time.Hour)
	windowEnd := windowStart.Add(14 * 24 * time.Hour)

	first, err := engine.Expand(weeklySeries(), windowStart, windowEnd)
	require.NoError(t, err)
	second, err := engine.Expand(weeklySeries(), windowStart, windowEnd)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
