package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetween(t *testing.T) {
	base := time.Date(2025, 5, 20, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		to   time.Time
		want int
	}{
		{"同一天", time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), 0},
		{"7天后", time.Date(2025, 5, 27, 0, 0, 0, 0, time.UTC), 7},
		{"6天后", time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC), 6},
		{"7.9天按整天计", time.Date(2025, 5, 27, 23, 0, 0, 0, time.UTC), 7},
		{"已过去", time.Date(2025, 5, 18, 0, 0, 0, 0, time.UTC), -2},
		{"跨月", time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(base, tt.to))
		})
	}
}

func TestFixedClock(t *testing.T) {
	start := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)
	c := Fixed(start)
	assert.Equal(t, start, c.Now())

	c.Advance(48 * time.Hour)
	assert.Equal(t, time.Date(2025, 5, 22, 0, 0, 0, 0, time.UTC), Today(c))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2025/06/01")
	assert.Error(t, err)
}
