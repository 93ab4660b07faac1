package timefmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", Unknown},
		{"blank", "   ", Unknown},
		{"garbage", "not a time", Unknown},
		{"am lowercase", "9:05am", "09:05:00 AM"},
		{"am spaced", "9:05 AM", "09:05:00 AM"},
		{"pm with seconds", "1:02:03 pm", "01:02:03 PM"},
		{"24 hour", "14:00", "02:00:00 PM"},
		{"midnight", "0:30", "12:30:00 AM"},
		{"noon", "12:00", "12:00:00 PM"},
		{"midnight 12am", "12:15 AM", "12:15:00 AM"},
		{"hour out of range", "25:00", Unknown},
		{"bare four digits", "0930", "09:30:00 AM"},
		{"bare three digits", "930", "09:30:00 AM"},
		{"bare two digits", "14", "02:00:00 PM"},
		{"bare single digit", "7", "07:00:00 AM"},
		{"bare out of range", "2575", Unknown},
		{"iso datetime", "2024-03-01T08:15:00", "08:15:00 AM"},
		{"embedded in text", "around 8:45 am I think", "08:45:00 AM"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	once := Normalize("14:05")
	assert.Equal(t, once, Normalize(once))
}

func TestMinutesOfDay(t *testing.T) {
	m, ok := MinutesOfDay("12:00 AM")
	require.True(t, ok)
	assert.Equal(t, 0, m)

	m, ok = MinutesOfDay("12:00 PM")
	require.True(t, ok)
	assert.Equal(t, 720, m)

	m, ok = MinutesOfDay("11:59 PM")
	require.True(t, ok)
	assert.Equal(t, 1439, m)

	_, ok = MinutesOfDay("garbage")
	assert.False(t, ok)
}

func TestDifferenceMinutes(t *testing.T) {
	diff, ok := DifferenceMinutes("09:00:00 AM", "09:45:00 AM")
	require.True(t, ok)
	assert.Equal(t, 45, diff)

	diff, ok = DifferenceMinutes("8:15", "09:00:00 AM")
	require.True(t, ok)
	assert.Equal(t, 45, diff)

	_, ok = DifferenceMinutes("09:00:00 AM", "unknown")
	assert.False(t, ok)

	_, ok = DifferenceMinutes("", "09:00:00 AM")
	assert.False(t, ok)

	_, ok = DifferenceMinutes("09:00:00 AM", "")
	assert.False(t, ok)
}

func TestDifferenceMinutesSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"09:00:00 AM", "09:45:00 AM"},
		{"08:15", "14:00"},
		{"930", "1045"},
		{"12:00 AM", "11:59 PM"},
	}

	for _, pair := range pairs {
		ab, okAB := DifferenceMinutes(pair[0], pair[1])
		ba, okBA := DifferenceMinutes(pair[1], pair[0])

		require.True(t, okAB)
		require.True(t, okBA)
		assert.Equal(t, ab, ba, "difference must be symmetric for %v", pair)
		assert.GreaterOrEqual(t, ab, 0)
	}
}
