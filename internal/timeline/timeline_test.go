package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(t *testing.T, s string) time.Time {
	t.Helper()
	m, err := ParseMonth(s)
	require.NoError(t, err)
	return m
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("09/2023")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"", "2023-09", "13/2023", "9/2023x"} {
		_, err := ParseMonth(bad)
		assert.Error(t, err, bad)
	}
}

func TestPositionScenario(t *testing.T) {
	w := Window{Start: month(t, "01/2022"), End: month(t, "01/2026")}

	p := w.Position(month(t, "01/2023"), month(t, "01/2024"))

	// 2024 is a leap year, so the second quarter is a day longer.
	assert.InDelta(t, 25.0, p.OffsetPercent, 0.1)
	assert.InDelta(t, 25.0, p.WidthPercent, 0.1)
}

func TestPositionTextMatchesPosition(t *testing.T) {
	w := DefaultWindow

	p, err := w.PositionText("01/2023", "01/2024")
	require.NoError(t, err)
	assert.Equal(t, w.Position(month(t, "01/2023"), month(t, "01/2024")), p)

	_, err = w.PositionText("01/2023", "soon")
	assert.Error(t, err)
}

func TestPositionOffsetIsMonotonic(t *testing.T) {
	w := DefaultWindow
	end := month(t, "06/2025")

	prev := w.Position(month(t, "01/2021"), end).OffsetPercent
	for _, s := range []string{"06/2021", "01/2022", "03/2023", "12/2024", "06/2026"} {
		cur := w.Position(month(t, s), end).OffsetPercent
		assert.Greater(t, cur, prev, s)
		prev = cur
	}
}

func TestPositionIsNotClamped(t *testing.T) {
	w := DefaultWindow

	before := w.Position(month(t, "01/2020"), month(t, "01/2021"))
	assert.Less(t, before.OffsetPercent, 0.0)

	after := w.Position(month(t, "01/2027"), month(t, "01/2028"))
	assert.Greater(t, after.OffsetPercent, 100.0)

	reversed := w.Position(month(t, "01/2024"), month(t, "01/2023"))
	assert.Less(t, reversed.WidthPercent, 0.0)
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Placement
		want Placement
	}{
		{"inside", Placement{10, 20}, Placement{10, 20}},
		{"starts before", Placement{-10, 30}, Placement{0, 20}},
		{"ends after", Placement{90, 30}, Placement{90, 10}},
		{"wholly before", Placement{-50, 10}, Placement{0, 0}},
		{"wholly after", Placement{120, 10}, Placement{100, 0}},
		{"negative width", Placement{40, -10}, Placement{40, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Clamp()
			assert.InDelta(t, tt.want.OffsetPercent, got.OffsetPercent, 1e-9)
			assert.InDelta(t, tt.want.WidthPercent, got.WidthPercent, 1e-9)
		})
	}

	assert.True(t, Placement{10, 20}.Visible())
	assert.False(t, Placement{-50, 10}.Visible())
}

func TestZeroWindow(t *testing.T) {
	w := Window{Start: month(t, "01/2022"), End: month(t, "01/2022")}
	assert.Equal(t, Placement{}, w.Position(month(t, "01/2023"), month(t, "01/2024")))
	assert.Nil(t, w.Years())
}

func TestYears(t *testing.T) {
	ticks := DefaultWindow.Years()

	require.Len(t, ticks, 4)
	assert.Equal(t, Tick{Year: 2022, OffsetPercent: 0}, ticks[0])
	assert.Equal(t, Tick{Year: 2023, OffsetPercent: 25}, ticks[1])
	assert.Equal(t, Tick{Year: 2025, OffsetPercent: 75}, ticks[3])
}
