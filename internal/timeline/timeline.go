// Package timeline maps date ranges onto a fixed horizontal window.
package timeline

import (
	"time"

	"github.com/pkg/errors"
)

// DateLayout is the textual "MM/YYYY" form used by the content files.
const DateLayout = "01/2006"

// Window is the fixed date range drawn by the timeline.
type Window struct {
	Start time.Time
	End   time.Time
}

// DefaultWindow spans January 2022 to January 2026.
var DefaultWindow = Window{
	Start: time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
}

// ParseMonth parses "MM/YYYY" into the first day of that month, UTC.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid month %q", s)
	}
	return t, nil
}

// Placement is where a record sits on the window, in percent of its width.
type Placement struct {
	OffsetPercent float64 `json:"offsetPercent"`
	WidthPercent  float64 `json:"widthPercent"`
}

// Position maps [start, end) onto w. The result is not clamped: records
// outside the window yield offsets outside [0,100] and may have negative
// width.
func (w Window) Position(start, end time.Time) Placement {
	total := float64(w.End.Sub(w.Start))
	if total == 0 {
		return Placement{}
	}
	startPos := float64(start.Sub(w.Start)) / total * 100
	endPos := float64(end.Sub(w.Start)) / total * 100
	return Placement{OffsetPercent: startPos, WidthPercent: endPos - startPos}
}

// PositionText parses both dates and maps them onto w.
func (w Window) PositionText(start, end string) (Placement, error) {
	s, err := ParseMonth(start)
	if err != nil {
		return Placement{}, err
	}
	e, err := ParseMonth(end)
	if err != nil {
		return Placement{}, err
	}
	return w.Position(s, e), nil
}

// Clamp clips the placement to the visible [0,100] band. A record wholly
// outside the window, or with a negative width, collapses to zero width.
func (p Placement) Clamp() Placement {
	left := clamp(p.OffsetPercent)
	right := clamp(p.OffsetPercent + p.WidthPercent)
	if right < left {
		right = left
	}
	return Placement{OffsetPercent: left, WidthPercent: right - left}
}

// Visible reports whether any part of the placement falls in the window.
func (p Placement) Visible() bool {
	return p.Clamp().WidthPercent > 0
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// Tick is a year label under the timeline.
type Tick struct {
	Year          int     `json:"year"`
	OffsetPercent float64 `json:"offsetPercent"`
}

// Years returns one evenly spaced label per year from the window's start
// year up to, but excluding, its end year.
func (w Window) Years() []Tick {
	startYear := w.Start.Year()
	endYear := w.End.Year()
	span := endYear - startYear
	if span <= 0 {
		return nil
	}
	ticks := make([]Tick, 0, span)
	for i := 0; i < span; i++ {
		ticks = append(ticks, Tick{
			Year:          startYear + i,
			OffsetPercent: float64(i) / float64(span) * 100,
		})
	}
	return ticks
}
