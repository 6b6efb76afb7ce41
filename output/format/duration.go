package format

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ProgressBarWidth caps the progress bar.
const ProgressBarWidth = 40

// Elapsed returns the seconds between startMs (unix milliseconds) and now,
// floored when round is set. An unset start, or a start in the future,
// yields 0.
func Elapsed(startMs int64, now time.Time, round bool) float64 {
	if startMs <= 0 {
		return 0
	}
	secs := float64(now.UnixMilli()-startMs) / 1000
	if secs < 0 {
		return 0
	}
	if round {
		secs = math.Floor(secs)
	}
	return secs
}

// Seconds formats a second count the shortest way ("3", "2.5").
func Seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "s"
}

// Time renders the value of the Time row. Running a second or more over the
// estimate is highlighted; the estimate is shown while the run is still
// within it.
func (s *Styles) Time(runTime, estimate float64, done bool) string {
	text := Seconds(runTime)
	if estimate > 0 && runTime >= estimate+1 {
		text = s.Warn.Render(text)
	}
	if !done && runTime < estimate {
		text += ", estimated " + Seconds(estimate)
	}
	return text
}

// ProgressCells computes the filled and empty cell counts of the progress
// bar. ok is false when no bar should be drawn: the run is done, the
// estimate is too small to be worth it or already exceeded, or the width
// is unknown or too narrow.
func ProgressCells(runTime, estimate float64, width int, done bool) (filled, empty int, ok bool) {
	if done || estimate <= 2 || runTime >= estimate || width <= 0 {
		return 0, 0, false
	}
	barWidth := min(ProgressBarWidth, width)
	if barWidth < 2 {
		return 0, 0, false
	}
	filled = min(int(math.Floor(runTime/estimate*float64(barWidth))), barWidth)
	filled = max(filled, 0)
	return filled, barWidth - filled, true
}

// ProgressBar renders the bar, or "" when ProgressCells says there is none.
func (s *Styles) ProgressBar(runTime, estimate float64, width int, done bool) string {
	filled, empty, ok := ProgressCells(runTime, estimate, width, done)
	if !ok {
		return ""
	}
	var b strings.Builder
	if filled > 0 {
		b.WriteString(s.Green.Render(strings.Repeat("█", filled)))
	}
	if empty > 0 {
		b.WriteString(s.White.Render(strings.Repeat("█", empty)))
	}
	return b.String()
}
