package schedule

import "jornada/internal/core"

// DurationMinutes converts a (start, end, discountLunch) triple into worked
// minutes. The value is not clamped: an inverted or zero-length range yields
// a zero or negative duration, which callers surface as-is in aggregates.
func DurationMinutes(start, end string, discountLunch bool) (int, error) {
	startMin, err := core.ParseTimeOfDay(start)
	if err != nil {
		return 0, err
	}
	endMin, err := core.ParseTimeOfDay(end)
	if err != nil {
		return 0, err
	}

	duration := endMin - startMin
	if discountLunch {
		duration -= 60
	}
	return duration, nil
}
