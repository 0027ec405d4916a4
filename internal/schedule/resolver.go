// Package schedule resolves a project's weekly configuration against
// calendar days and computes worked durations.
package schedule

import (
	"fmt"

	"jornada/internal/core"
)

// Display fallbacks for days with no usable configuration. They are never
// fed into duration computation.
const (
	DefaultStart = "09:00"
	DefaultEnd   = "17:00"
)

// ResolvedDay is one calendar day's effective schedule.
type ResolvedDay struct {
	Enabled       bool
	Start         string
	End           string
	DiscountLunch bool
}

// Resolver maps display weekday names to configuration entries. Construct it
// once and share it; the lookup table is fixed.
type Resolver struct {
	names map[string]core.Weekday
}

func NewResolver() *Resolver {
	return &Resolver{
		names: map[string]core.Weekday{
			"Domingo":       core.Sunday,
			"Segunda-feira": core.Monday,
			"Terça-feira":   core.Tuesday,
			"Quarta-feira":  core.Wednesday,
			"Quinta-feira":  core.Thursday,
			"Sexta-feira":   core.Friday,
			"Sábado":        core.Saturday,
		},
	}
}

// ResolveDay finds the weekday's configuration entry. A missing or disabled
// entry resolves to enabled=false with the display defaults.
func (r *Resolver) ResolveDay(workDays []core.WorkDay, dayOfWeek string) (ResolvedDay, error) {
	id, ok := r.names[dayOfWeek]
	if !ok {
		return ResolvedDay{}, fmt.Errorf("%w: %q", core.ErrInvalidWeekday, dayOfWeek)
	}

	for _, wd := range workDays {
		if wd.Day != id {
			continue
		}
		if !wd.Enabled {
			break
		}
		return ResolvedDay{
			Enabled:       true,
			Start:         wd.Start,
			End:           wd.End,
			DiscountLunch: wd.DiscountLunch,
		}, nil
	}

	return ResolvedDay{Enabled: false, Start: DefaultStart, End: DefaultEnd}, nil
}

// Weekday returns the internal identifier for a display name.
func (r *Resolver) Weekday(dayOfWeek string) (core.Weekday, error) {
	id, ok := r.names[dayOfWeek]
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidWeekday, dayOfWeek)
	}
	return id, nil
}
