// Package calendar projects date ranges onto per-day descriptors.
// All functions are pure: given the same reference date they return
// the same slice, and callers may invoke them once per request.
package calendar

import (
	"fmt"
	"time"

	"jornada/internal/core"
)

// DayNames maps time.Weekday (Sunday-first) to the display names the
// application persists in MonthlyWorkRecord.DayOfWeek.
var DayNames = [7]string{
	"Domingo", "Segunda-feira", "Terça-feira", "Quarta-feira",
	"Quinta-feira", "Sexta-feira", "Sábado",
}

// MonthNames maps time.Month-1 to display names.
var MonthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// DayInfo describes a single calendar day independent of any project.
type DayInfo struct {
	Date       time.Time // midnight UTC
	DayOfWeek  string
	DayOfMonth int
	Month      string
	Year       int
	IsToday    bool
	IsWeekend  bool
}

// ListDays returns every day of the month containing reference, and, when
// includeNextMonth is set, every day of the following month (the year rolls
// over after December). Days are ascending, current month first.
func ListDays(reference time.Time, includeNextMonth bool) []DayInfo {
	year, month, _ := reference.Date()

	days := listMonth(int(month), year, reference)

	if includeNextMonth {
		nextMonth := int(month) + 1
		nextYear := year
		if nextMonth > 12 {
			nextMonth = 1
			nextYear++
		}
		days = append(days, listMonth(nextMonth, nextYear, reference)...)
	}

	return days
}

// ListDaysInMonth returns every day of the given month (1-12).
func ListDaysInMonth(month, year int) ([]DayInfo, error) {
	if err := core.ValidateMonth(month); err != nil {
		return nil, err
	}
	if year <= 0 {
		return nil, fmt.Errorf("invalid year: %d", year)
	}
	return listMonth(month, year, time.Now()), nil
}

// ListDaysBetween steps one calendar day at a time from start to end,
// inclusive of both endpoints. An end before start yields an empty slice.
func ListDaysBetween(start, end time.Time) []DayInfo {
	today := time.Now()
	var days []DayInfo

	cur := midnight(start)
	last := midnight(end)
	for !cur.After(last) {
		days = append(days, newDayInfo(cur, today))
		cur = cur.AddDate(0, 0, 1)
	}
	return days
}

// FilterWeekdays keeps Monday through Friday.
func FilterWeekdays(days []DayInfo) []DayInfo {
	out := make([]DayInfo, 0, len(days))
	for _, d := range days {
		if !d.IsWeekend {
			out = append(out, d)
		}
	}
	return out
}

// FilterWeekends keeps Saturday and Sunday.
func FilterWeekends(days []DayInfo) []DayInfo {
	out := make([]DayInfo, 0, len(days))
	for _, d := range days {
		if d.IsWeekend {
			out = append(out, d)
		}
	}
	return out
}

// GroupDaysByMonth buckets days under "year-MonthName" keys.
func GroupDaysByMonth(days []DayInfo) map[string][]DayInfo {
	out := make(map[string][]DayInfo)
	for _, d := range days {
		key := fmt.Sprintf("%d-%s", d.Year, d.Month)
		out[key] = append(out[key], d)
	}
	return out
}

// FormatDateString renders a day like "Segunda-feira, 15 de Janeiro de 2024".
func FormatDateString(date time.Time) string {
	d := newDayInfo(midnight(date), time.Now())
	return fmt.Sprintf("%s, %d de %s de %d", d.DayOfWeek, d.DayOfMonth, d.Month, d.Year)
}

func listMonth(month, year int, today time.Time) []DayInfo {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	days := make([]DayInfo, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		days = append(days, newDayInfo(date, today))
	}
	return days
}

func newDayInfo(date, today time.Time) DayInfo {
	wd := date.Weekday()
	return DayInfo{
		Date:       date,
		DayOfWeek:  DayNames[wd],
		DayOfMonth: date.Day(),
		Month:      MonthNames[date.Month()-1],
		Year:       date.Year(),
		IsToday:    sameDay(date, today),
		IsWeekend:  wd == time.Sunday || wd == time.Saturday,
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
