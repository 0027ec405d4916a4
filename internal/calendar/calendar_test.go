package calendar

import (
	"testing"
	"time"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestListDaysInMonthLengths(t *testing.T) {
	cases := []struct {
		month, year int
		want        int
	}{
		{1, 2024, 31},
		{2, 2024, 29}, // leap year
		{2, 2023, 28},
		{2, 2100, 28}, // century, not leap
		{2, 2000, 29}, // 400-year rule
		{4, 2024, 30},
		{12, 2024, 31},
	}
	for _, tc := range cases {
		days, err := ListDaysInMonth(tc.month, tc.year)
		if err != nil {
			t.Fatalf("ListDaysInMonth(%d, %d): %v", tc.month, tc.year, err)
		}
		if len(days) != tc.want {
			t.Fatalf("ListDaysInMonth(%d, %d) = %d days, want %d", tc.month, tc.year, len(days), tc.want)
		}
	}
}

func TestListDaysInMonthOrderedAndUnique(t *testing.T) {
	days, err := ListDaysInMonth(3, 2024)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for i, d := range days {
		if d.DayOfMonth != i+1 {
			t.Fatalf("day %d out of order: got day-of-month %d", i, d.DayOfMonth)
		}
		key := d.Date.Format("2006-01-02")
		if seen[key] {
			t.Fatalf("duplicate date %s", key)
		}
		seen[key] = true
	}
}

func TestListDaysInMonthRejectsBadMonth(t *testing.T) {
	for _, m := range []int{0, 13} {
		if _, err := ListDaysInMonth(m, 2024); err == nil {
			t.Fatalf("month %d expected error", m)
		}
	}
	if _, err := ListDaysInMonth(1, 0); err == nil {
		t.Fatalf("year 0 expected error")
	}
}

func TestListDaysCurrentOnly(t *testing.T) {
	ref := date(2024, 1, 15)
	days := ListDays(ref, false)
	if len(days) != 31 {
		t.Fatalf("expected 31 days for January 2024, got %d", len(days))
	}
	if !days[14].IsToday {
		t.Fatalf("expected Jan 15 flagged as today")
	}
	if days[0].IsToday || days[30].IsToday {
		t.Fatalf("only the reference day should be today")
	}
}

func TestListDaysIncludeNextMonth(t *testing.T) {
	ref := date(2024, 1, 15)
	days := ListDays(ref, true)
	if len(days) != 31+29 {
		t.Fatalf("expected 60 days for Jan+Feb 2024, got %d", len(days))
	}
	if days[31].Month != "Fevereiro" || days[31].DayOfMonth != 1 {
		t.Fatalf("day 32 should be Feb 1, got %s %d", days[31].Month, days[31].DayOfMonth)
	}
}

func TestListDaysYearRollover(t *testing.T) {
	ref := date(2024, 12, 10)
	days := ListDays(ref, true)
	if len(days) != 31+31 {
		t.Fatalf("expected 62 days for Dec 2024 + Jan 2025, got %d", len(days))
	}
	last := days[len(days)-1]
	if last.Year != 2025 || last.Month != "Janeiro" || last.DayOfMonth != 31 {
		t.Fatalf("expected last day Jan 31 2025, got %s %d %d", last.Month, last.DayOfMonth, last.Year)
	}
}

func TestListDaysBetween(t *testing.T) {
	days := ListDaysBetween(date(2024, 1, 30), date(2024, 2, 2))
	if len(days) != 4 {
		t.Fatalf("expected 4 days inclusive, got %d", len(days))
	}
	if days[0].DayOfMonth != 30 || days[3].DayOfMonth != 2 {
		t.Fatalf("unexpected endpoints: %d .. %d", days[0].DayOfMonth, days[3].DayOfMonth)
	}

	if got := ListDaysBetween(date(2024, 2, 2), date(2024, 1, 30)); len(got) != 0 {
		t.Fatalf("inverted range should be empty, got %d days", len(got))
	}

	if got := ListDaysBetween(date(2024, 1, 5), date(2024, 1, 5)); len(got) != 1 {
		t.Fatalf("same-day range should yield exactly one day, got %d", len(got))
	}
}

func TestWeekendClassification(t *testing.T) {
	ref := date(2024, 1, 6) // Saturday
	days := ListDays(ref, false)

	sat := days[5] // Jan 6
	if !sat.IsWeekend || sat.DayOfWeek != "Sábado" {
		t.Fatalf("Jan 6 2024 should be weekend Sábado, got %s weekend=%v", sat.DayOfWeek, sat.IsWeekend)
	}
	mon := days[7] // Jan 8
	if mon.IsWeekend || mon.DayOfWeek != "Segunda-feira" {
		t.Fatalf("Jan 8 2024 should be weekday Segunda-feira, got %s weekend=%v", mon.DayOfWeek, mon.IsWeekend)
	}
	sun := days[6] // Jan 7
	if !sun.IsWeekend || sun.DayOfWeek != "Domingo" {
		t.Fatalf("Jan 7 2024 should be weekend Domingo, got %s", sun.DayOfWeek)
	}
}

func TestFilters(t *testing.T) {
	days, _ := ListDaysInMonth(1, 2024)
	week := FilterWeekdays(days)
	ends := FilterWeekends(days)
	if len(week)+len(ends) != len(days) {
		t.Fatalf("filters should partition the month: %d + %d != %d", len(week), len(ends), len(days))
	}
	if len(ends) != 8 { // January 2024 has 4 Saturdays + 4 Sundays
		t.Fatalf("January 2024 has 8 weekend days, got %d", len(ends))
	}
}

func TestGroupDaysByMonth(t *testing.T) {
	days := ListDays(date(2024, 1, 15), true)
	groups := GroupDaysByMonth(days)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(groups["2024-Janeiro"]) != 31 || len(groups["2024-Fevereiro"]) != 29 {
		t.Fatalf("unexpected group sizes: %d, %d", len(groups["2024-Janeiro"]), len(groups["2024-Fevereiro"]))
	}
}

func TestFormatDateString(t *testing.T) {
	got := FormatDateString(date(2024, 1, 15))
	want := "Segunda-feira, 15 de Janeiro de 2024"
	if got != want {
		t.Fatalf("FormatDateString = %q, want %q", got, want)
	}
}

func TestRestartable(t *testing.T) {
	ref := date(2024, 5, 20)
	a := ListDays(ref, true)
	b := ListDays(ref, true)
	if len(a) != len(b) {
		t.Fatalf("repeated calls differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Date.Equal(b[i].Date) || a[i].IsToday != b[i].IsToday {
			t.Fatalf("repeated calls differ at index %d", i)
		}
	}
}
