package google

import (
	"testing"

	"jornada/internal/core"
)

func TestLedgerSheetName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Horas", 2024, "2024 Horas"},
		{"", 2024, "2024 Horas"},
		{"2023 Horas", 2024, "2023 Horas"}, // already year-prefixed
		{"Registro", 2025, "2025 Registro"},
	}
	for _, tt := range tests {
		c := &Client{ledgerBase: tt.base}
		if got := c.ledgerSheetName(tt.year); got != tt.want {
			t.Errorf("ledgerSheetName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}

func TestBuildMonthRows(t *testing.T) {
	start, end := "09:00", "17:00"
	history := core.MonthlyHistory{
		Year:       2024,
		Month:      1,
		TotalHours: 16,
		TotalDays:  2,
		Records: []core.MonthlyWorkRecord{
			{Date: "2024-01-01", DayOfWeek: "Segunda-feira", Enabled: true, Start: &start, End: &end, Duration: 480},
			{Date: "2024-01-02", DayOfWeek: "Terça-feira", Enabled: true, Start: &start, End: &end, DiscountLunch: true, Duration: 420},
			{Date: "2024-01-06", DayOfWeek: "Sábado", Enabled: false},
		},
	}
	project := core.Project{ID: "p1", Name: "Consultoria"}

	rows := buildMonthRows(project, history)

	// Summary row plus the two enabled days; the disabled day is skipped.
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Consultoria" || rows[0][1] != "Janeiro 2024" {
		t.Errorf("unexpected summary row: %v", rows[0])
	}
	if rows[0][5] != 2 || rows[0][6] != 16.0 {
		t.Errorf("summary totals wrong: %v", rows[0])
	}
	if rows[1][0] != "2024-01-01" || rows[1][4] != "não" || rows[1][6] != 8.0 {
		t.Errorf("unexpected day row: %v", rows[1])
	}
	if rows[2][4] != "sim" || rows[2][6] != 7.0 {
		t.Errorf("lunch discount row wrong: %v", rows[2])
	}
}
