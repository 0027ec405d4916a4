package memory

import (
	"context"
	"testing"

	"jornada/internal/core"
	"jornada/internal/sheets"
)

var _ sheets.LedgerWriter = (*Store)(nil)

func TestExportMonthRecordsCalls(t *testing.T) {
	s := New()
	ctx := context.Background()
	project := core.Project{ID: "p1", Name: "Consultoria"}

	ref, err := s.ExportMonth(ctx, project, core.MonthlyHistory{Year: 2024, Month: 1, TotalHours: 160})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("expected ref mem:1, got %s", ref)
	}

	exports := s.Exports()
	if len(exports) != 1 {
		t.Fatalf("expected 1 export, got %d", len(exports))
	}
	if exports[0].ProjectID != "p1" || exports[0].Year != 2024 || exports[0].Month != 1 {
		t.Errorf("unexpected export: %+v", exports[0])
	}
}

func TestExportMonthRejectsBadMonth(t *testing.T) {
	s := New()
	if _, err := s.ExportMonth(context.Background(), core.Project{}, core.MonthlyHistory{Year: 2024, Month: 13}); err == nil {
		t.Error("expected error for month 13")
	}
}
