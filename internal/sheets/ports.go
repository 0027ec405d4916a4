package sheets

import (
	"context"

	"jornada/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerWriter exports a reconciled month to an external spreadsheet.
	LedgerWriter interface {
		// ExportMonth writes the month's records and totals and returns a
		// reference to the written range.
		ExportMonth(ctx context.Context, project core.Project, history core.MonthlyHistory) (ref string, err error)
	}
)
