package memory

import (
	"context"
	"fmt"
	"sync"

	"jornada/internal/core"
)

// Export is one recorded ExportMonth call.
type Export struct {
	ProjectID string
	Year      int
	Month     int
	History   core.MonthlyHistory
}

// Store is an in-memory ledger writer for dev mode and tests.
type Store struct {
	mu      sync.Mutex
	exports []Export
}

func New() *Store {
	return &Store{}
}

// ExportMonth records the export and returns a synthetic range reference.
func (s *Store) ExportMonth(_ context.Context, project core.Project, history core.MonthlyHistory) (string, error) {
	if err := core.ValidateMonth(history.Month); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exports = append(s.exports, Export{
		ProjectID: project.ID,
		Year:      history.Year,
		Month:     history.Month,
		History:   history,
	})
	return fmt.Sprintf("mem:%d", len(s.exports)), nil
}

// Exports returns a copy of all recorded exports.
func (s *Store) Exports() []Export {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Export(nil), s.exports...)
}
