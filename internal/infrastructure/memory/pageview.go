package memory

import (
	"context"
	"time"

	appanalytics "github.com/nillpakhi2003-droid/habib-furniture/internal/application/analytics"
)

var _ appanalytics.Tracker = (*Store)(nil)

func (s *Store) Increment(ctx context.Context, path string, day time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[pageviewKey{Path: path, Day: day}]++
	return nil
}

// Views returns the counter for (path, day); used by tests.
func (s *Store) Views(path string, day time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views[pageviewKey{Path: path, Day: day}]
}
