package analytics

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"
)

const maxPathLen = 200

// Tracker is the page-view storage port. Increment bumps the counter for
// (path, day) by one, creating the row when needed.
type Tracker interface {
	Increment(ctx context.Context, path string, day time.Time) error
}

type Service struct {
	tracker Tracker
	log     observability.Logger
	now     func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(tracker Tracker, tel observability.Observability, opts ...Option) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	s := &Service{
		tracker: tracker,
		log:     tel.Logger().With(observability.F("service", "analytics-service")),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Track counts one page view for path on today's UTC date. Tracking is best
// effort: a failure is logged and swallowed so it never surfaces to a page
// load.
func (s *Service) Track(ctx context.Context, path string) {
	path = normalizePath(path)
	if path == "" {
		return
	}
	day := s.now().UTC().Truncate(24 * time.Hour)
	if err := s.tracker.Increment(ctx, path, day); err != nil {
		s.log.Warn("pageview_track_failed",
			observability.F("path", path),
			observability.F("error", err.Error()),
		)
	}
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || !strings.HasPrefix(path, "/") {
		return ""
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > maxPathLen {
		cut := maxPathLen
		// Back up to a rune boundary so the key stays valid UTF-8.
		for cut > 0 && !utf8.RuneStart(path[cut]) {
			cut--
		}
		path = path[:cut]
	}
	return path
}
