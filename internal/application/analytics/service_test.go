package analytics_test

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	appanalytics "github.com/nillpakhi2003-droid/habib-furniture/internal/application/analytics"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/memory"

	"github.com/stretchr/testify/assert"
)

func TestTrackCountsPerPathAndDay(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	svc := appanalytics.NewService(store, nil,
		appanalytics.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	svc.Track(ctx, "/products/teak-chair")
	svc.Track(ctx, "/products/teak-chair")
	svc.Track(ctx, "/")

	day := now.Truncate(24 * time.Hour)
	assert.Equal(t, 2, store.Views("/products/teak-chair", day))
	assert.Equal(t, 1, store.Views("/", day))

	// A new day gets a fresh counter.
	now = now.Add(24 * time.Hour)
	svc.Track(ctx, "/")
	assert.Equal(t, 1, store.Views("/", day))
	assert.Equal(t, 1, store.Views("/", day.Add(24*time.Hour)))
}

func TestTrackNormalizesPath(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc := appanalytics.NewService(store, nil,
		appanalytics.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	svc.Track(ctx, "/shop?utm_source=fb#top")
	assert.Equal(t, 1, store.Views("/shop", now))

	// Invalid paths are dropped silently.
	svc.Track(ctx, "")
	svc.Track(ctx, "no-leading-slash")
	assert.Equal(t, 0, store.Views("no-leading-slash", now))
}

func TestTrackTruncatesOnRuneBoundary(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc := appanalytics.NewService(store, nil,
		appanalytics.WithClock(func() time.Time { return now }))

	// 100 Bengali characters are 300 bytes; the 200-byte cap lands mid-rune,
	// so the key must back up to the previous boundary instead of storing
	// invalid UTF-8.
	long := "/" + strings.Repeat("ক", 100)
	svc.Track(context.Background(), long)

	want := "/" + strings.Repeat("ক", 66)
	assert.True(t, utf8.ValidString(want))
	assert.Equal(t, 1, store.Views(want, now))
}
