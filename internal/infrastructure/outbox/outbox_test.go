package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domorder "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/order"
	domoutbox "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/outbox"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/notify"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/outbox"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier collects delivered events and signals each arrival.
type recordingNotifier struct {
	mu        sync.Mutex
	placed    []domorder.OrderPlacedEvent
	confirmed []domorder.OrderConfirmedEvent
	arrived   chan struct{}
	fail      error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{arrived: make(chan struct{}, 16)}
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, e domorder.OrderPlacedEvent) error {
	n.mu.Lock()
	n.placed = append(n.placed, e)
	n.mu.Unlock()
	n.arrived <- struct{}{}
	return n.fail
}

func (n *recordingNotifier) OrderConfirmed(_ context.Context, e domorder.OrderConfirmedEvent) error {
	n.mu.Lock()
	n.confirmed = append(n.confirmed, e)
	n.mu.Unlock()
	n.arrived <- struct{}{}
	return n.fail
}

func (n *recordingNotifier) wait(t *testing.T) {
	t.Helper()
	select {
	case <-n.arrived:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
}

func startBus(t *testing.T) (*outbox.Bus, *recordingNotifier) {
	t.Helper()
	bus := outbox.NewBus(nil)
	notifier := newRecordingNotifier()
	notify.NewWorker(bus, notifier).Start()
	ctx, cancel := context.WithCancel(context.Background())
	bus.Start(ctx)
	t.Cleanup(func() {
		bus.Stop(context.Background())
		cancel()
	})
	return bus, notifier
}

func TestBusDeliversOrderEvents(t *testing.T) {
	bus, notifier := startBus(t)

	placed := domorder.OrderPlacedEvent{OrderID: "ord-1", CustomerName: "Rahim", TotalAmount: "9060"}
	require.NoError(t, bus.Publish(context.Background(), placed))
	notifier.wait(t)

	confirmed := domorder.OrderConfirmedEvent{OrderID: "ord-1"}
	require.NoError(t, bus.Publish(context.Background(), confirmed))
	notifier.wait(t)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.placed, 1)
	assert.Equal(t, "ord-1", notifier.placed[0].OrderID)
	assert.Equal(t, "9060", notifier.placed[0].TotalAmount)
	require.Len(t, notifier.confirmed, 1)
	assert.Equal(t, "ord-1", notifier.confirmed[0].OrderID)
}

func TestPublishNilEventIsNoop(t *testing.T) {
	bus, _ := startBus(t)
	assert.NoError(t, bus.Publish(context.Background(), nil))
}

func TestPublishAbortsOnCancelledContext(t *testing.T) {
	// An unstarted bus with a full queue forces Publish to block, so a
	// cancelled context is the only way out.
	bus := outbox.NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var err error
	for i := 0; i < 2048; i++ {
		if err = bus.Publish(ctx, domorder.OrderConfirmedEvent{OrderID: "ord-x"}); err != nil {
			break
		}
	}
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandlerErrorDoesNotStopTheBus(t *testing.T) {
	bus, notifier := startBus(t)
	notifier.fail = errors.New("sms gateway down")

	require.NoError(t, bus.Publish(context.Background(), domorder.OrderPlacedEvent{OrderID: "ord-1"}))
	notifier.wait(t)

	require.NoError(t, bus.Publish(context.Background(), domorder.OrderPlacedEvent{OrderID: "ord-2"}))
	notifier.wait(t)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.placed, 2)
}

func TestPublishAfterStopDoesNotPanic(t *testing.T) {
	bus := outbox.NewBus(nil)
	bus.Start(context.Background())
	bus.Stop(context.Background())

	err := bus.Publish(context.Background(), domorder.OrderPlacedEvent{OrderID: "ord-1"})
	assert.ErrorIs(t, err, outbox.ErrStopped)
}

func TestUnsubscribedEventsAreDropped(t *testing.T) {
	bus := outbox.NewBus(nil)
	bus.Start(context.Background())
	t.Cleanup(func() { bus.Stop(context.Background()) })

	assert.NoError(t, bus.Publish(context.Background(), domorder.OrderPlacedEvent{OrderID: "ord-1"}))
}

var _ domoutbox.Publisher = (*outbox.Bus)(nil)
var _ domoutbox.Subscriber = (*outbox.Bus)(nil)
