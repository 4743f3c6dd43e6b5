package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) handle(_ context.Context, e domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestDispatcher_DeliversToSubscribers(t *testing.T) {
	d := NewDispatcher(logger.Discard(), 8)
	rec := &recorder{}
	d.Subscribe(domain.EventRoleChanged, rec.handle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Start(ctx)

	d.Emit(domain.RoleChanged{UserID: "usr-1", To: domain.RoleEditor})

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "usr-1", rec.events[0].(domain.RoleChanged).UserID)
}

type otherEvent struct{}

func (otherEvent) EventName() string { return "other" }

func TestDispatcher_IgnoresUnsubscribedNames(t *testing.T) {
	d := NewDispatcher(logger.Discard(), 8)
	rec := &recorder{}
	d.Subscribe(domain.EventRoleChanged, rec.handle)

	d.Emit(otherEvent{})
	require.NoError(t, d.Shutdown(context.Background()))

	assert.Equal(t, 0, rec.count())
}

func TestDispatcher_ShutdownDrainsQueue(t *testing.T) {
	d := NewDispatcher(logger.Discard(), 8)
	rec := &recorder{}
	d.Subscribe(domain.EventRoleChanged, rec.handle)

	// Nothing is consuming yet; Shutdown must still deliver.
	d.Emit(domain.RoleChanged{UserID: "usr-1"})
	d.Emit(domain.RoleChanged{UserID: "usr-2"})

	require.NoError(t, d.Shutdown(context.Background()))
	assert.Equal(t, 2, rec.count())

	d.Emit(domain.RoleChanged{UserID: "usr-3"})
	assert.Equal(t, 2, rec.count())
	assert.NoError(t, d.Shutdown(context.Background()))
}

func TestDispatcher_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	d := NewDispatcher(logger.Discard(), 8)
	rec := &recorder{}
	d.Subscribe(domain.EventRoleChanged, func(context.Context, domain.Event) error {
		return errors.New("smtp down")
	})
	d.Subscribe(domain.EventRoleChanged, rec.handle)

	d.Emit(domain.RoleChanged{UserID: "usr-1"})
	require.NoError(t, d.Shutdown(context.Background()))

	assert.Equal(t, 1, rec.count())
}

func TestDispatcher_FullQueueDrops(t *testing.T) {
	d := NewDispatcher(logger.Discard(), 1)
	rec := &recorder{}
	d.Subscribe(domain.EventRoleChanged, rec.handle)

	d.Emit(domain.RoleChanged{UserID: "usr-1"})
	d.Emit(domain.RoleChanged{UserID: "usr-2"})
	require.NoError(t, d.Shutdown(context.Background()))

	assert.Equal(t, 1, rec.count())
}
