package behavior

import (
	"context"
	"sync"
	"testing"
	"time"

	"shopsphere/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.BehaviorEvent
}

func (r *recordingRepo) Save(_ context.Context, event *domain.BehaviorEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *recordingRepo) SimilarUsers(context.Context, uint, int) ([]uint, error) {
	return nil, nil
}

func (r *recordingRepo) UserProductInteractions(context.Context, uint) (map[uint64]domain.InteractionSummary, error) {
	return nil, nil
}

func (r *recordingRepo) InteractionCountsForUsers(context.Context, []uint) ([]domain.ProductInteractionCounts, error) {
	return nil, nil
}

func (r *recordingRepo) TrendingCounts(context.Context, time.Time) ([]domain.TrendingCounts, error) {
	return nil, nil
}

func (r *recordingRepo) saved() []domain.BehaviorEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.BehaviorEvent, len(r.events))
	copy(out, r.events)
	return out
}

func TestTrackerDrainsOnClose(t *testing.T) {
	repo := &recordingRepo{}
	tracker := NewTracker(repo, 16, 2)

	for i := 0; i < 10; i++ {
		tracker.Track(1, domain.EventProductView, uint64(i+1), map[string]any{"price": 9.99})
	}

	tracker.Close()

	events := repo.saved()
	require.Len(t, events, 10)
	assert.Equal(t, domain.EventProductView, events[0].EventType)
	assert.Equal(t, uint(1), events[0].UserID)
}

func TestTrackerRejectsUnknownEventType(t *testing.T) {
	repo := &recordingRepo{}
	tracker := NewTracker(repo, 4, 1)

	tracker.Track(1, "teleport", 1, nil)
	tracker.Close()

	assert.Empty(t, repo.saved())
}

type blockingRepo struct {
	recordingRepo
	release chan struct{}
}

func (r *blockingRepo) Save(ctx context.Context, event *domain.BehaviorEvent) error {
	<-r.release
	return r.recordingRepo.Save(ctx, event)
}

func TestTrackerDropsWhenQueueFull(t *testing.T) {
	repo := &blockingRepo{release: make(chan struct{})}
	tracker := NewTracker(repo, 2, 1)

	// One event is picked up by the blocked worker, two fill the queue, the
	// rest must be dropped without blocking this goroutine.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			tracker.Track(1, domain.EventProductView, uint64(i+1), nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Track blocked on a full queue")
	}

	close(repo.release)
	tracker.Close()

	saved := repo.saved()
	assert.NotEmpty(t, saved)
	assert.Less(t, len(saved), 20, "overflow events are dropped")
}
