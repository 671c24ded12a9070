package behavior

import (
	"context"
	"sync"
	"time"

	"shopsphere/domain"
	"shopsphere/pkg/logger"
	"shopsphere/pkg/metrics"
)

// BehaviorRepository contract interface
type BehaviorRepository interface {
	Save(ctx context.Context, event *domain.BehaviorEvent) error
	SimilarUsers(ctx context.Context, userID uint, limit int) ([]uint, error)
	UserProductInteractions(ctx context.Context, userID uint) (map[uint64]domain.InteractionSummary, error)
	InteractionCountsForUsers(ctx context.Context, userIDs []uint) ([]domain.ProductInteractionCounts, error)
	TrendingCounts(ctx context.Context, since time.Time) ([]domain.TrendingCounts, error)
}

// Tracker records interaction events off the request path. Track never
// blocks and never surfaces persistence failures to callers; events are
// pushed onto a bounded queue drained by a fixed worker pool.
type Tracker struct {
	repo    BehaviorRepository
	queue   chan domain.BehaviorEvent
	wg      sync.WaitGroup
	once    sync.Once
	timeout time.Duration
}

func NewTracker(repo BehaviorRepository, queueSize, workers int) *Tracker {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if workers <= 0 {
		workers = 4
	}

	t := &Tracker{
		repo:    repo,
		queue:   make(chan domain.BehaviorEvent, queueSize),
		timeout: 5 * time.Second,
	}

	for i := 0; i < workers; i++ {
		t.wg.Add(1)
		go t.worker()
	}

	return t
}

func (t *Tracker) worker() {
	defer t.wg.Done()

	for event := range t.queue {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		if err := t.repo.Save(ctx, &event); err != nil {
			logger.Warn("failed to persist behavior event",
				"user_id", event.UserID,
				"event_type", event.EventType,
				"error", err,
			)
		}
		cancel()
	}
}

// Track enqueues an event. A full queue drops the event with a warning
// rather than blocking the caller.
func (t *Tracker) Track(userID uint, eventType string, productID uint64, eventData map[string]any) {
	if !domain.ValidEventTypes[eventType] {
		logger.Warn("dropping behavior event with unknown type", "event_type", eventType)
		return
	}

	event := domain.BehaviorEvent{
		UserID:    userID,
		EventType: eventType,
		ProductID: productID,
		EventData: eventData,
		CreatedAt: time.Now(),
	}

	select {
	case t.queue <- event:
	default:
		metrics.BehaviorEventsDropped.Inc()
		logger.Warn("behavior queue full, dropping event",
			"user_id", userID,
			"event_type", eventType,
		)
	}
}

// Close stops accepting events and waits for the queue to drain.
func (t *Tracker) Close() {
	t.once.Do(func() {
		close(t.queue)
	})
	t.wg.Wait()
}
