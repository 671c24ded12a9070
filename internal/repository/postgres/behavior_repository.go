package postgres

import (
	"context"
	"fmt"
	"time"

	"shopsphere/domain"

	"gorm.io/gorm"
)

// interactionEventTypes are the event kinds that count as "interacting with
// a product" for similarity and collaborative scoring.
var interactionEventTypes = []string{
	domain.EventProductView,
	domain.EventPurchase,
	domain.EventAddToCart,
	domain.EventFavoriteAdd,
	domain.EventWishlistAdd,
}

type BehaviorRepository struct {
	DB *gorm.DB
}

func NewBehaviorRepository(db *gorm.DB) *BehaviorRepository {
	return &BehaviorRepository{DB: db}
}

func (r *BehaviorRepository) Save(ctx context.Context, event *domain.BehaviorEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to save behavior event: %w", err)
	}

	return nil
}

// SimilarUsers ranks other users by the size of the overlap between their
// interacted-product set and the given user's. The ranking is opaque to
// callers; only the order matters.
func (r *BehaviorRepository) SimilarUsers(ctx context.Context, userID uint, limit int) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 50
	}

	var ids []uint
	err := r.DB.WithContext(ctx).Raw(`
		SELECT other.user_id
		FROM behavior_events other
		JOIN (
			SELECT DISTINCT product_id
			FROM behavior_events
			WHERE user_id = ? AND product_id <> 0 AND event_type IN ?
		) mine ON mine.product_id = other.product_id
		WHERE other.user_id <> ? AND other.event_type IN ?
		GROUP BY other.user_id
		ORDER BY COUNT(DISTINCT other.product_id) DESC
		LIMIT ?`,
		userID, interactionEventTypes, userID, interactionEventTypes, limit,
	).Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find similar users: %w", err)
	}

	return ids, nil
}

// UserProductInteractions summarizes the user's events per product. The keys
// double as the engine's exclusion set.
func (r *BehaviorRepository) UserProductInteractions(ctx context.Context, userID uint) (map[uint64]domain.InteractionSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.InteractionSummary
	err := r.DB.WithContext(ctx).Raw(`
		SELECT product_id, COUNT(*) AS count, MAX(created_at) AS last_seen
		FROM behavior_events
		WHERE user_id = ? AND product_id <> 0 AND event_type IN ?
		GROUP BY product_id`,
		userID, interactionEventTypes,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate user interactions: %w", err)
	}

	out := make(map[uint64]domain.InteractionSummary, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row
	}

	return out, nil
}

// InteractionCountsForUsers aggregates the cohort's interaction events per
// product: how many distinct users touched it and how many events in total.
func (r *BehaviorRepository) InteractionCountsForUsers(ctx context.Context, userIDs []uint) ([]domain.ProductInteractionCounts, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(userIDs) == 0 {
		return []domain.ProductInteractionCounts{}, nil
	}

	var rows []domain.ProductInteractionCounts
	err := r.DB.WithContext(ctx).Raw(`
		SELECT product_id,
		       COUNT(DISTINCT user_id) AS distinct_user_count,
		       COUNT(*) AS total_interactions
		FROM behavior_events
		WHERE user_id IN ? AND product_id <> 0 AND event_type IN ?
		GROUP BY product_id`,
		userIDs, interactionEventTypes,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate cohort interactions: %w", err)
	}

	return rows, nil
}

// TrendingCounts returns per-product view/purchase/cart-add counts since the
// given cutoff.
func (r *BehaviorRepository) TrendingCounts(ctx context.Context, since time.Time) ([]domain.TrendingCounts, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.TrendingCounts
	err := r.DB.WithContext(ctx).Raw(`
		SELECT product_id,
		       COUNT(*) FILTER (WHERE event_type = ?) AS views,
		       COUNT(*) FILTER (WHERE event_type = ?) AS purchases,
		       COUNT(*) FILTER (WHERE event_type = ?) AS cart_adds
		FROM behavior_events
		WHERE product_id <> 0 AND created_at >= ? AND event_type IN ?
		GROUP BY product_id`,
		domain.EventProductView, domain.EventPurchase, domain.EventAddToCart,
		since, []string{domain.EventProductView, domain.EventPurchase, domain.EventAddToCart},
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trending counts: %w", err)
	}

	return rows, nil
}
