package recommendation

import (
	"context"
	"fmt"

	"shopsphere/domain"
)

const (
	trendingViewWeight     = 1
	trendingPurchaseWeight = 5
	trendingCartAddWeight  = 3
)

// GetTrending returns a recency-weighted popularity ranking over the last
// seven days of behavior events.
func (s *Service) GetTrending(ctx context.Context, page, limit int) ([]domain.ScoredProduct, domain.PageMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.PageMeta{}, fmt.Errorf("context error: %w", err)
	}

	entry, err := s.lookupOrGenerate(ctx, domain.RecommendationTrending, "",
		func(ctx context.Context) ([]scoredID, error) {
			return s.generateTrending(ctx)
		})
	if err != nil {
		return nil, domain.PageMeta{}, err
	}

	return s.pageFromEntry(ctx, entry, page, limit)
}

func (s *Service) generateTrending(ctx context.Context) ([]scoredID, error) {
	counts, err := s.behaviorRepo.TrendingCounts(ctx, s.now().Add(-trendingWindow))
	if err != nil {
		return nil, fmt.Errorf("aggregate trending counts: %w", err)
	}

	scores := make(map[uint64]float64, len(counts))
	for _, c := range counts {
		scores[c.ProductID] = float64(c.Views*trendingViewWeight +
			c.Purchases*trendingPurchaseWeight +
			c.CartAdds*trendingCartAddWeight)
	}

	return rankTop(scores, trendingTopN), nil
}
