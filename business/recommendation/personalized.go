package recommendation

import (
	"context"
	"fmt"

	"shopsphere/domain"
)

// GetPersonalized returns a hybrid collaborative + content-based ranking for
// the user, cached for an hour.
func (s *Service) GetPersonalized(ctx context.Context, userID uint, page, limit int) ([]domain.ScoredProduct, domain.PageMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.PageMeta{}, fmt.Errorf("context error: %w", err)
	}

	entry, err := s.personalizedEntry(ctx, userID)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}

	return s.pageFromEntry(ctx, entry, page, limit)
}

func (s *Service) personalizedEntry(ctx context.Context, userID uint) (*domain.CacheEntry, error) {
	return s.lookupOrGenerate(ctx, domain.RecommendationPersonalized, userSubjectKey(userID),
		func(ctx context.Context) ([]scoredID, error) {
			return s.generatePersonalized(ctx, userID)
		})
}

func (s *Service) generatePersonalized(ctx context.Context, userID uint) ([]scoredID, error) {
	interactions, err := s.behaviorRepo.UserProductInteractions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user interactions: %w", err)
	}

	exclude := make([]uint64, 0, len(interactions))
	for pid := range interactions {
		exclude = append(exclude, pid)
	}

	collab, err := s.collaborativeScores(ctx, userID, interactions)
	if err != nil {
		return nil, err
	}

	content, err := s.contentBasedScores(ctx, exclude, interactions)
	if err != nil {
		return nil, err
	}

	// Weighted fusion: a product appearing in both lists sums both
	// contributions.
	combined := make(map[uint64]float64, len(collab)+len(content))
	for _, r := range collab {
		combined[r.productID] += collabWeight * r.score
	}
	for _, r := range content {
		combined[r.productID] += contentWeight * r.score
	}

	return rankTop(combined, fusedTopN), nil
}

// collaborativeScores scores products by how intensely behaviorally-similar
// users interacted with them, excluding everything the requesting user has
// already touched.
func (s *Service) collaborativeScores(
	ctx context.Context,
	userID uint,
	ownInteractions map[uint64]domain.InteractionSummary,
) ([]scoredID, error) {
	similar, err := s.behaviorRepo.SimilarUsers(ctx, userID, maxSimilarUsers)
	if err != nil {
		return nil, fmt.Errorf("find similar users: %w", err)
	}
	if len(similar) == 0 {
		return nil, nil
	}

	counts, err := s.behaviorRepo.InteractionCountsForUsers(ctx, similar)
	if err != nil {
		return nil, fmt.Errorf("aggregate cohort interactions: %w", err)
	}

	scores := make(map[uint64]float64, len(counts))
	for _, c := range counts {
		if _, seen := ownInteractions[c.ProductID]; seen {
			continue
		}
		if c.DistinctUserCount == 0 {
			continue
		}
		// breadth × average intensity per interacting user
		scores[c.ProductID] = float64(c.DistinctUserCount) *
			(float64(c.TotalInteractions) / float64(c.DistinctUserCount))
	}

	return rankTop(scores, collabTopN), nil
}

// GetRecommendedForYou is the personalized ranking minus products already in
// the user's confirmed or in-flight orders. The pagination metadata keeps the
// pre-filter count.
func (s *Service) GetRecommendedForYou(ctx context.Context, userID uint, page, limit int) ([]domain.ScoredProduct, domain.PageMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.PageMeta{}, fmt.Errorf("context error: %w", err)
	}

	entry, err := s.personalizedEntry(ctx, userID)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}

	orderedIDs, err := s.ordersRepo.ProductIDsInStatuses(ctx, userID, domain.ActiveOrderStatuses)
	if err != nil {
		return nil, domain.PageMeta{}, fmt.Errorf("load ordered product ids: %w", err)
	}

	ordered := make(map[uint64]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		ordered[id] = true
	}

	filtered := make([]uint64, 0, len(entry.RankedProductIDs))
	for _, id := range entry.RankedProductIDs {
		if !ordered[id] {
			filtered = append(filtered, id)
		}
	}

	start, end := domain.PageBounds(page, limit, len(filtered))
	products, err := s.productRepo.FindByIDs(ctx, filtered[start:end])
	if err != nil {
		return nil, domain.PageMeta{}, fmt.Errorf("failed to hydrate recommended products: %w", err)
	}

	items := make([]domain.ScoredProduct, 0, len(products))
	for _, p := range products {
		items = append(items, domain.ScoredProduct{Product: p, Score: entry.Scores[p.ID]})
	}

	// Meta intentionally reflects the unfiltered ranked-list length.
	return items, domain.NewPageMeta(page, limit, len(entry.RankedProductIDs)), nil
}
