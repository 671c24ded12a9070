package recommendation

import (
	"context"
	"fmt"
	"math"

	"shopsphere/domain"
)

const similarPriceBand = 0.3

// GetSimilar returns products content-similar to the given one: shared
// category or tags, price within ±30%. NotFound when the source product does
// not exist.
func (s *Service) GetSimilar(ctx context.Context, productID uint64, page, limit int) ([]domain.ScoredProduct, domain.PageMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.PageMeta{}, fmt.Errorf("context error: %w", err)
	}

	entry, err := s.lookupOrGenerate(ctx, domain.RecommendationSimilar, productSubjectKey(productID),
		func(ctx context.Context) ([]scoredID, error) {
			return s.generateSimilar(ctx, productID)
		})
	if err != nil {
		return nil, domain.PageMeta{}, err
	}

	return s.pageFromEntry(ctx, entry, page, limit)
}

func (s *Service) generateSimilar(ctx context.Context, productID uint64) ([]scoredID, error) {
	source, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	var categories []string
	if source.Category != "" {
		categories = []string{source.Category}
	}
	var categoryIDs []uint64
	if source.CategoryID != 0 {
		categoryIDs = []uint64{source.CategoryID}
	}

	candidates, err := s.productRepo.FindCandidates(
		ctx,
		categories,
		categoryIDs,
		source.Tags,
		source.Price*(1-similarPriceBand),
		source.Price*(1+similarPriceBand),
		[]uint64{source.ID},
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("load similar candidates: %w", err)
	}

	scores := make(map[uint64]float64, len(candidates))
	for _, candidate := range candidates {
		scores[candidate.ID] = similarityScore(source, candidate)
	}

	return rankTop(scores, similarTopN), nil
}

// similarityScore: +5 for a category or category-id match, +3 per shared
// tag, plus a price-similarity term that decays to zero at a 100% price gap.
func similarityScore(source, candidate domain.Product) float64 {
	score := 0.0

	if (source.Category != "" && candidate.Category == source.Category) ||
		(source.CategoryID != 0 && candidate.CategoryID == source.CategoryID) {
		score += 5
	}

	sourceTags := make(map[string]bool, len(source.Tags))
	for _, tag := range source.Tags {
		sourceTags[tag] = true
	}
	for _, tag := range candidate.Tags {
		if sourceTags[tag] {
			score += 3
		}
	}

	if source.Price > 0 {
		delta := math.Abs(candidate.Price - source.Price)
		score += math.Max(0, 5-delta/source.Price*5)
	}

	return score
}
