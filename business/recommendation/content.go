package recommendation

import (
	"context"
	"fmt"
	"math"

	"shopsphere/domain"
)

// preferenceProfile is derived from the products a user has interacted with.
type preferenceProfile struct {
	categories  map[string]bool
	categoryIDs map[uint64]bool
	tags        map[string]bool
	minPrice    float64
	maxPrice    float64
}

func (p *preferenceProfile) empty() bool {
	return len(p.categories) == 0 && len(p.tags) == 0
}

func (p *preferenceProfile) priceMidpoint() float64 {
	return (p.minPrice + p.maxPrice) / 2
}

func (p *preferenceProfile) priceRange() float64 {
	return p.maxPrice - p.minPrice
}

func buildProfile(products []domain.Product) *preferenceProfile {
	profile := &preferenceProfile{
		categories:  make(map[string]bool),
		categoryIDs: make(map[uint64]bool),
		tags:        make(map[string]bool),
	}

	for i, p := range products {
		if p.Category != "" {
			profile.categories[p.Category] = true
		}
		if p.CategoryID != 0 {
			profile.categoryIDs[p.CategoryID] = true
		}
		for _, tag := range p.Tags {
			profile.tags[tag] = true
		}
		if i == 0 || p.Price < profile.minPrice {
			profile.minPrice = p.Price
		}
		if p.Price > profile.maxPrice {
			profile.maxPrice = p.Price
		}
	}

	return profile
}

// contentScore rates a candidate against the profile: +3 category match, +2
// per matching tag, up to +3 by inverse distance from the observed price
// midpoint.
func contentScore(profile *preferenceProfile, candidate domain.Product) float64 {
	score := 0.0

	if profile.categories[candidate.Category] {
		score += 3
	}
	for _, tag := range candidate.Tags {
		if profile.tags[tag] {
			score += 2
		}
	}

	// The candidate band spans the observed range extended by half a range
	// on each side, so its half-width is the full observed range.
	halfWidth := profile.priceRange()
	if halfWidth == 0 {
		halfWidth = math.Max(profile.priceMidpoint(), 1)
	}
	dist := math.Abs(candidate.Price - profile.priceMidpoint())
	score += 3 * math.Max(0, 1-dist/halfWidth)

	return score
}

// contentBasedScores derives the user's preference profile and rates in-stock
// candidates matching any preferred category or tag within the widened price
// band. A user with no interacted products gets an empty list.
func (s *Service) contentBasedScores(
	ctx context.Context,
	excludeIDs []uint64,
	interactions map[uint64]domain.InteractionSummary,
) ([]scoredID, error) {
	if len(interactions) == 0 {
		return nil, nil
	}

	interacted, err := s.productRepo.FindByIDs(ctx, excludeIDs)
	if err != nil {
		return nil, fmt.Errorf("load interacted products: %w", err)
	}

	profile := buildProfile(interacted)
	if profile.empty() {
		return nil, nil
	}

	categories := make([]string, 0, len(profile.categories))
	for c := range profile.categories {
		categories = append(categories, c)
	}
	categoryIDs := make([]uint64, 0, len(profile.categoryIDs))
	for id := range profile.categoryIDs {
		categoryIDs = append(categoryIDs, id)
	}
	tags := make([]string, 0, len(profile.tags))
	for t := range profile.tags {
		tags = append(tags, t)
	}

	band := profile.priceRange() * 0.5
	candidates, err := s.productRepo.FindCandidates(
		ctx,
		categories,
		categoryIDs,
		tags,
		profile.minPrice-band,
		profile.maxPrice+band,
		excludeIDs,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("load content candidates: %w", err)
	}

	scores := make(map[uint64]float64, len(candidates))
	for _, candidate := range candidates {
		scores[candidate.ID] = contentScore(profile, candidate)
	}

	return rankTop(scores, contentTopN), nil
}
