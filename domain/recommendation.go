package domain

import "time"

const (
	RecommendationPersonalized = "personalized"
	RecommendationSimilar      = "similar"
	RecommendationTrending     = "trending"
)

// CacheEntry is an immutable snapshot of a ranked recommendation list.
// Created once after a cache miss, never mutated, superseded by a newer
// write for the same (SubjectKey, Type) or allowed to lapse past ExpiresAt.
type CacheEntry struct {
	SubjectKey       string             `json:"subject_key"`
	Type             string             `json:"type"`
	RankedProductIDs []uint64           `json:"ranked_product_ids"`
	Scores           map[uint64]float64 `json:"scores"`
	CreatedAt        time.Time          `json:"created_at"`
	ExpiresAt        time.Time          `json:"expires_at"`
}

// Valid reports whether the entry may still serve lookups at now.
func (e *CacheEntry) Valid(now time.Time) bool {
	return e != nil && now.Before(e.ExpiresAt)
}

// ScoredProduct pairs a hydrated product with its recommendation score.
type ScoredProduct struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
}
