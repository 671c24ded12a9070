package recommendation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"shopsphere/domain"
	"shopsphere/pkg/logger"
	"shopsphere/pkg/metrics"
)

const (
	cacheTTL = time.Hour

	maxSimilarUsers = 50
	collabTopN      = 50
	contentTopN     = 50
	fusedTopN       = 100
	similarTopN     = 20
	trendingTopN    = 50

	trendingWindow = 7 * 24 * time.Hour

	collabWeight  = 0.4
	contentWeight = 0.6
)

// ---- Repository interfaces ----

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
	FindCandidates(
		ctx context.Context,
		categories []string,
		categoryIDs []uint64,
		tags []string,
		minPrice, maxPrice float64,
		excludeIDs []uint64,
		limit int,
	) ([]domain.Product, error)
}

type BehaviorRepository interface {
	SimilarUsers(ctx context.Context, userID uint, limit int) ([]uint, error)
	UserProductInteractions(ctx context.Context, userID uint) (map[uint64]domain.InteractionSummary, error)
	InteractionCountsForUsers(ctx context.Context, userIDs []uint) ([]domain.ProductInteractionCounts, error)
	TrendingCounts(ctx context.Context, since time.Time) ([]domain.TrendingCounts, error)
}

type OrdersRepository interface {
	ProductIDsInStatuses(ctx context.Context, userID uint, statuses []string) ([]uint64, error)
}

type CacheRepository interface {
	Get(ctx context.Context, recoType, subjectKey string, now time.Time) (*domain.CacheEntry, error)
	Put(ctx context.Context, entry *domain.CacheEntry) error
}

// ---- Service ----

// Service computes ranked product recommendations with a 1-hour cache in
// front of each ranking. Cached entries are immutable; a regeneration simply
// overwrites the previous entry for the same subject.
type Service struct {
	productRepo  ProductRepository
	behaviorRepo BehaviorRepository
	ordersRepo   OrdersRepository
	cache        CacheRepository

	now func() time.Time
}

func NewService(
	productRepo ProductRepository,
	behaviorRepo BehaviorRepository,
	ordersRepo OrdersRepository,
	cache CacheRepository,
) *Service {
	return &Service{
		productRepo:  productRepo,
		behaviorRepo: behaviorRepo,
		ordersRepo:   ordersRepo,
		cache:        cache,
		now:          time.Now,
	}
}

type scoredID struct {
	productID uint64
	score     float64
}

// rankTop sorts descending by score (product id ascending on ties, so the
// ranking is stable) and truncates to n.
func rankTop(scores map[uint64]float64, n int) []scoredID {
	ranked := make([]scoredID, 0, len(scores))
	for pid, score := range scores {
		ranked = append(ranked, scoredID{productID: pid, score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score == ranked[j].score {
			return ranked[i].productID < ranked[j].productID
		}
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}

	return ranked
}

func newEntry(subjectKey, recoType string, ranked []scoredID, now time.Time) *domain.CacheEntry {
	ids := make([]uint64, 0, len(ranked))
	scores := make(map[uint64]float64, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.productID)
		scores[r.productID] = r.score
	}

	return &domain.CacheEntry{
		SubjectKey:       subjectKey,
		Type:             recoType,
		RankedProductIDs: ids,
		Scores:           scores,
		CreatedAt:        now,
		ExpiresAt:        now.Add(cacheTTL),
	}
}

// lookupOrGenerate serves the cache-aside pattern shared by every
// recommendation type.
func (s *Service) lookupOrGenerate(
	ctx context.Context,
	recoType, subjectKey string,
	generate func(ctx context.Context) ([]scoredID, error),
) (*domain.CacheEntry, error) {
	now := s.now()

	entry, err := s.cache.Get(ctx, recoType, subjectKey, now)
	if err != nil {
		// A broken cache degrades to recomputation, never to a failed request.
		logger.Warn("recommendation cache read failed", "type", recoType, "error", err)
	}
	if entry != nil {
		metrics.RecommendationCacheHits.WithLabelValues(recoType).Inc()
		return entry, nil
	}
	metrics.RecommendationCacheMisses.WithLabelValues(recoType).Inc()

	ranked, err := generate(ctx)
	if err != nil {
		return nil, err
	}

	entry = newEntry(subjectKey, recoType, ranked, now)
	if err := s.cache.Put(ctx, entry); err != nil {
		logger.Warn("recommendation cache write failed", "type", recoType, "error", err)
	}

	return entry, nil
}

// pageFromEntry hydrates one page of the ranked list. Product ids that no
// longer resolve are dropped without error; TotalItems stays the ranked-list
// length at generation time.
func (s *Service) pageFromEntry(ctx context.Context, entry *domain.CacheEntry, page, limit int) ([]domain.ScoredProduct, domain.PageMeta, error) {
	start, end := domain.PageBounds(page, limit, len(entry.RankedProductIDs))
	pageIDs := entry.RankedProductIDs[start:end]

	products, err := s.productRepo.FindByIDs(ctx, pageIDs)
	if err != nil {
		return nil, domain.PageMeta{}, fmt.Errorf("failed to hydrate recommended products: %w", err)
	}

	items := make([]domain.ScoredProduct, 0, len(products))
	for _, p := range products {
		items = append(items, domain.ScoredProduct{
			Product: p,
			Score:   entry.Scores[p.ID],
		})
	}

	return items, domain.NewPageMeta(page, limit, len(entry.RankedProductIDs)), nil
}

func userSubjectKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func productSubjectKey(productID uint64) string {
	return fmt.Sprintf("product:%d", productID)
}
