package recommendation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"shopsphere/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeProductRepo struct {
	products   map[uint64]domain.Product
	candidates []domain.Product
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uint64) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.NewNotFound("product %d not found", id)
	}
	return p, nil
}

func (f *fakeProductRepo) FindByIDs(_ context.Context, ids []uint64) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) FindCandidates(_ context.Context, _ []string, _ []uint64, _ []string, minPrice, maxPrice float64, excludeIDs []uint64, _ int) ([]domain.Product, error) {
	excluded := make(map[uint64]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	out := make([]domain.Product, 0, len(f.candidates))
	for _, p := range f.candidates {
		if excluded[p.ID] {
			continue
		}
		if minPrice > 0 && p.Price < minPrice {
			continue
		}
		if maxPrice > 0 && p.Price > maxPrice {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeBehaviorRepo struct {
	similarUsers  []uint
	interactions  map[uint64]domain.InteractionSummary
	cohortCounts  []domain.ProductInteractionCounts
	trending      []domain.TrendingCounts
	trendingCalls int
}

func (f *fakeBehaviorRepo) SimilarUsers(_ context.Context, _ uint, _ int) ([]uint, error) {
	return f.similarUsers, nil
}

func (f *fakeBehaviorRepo) UserProductInteractions(_ context.Context, _ uint) (map[uint64]domain.InteractionSummary, error) {
	if f.interactions == nil {
		return map[uint64]domain.InteractionSummary{}, nil
	}
	return f.interactions, nil
}

func (f *fakeBehaviorRepo) InteractionCountsForUsers(_ context.Context, _ []uint) ([]domain.ProductInteractionCounts, error) {
	return f.cohortCounts, nil
}

func (f *fakeBehaviorRepo) TrendingCounts(_ context.Context, _ time.Time) ([]domain.TrendingCounts, error) {
	f.trendingCalls++
	return f.trending, nil
}

type fakeOrdersRepo struct {
	orderedIDs []uint64
}

func (f *fakeOrdersRepo) ProductIDsInStatuses(_ context.Context, _ uint, _ []string) ([]uint64, error) {
	return f.orderedIDs, nil
}

type fakeCache struct {
	entries map[string]*domain.CacheEntry
	puts    int
}

func cacheKey(recoType, subjectKey string) string {
	return fmt.Sprintf("%s|%s", recoType, subjectKey)
}

func (f *fakeCache) Get(_ context.Context, recoType, subjectKey string, now time.Time) (*domain.CacheEntry, error) {
	entry := f.entries[cacheKey(recoType, subjectKey)]
	if !entry.Valid(now) {
		return nil, nil
	}
	return entry, nil
}

func (f *fakeCache) Put(_ context.Context, entry *domain.CacheEntry) error {
	if f.entries == nil {
		f.entries = map[string]*domain.CacheEntry{}
	}
	f.entries[cacheKey(entry.Type, entry.SubjectKey)] = entry
	f.puts++
	return nil
}

func newTestService(products *fakeProductRepo, behavior *fakeBehaviorRepo, orders *fakeOrdersRepo, cache *fakeCache) *Service {
	svc := NewService(products, behavior, orders, cache)
	return svc
}

func TestPersonalizedFusesCollaborativeAndContent(t *testing.T) {
	// The user has interacted with product 10 (plants, "indoor", price 100).
	// Product 20 gets a collaborative score of 8 (2 users x 4 avg intensity)
	// and a content score of 6 (+3 category, +3 exact price midpoint), so the
	// fused score is 0.4*8 + 0.6*6 = 6.8.
	products := &fakeProductRepo{
		products: map[uint64]domain.Product{
			10: {ID: 10, Category: "plants", Tags: datatypes.NewJSONSlice([]string{"indoor"}), Price: 100},
			20: {ID: 20, Category: "plants", Tags: datatypes.NewJSONSlice([]string{"outdoor"}), Price: 100, Stock: 5},
		},
	}
	products.candidates = []domain.Product{products.products[20]}

	behavior := &fakeBehaviorRepo{
		similarUsers: []uint{2, 3},
		interactions: map[uint64]domain.InteractionSummary{
			10: {ProductID: 10, Count: 3},
		},
		cohortCounts: []domain.ProductInteractionCounts{
			{ProductID: 20, DistinctUserCount: 2, TotalInteractions: 8},
		},
	}

	svc := newTestService(products, behavior, &fakeOrdersRepo{}, &fakeCache{})

	items, meta, err := svc.GetPersonalized(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, uint64(20), items[0].Product.ID)
	assert.InDelta(t, 6.8, items[0].Score, 1e-9)
	assert.Equal(t, 1, meta.TotalItems)
}

func TestPersonalizedExcludesOwnInteractions(t *testing.T) {
	products := &fakeProductRepo{
		products: map[uint64]domain.Product{
			10: {ID: 10, Category: "plants", Price: 100},
		},
	}

	behavior := &fakeBehaviorRepo{
		similarUsers: []uint{2},
		interactions: map[uint64]domain.InteractionSummary{
			10: {ProductID: 10, Count: 1},
		},
		// The cohort only interacted with the product the user already knows.
		cohortCounts: []domain.ProductInteractionCounts{
			{ProductID: 10, DistinctUserCount: 5, TotalInteractions: 25},
		},
	}

	svc := newTestService(products, behavior, &fakeOrdersRepo{}, &fakeCache{})

	items, _, err := svc.GetPersonalized(context.Background(), 1, 1, 10)
	require.NoError(t, err)

	for _, item := range items {
		assert.NotEqual(t, uint64(10), item.Product.ID)
	}
}

func TestPersonalizedEmptyForNewUser(t *testing.T) {
	svc := newTestService(&fakeProductRepo{products: map[uint64]domain.Product{}}, &fakeBehaviorRepo{}, &fakeOrdersRepo{}, &fakeCache{})

	items, meta, err := svc.GetPersonalized(context.Background(), 42, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, meta.TotalItems)
}

func TestSimilarityScore(t *testing.T) {
	source := domain.Product{
		ID:       1,
		Category: "plants",
		Tags:     datatypes.NewJSONSlice([]string{"indoor", "low-light"}),
		Price:    100,
	}
	candidate := domain.Product{
		ID:       2,
		Category: "plants",
		Tags:     datatypes.NewJSONSlice([]string{"indoor", "low-light", "gift"}),
		Price:    100,
	}

	// +5 category, +3 per shared tag (x2), +5 identical price.
	assert.InDelta(t, 16.0, similarityScore(source, candidate), 1e-9)

	// Price term decays linearly: a 50% gap keeps half of it.
	candidate.Price = 150
	assert.InDelta(t, 13.5, similarityScore(source, candidate), 1e-9)

	// Category and category-id matches do not stack.
	source.CategoryID = 7
	candidate.CategoryID = 7
	candidate.Price = 100
	assert.InDelta(t, 16.0, similarityScore(source, candidate), 1e-9)
}

func TestGetSimilarUnknownProduct(t *testing.T) {
	svc := newTestService(&fakeProductRepo{products: map[uint64]domain.Product{}}, &fakeBehaviorRepo{}, &fakeOrdersRepo{}, &fakeCache{})

	_, _, err := svc.GetSimilar(context.Background(), 999, 1, 10)
	require.Error(t, err)

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestTrendingWeights(t *testing.T) {
	products := &fakeProductRepo{
		products: map[uint64]domain.Product{
			1: {ID: 1, Name: "hot"},
			2: {ID: 2, Name: "cold"},
		},
	}
	behavior := &fakeBehaviorRepo{
		trending: []domain.TrendingCounts{
			{ProductID: 1, Views: 6, Purchases: 4, CartAdds: 1}, // 6 + 20 + 3 = 29
			{ProductID: 2, Views: 10},                           // 10
		},
	}

	svc := newTestService(products, behavior, &fakeOrdersRepo{}, &fakeCache{})

	items, _, err := svc.GetTrending(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, uint64(1), items[0].Product.ID)
	assert.InDelta(t, 29.0, items[0].Score, 1e-9)
	assert.Equal(t, uint64(2), items[1].Product.ID)
	assert.InDelta(t, 10.0, items[1].Score, 1e-9)
}

func TestTrendingCacheExpiresAfterOneHour(t *testing.T) {
	products := &fakeProductRepo{products: map[uint64]domain.Product{1: {ID: 1}}}
	behavior := &fakeBehaviorRepo{
		trending: []domain.TrendingCounts{{ProductID: 1, Views: 1}},
	}
	cache := &fakeCache{}

	svc := newTestService(products, behavior, &fakeOrdersRepo{}, cache)

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	svc.now = func() time.Time { return now }

	_, _, err := svc.GetTrending(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, behavior.trendingCalls)
	assert.Equal(t, 1, cache.puts)

	// 59 minutes in: still served from cache.
	now = t0.Add(59 * time.Minute)
	_, _, err = svc.GetTrending(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, behavior.trendingCalls)

	// 61 minutes in: the entry lapsed, a fresh one is generated.
	now = t0.Add(61 * time.Minute)
	_, _, err = svc.GetTrending(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, behavior.trendingCalls)
	assert.Equal(t, 2, cache.puts)
}

func TestForYouFiltersOrderedButKeepsPreFilterCount(t *testing.T) {
	products := &fakeProductRepo{
		products: map[uint64]domain.Product{
			10: {ID: 10, Category: "plants", Price: 100},
			20: {ID: 20, Category: "plants", Price: 100, Stock: 1},
			30: {ID: 30, Category: "plants", Price: 100, Stock: 1},
		},
	}
	products.candidates = []domain.Product{products.products[20], products.products[30]}

	behavior := &fakeBehaviorRepo{
		interactions: map[uint64]domain.InteractionSummary{
			10: {ProductID: 10, Count: 2},
		},
	}
	orders := &fakeOrdersRepo{orderedIDs: []uint64{20}}

	svc := newTestService(products, behavior, orders, &fakeCache{})

	items, meta, err := svc.GetRecommendedForYou(context.Background(), 1, 1, 10)
	require.NoError(t, err)

	for _, item := range items {
		assert.NotEqual(t, uint64(20), item.Product.ID, "ordered product must be filtered out")
	}
	// The metadata reflects the ranked list before filtering.
	assert.Equal(t, 2, meta.TotalItems)
	require.Len(t, items, 1)
	assert.Equal(t, uint64(30), items[0].Product.ID)
}

func TestRankTopTieBreaksByProductID(t *testing.T) {
	ranked := rankTop(map[uint64]float64{5: 1, 3: 1, 9: 2}, 10)

	require.Len(t, ranked, 3)
	assert.Equal(t, uint64(9), ranked[0].productID)
	assert.Equal(t, uint64(3), ranked[1].productID)
	assert.Equal(t, uint64(5), ranked[2].productID)
}

func TestRankTopTruncates(t *testing.T) {
	scores := make(map[uint64]float64, 200)
	for i := uint64(1); i <= 200; i++ {
		scores[i] = float64(i)
	}

	ranked := rankTop(scores, fusedTopN)
	assert.Len(t, ranked, fusedTopN)
	assert.Equal(t, uint64(200), ranked[0].productID)
}
