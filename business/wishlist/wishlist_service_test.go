package wishlist

import (
	"context"
	"testing"
	"time"

	"shopsphere/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWishlistRepo struct {
	wishlists map[uint64]domain.Wishlist
	items     map[uint64]map[uint64]bool
	nextID    uint64
}

func newFakeWishlistRepo() *fakeWishlistRepo {
	return &fakeWishlistRepo{
		wishlists: map[uint64]domain.Wishlist{},
		items:     map[uint64]map[uint64]bool{},
	}
}

func (f *fakeWishlistRepo) Create(_ context.Context, wishlist *domain.Wishlist) error {
	f.nextID++
	wishlist.ID = f.nextID
	f.wishlists[wishlist.ID] = *wishlist
	f.items[wishlist.ID] = map[uint64]bool{}
	return nil
}

func (f *fakeWishlistRepo) FindByID(_ context.Context, id uint64) (domain.Wishlist, error) {
	w, ok := f.wishlists[id]
	if !ok {
		return domain.Wishlist{}, domain.NewNotFound("wishlist %d not found", id)
	}
	return w, nil
}

func (f *fakeWishlistRepo) FindByUser(_ context.Context, userID uint) ([]domain.Wishlist, error) {
	var out []domain.Wishlist
	for _, w := range f.wishlists {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWishlistRepo) HasItem(_ context.Context, wishlistID, productID uint64) (bool, error) {
	return f.items[wishlistID][productID], nil
}

func (f *fakeWishlistRepo) AddItem(_ context.Context, item *domain.WishlistItem) error {
	f.items[item.WishlistID][item.ProductID] = true
	return nil
}

func (f *fakeWishlistRepo) RemoveItem(_ context.Context, wishlistID, productID uint64) error {
	if !f.items[wishlistID][productID] {
		return domain.NewNotFound("item not in wishlist")
	}
	delete(f.items[wishlistID], productID)
	return nil
}

func (f *fakeWishlistRepo) Delete(_ context.Context, id uint64) error {
	delete(f.wishlists, id)
	delete(f.items, id)
	return nil
}

type fakeProductRepo struct {
	products map[uint64]domain.Product
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uint64) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.NewNotFound("product %d not found", id)
	}
	return p, nil
}

type fakeTracker struct {
	events []string
}

func (f *fakeTracker) Track(_ uint, eventType string, _ uint64, _ map[string]any) {
	f.events = append(f.events, eventType)
}

func newTestWishlistService() (*wishlistService, *fakeTracker) {
	repo := newFakeWishlistRepo()
	products := &fakeProductRepo{products: map[uint64]domain.Product{
		1: {ID: 1, Name: "Monstera", Price: 25, Category: "plants"},
	}}
	tracker := &fakeTracker{}

	return NewWishlistService(repo, products, tracker), tracker
}

func TestAddItemDuplicateConflicts(t *testing.T) {
	svc, tracker := newTestWishlistService()
	ctx := context.Background()

	wishlist, err := svc.CreateWishlist(ctx, 1, "birthday")
	require.NoError(t, err)

	item, err := svc.AddItem(ctx, wishlist.ID, 1, 1)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), item.AddedAt, time.Minute)
	assert.Equal(t, []string{domain.EventWishlistAdd}, tracker.events)

	_, err = svc.AddItem(ctx, wishlist.ID, 1, 1)
	require.Error(t, err)

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "CONFLICT", appErr.Code)

	// No second event for the rejected add.
	assert.Len(t, tracker.events, 1)
}

func TestWishlistOwnershipEnforced(t *testing.T) {
	svc, _ := newTestWishlistService()
	ctx := context.Background()

	wishlist, err := svc.CreateWishlist(ctx, 1, "mine")
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, wishlist.ID, 2, 1)
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "FORBIDDEN", appErr.Code)

	_, err = svc.GetWishlist(ctx, wishlist.ID, 2)
	require.Error(t, err)

	err = svc.DeleteWishlist(ctx, wishlist.ID, 2)
	require.Error(t, err)
}

func TestRemoveMissingItem(t *testing.T) {
	svc, _ := newTestWishlistService()
	ctx := context.Background()

	wishlist, err := svc.CreateWishlist(ctx, 1, "empty")
	require.NoError(t, err)

	err = svc.RemoveItem(ctx, wishlist.ID, 1, 1)
	require.Error(t, err)

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
