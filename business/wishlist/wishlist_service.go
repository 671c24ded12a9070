package wishlist

import (
	"context"
	"time"

	"shopsphere/domain"
	"shopsphere/pkg/logger"
)

// WishlistRepository contract interface
type WishlistRepository interface {
	Create(ctx context.Context, wishlist *domain.Wishlist) error
	FindByID(ctx context.Context, id uint64) (domain.Wishlist, error)
	FindByUser(ctx context.Context, userID uint) ([]domain.Wishlist, error)
	HasItem(ctx context.Context, wishlistID, productID uint64) (bool, error)
	AddItem(ctx context.Context, item *domain.WishlistItem) error
	RemoveItem(ctx context.Context, wishlistID, productID uint64) error
	Delete(ctx context.Context, id uint64) error
}

// ProductRepository contract interface
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
}

// Tracker records behavior events without blocking the request path.
type Tracker interface {
	Track(userID uint, eventType string, productID uint64, eventData map[string]any)
}

type wishlistService struct {
	wishlistRepo WishlistRepository
	productRepo  ProductRepository
	tracker      Tracker
}

func NewWishlistService(wishlistRepo WishlistRepository, productRepo ProductRepository, tracker Tracker) *wishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		tracker:      tracker,
	}
}

func (s *wishlistService) CreateWishlist(ctx context.Context, userID uint, name string) (domain.Wishlist, error) {
	if name == "" {
		return domain.Wishlist{}, domain.NewBadRequest("wishlist name is required")
	}

	wishlist := domain.Wishlist{UserID: userID, Name: name}
	if err := s.wishlistRepo.Create(ctx, &wishlist); err != nil {
		logger.Error("Failed to create wishlist", err)
		return domain.Wishlist{}, err
	}

	return wishlist, nil
}

func (s *wishlistService) GetWishlist(ctx context.Context, id uint64, userID uint) (domain.Wishlist, error) {
	wishlist, err := s.wishlistRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Wishlist{}, err
	}

	if wishlist.UserID != userID {
		return domain.Wishlist{}, domain.NewForbidden("wishlist does not belong to this user")
	}

	return wishlist, nil
}

func (s *wishlistService) ListWishlists(ctx context.Context, userID uint) ([]domain.Wishlist, error) {
	wishlists, err := s.wishlistRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to list wishlists", err)
		return nil, err
	}

	return wishlists, nil
}

// AddItem adds a product to a wishlist. Adding a product that is already on
// the list is a conflict, not a silent no-op.
func (s *wishlistService) AddItem(ctx context.Context, wishlistID uint64, userID uint, productID uint64) (domain.WishlistItem, error) {
	wishlist, err := s.wishlistRepo.FindByID(ctx, wishlistID)
	if err != nil {
		return domain.WishlistItem{}, err
	}
	if wishlist.UserID != userID {
		return domain.WishlistItem{}, domain.NewForbidden("wishlist does not belong to this user")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return domain.WishlistItem{}, err
	}

	exists, err := s.wishlistRepo.HasItem(ctx, wishlistID, productID)
	if err != nil {
		return domain.WishlistItem{}, err
	}
	if exists {
		return domain.WishlistItem{}, domain.NewConflict("product already in wishlist")
	}

	item := domain.WishlistItem{
		WishlistID: wishlistID,
		ProductID:  productID,
		AddedAt:    time.Now(),
	}
	if err := s.wishlistRepo.AddItem(ctx, &item); err != nil {
		logger.Error("Failed to add wishlist item", err)
		return domain.WishlistItem{}, err
	}

	s.tracker.Track(userID, domain.EventWishlistAdd, product.ID, map[string]any{
		"price":    product.Price,
		"category": product.Category,
		"tags":     []string(product.Tags),
	})

	return item, nil
}

func (s *wishlistService) RemoveItem(ctx context.Context, wishlistID uint64, userID uint, productID uint64) error {
	wishlist, err := s.wishlistRepo.FindByID(ctx, wishlistID)
	if err != nil {
		return err
	}
	if wishlist.UserID != userID {
		return domain.NewForbidden("wishlist does not belong to this user")
	}

	if err := s.wishlistRepo.RemoveItem(ctx, wishlistID, productID); err != nil {
		logger.Error("Failed to remove wishlist item", err)
		return err
	}

	return nil
}

func (s *wishlistService) DeleteWishlist(ctx context.Context, id uint64, userID uint) error {
	wishlist, err := s.wishlistRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if wishlist.UserID != userID {
		return domain.NewForbidden("wishlist does not belong to this user")
	}

	if err := s.wishlistRepo.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete wishlist", err)
		return err
	}

	return nil
}
