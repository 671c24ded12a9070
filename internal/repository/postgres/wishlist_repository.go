package postgres

import (
	"context"
	"errors"
	"fmt"

	"shopsphere/domain"

	"gorm.io/gorm"
)

type WishlistRepository struct {
	DB *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) *WishlistRepository {
	return &WishlistRepository{DB: db}
}

func (r *WishlistRepository) Create(ctx context.Context, wishlist *domain.Wishlist) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(wishlist).Error; err != nil {
		return fmt.Errorf("failed to create wishlist: %w", err)
	}

	return nil
}

func (r *WishlistRepository) FindByID(ctx context.Context, id uint64) (domain.Wishlist, error) {
	if err := ctx.Err(); err != nil {
		return domain.Wishlist{}, fmt.Errorf("context error: %w", err)
	}

	var wishlist domain.Wishlist
	err := r.DB.WithContext(ctx).Preload("Items").First(&wishlist, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Wishlist{}, domain.NewNotFound("wishlist %d not found", id)
		}
		return domain.Wishlist{}, fmt.Errorf("failed to find wishlist: %w", err)
	}

	return wishlist, nil
}

func (r *WishlistRepository) FindByUser(ctx context.Context, userID uint) ([]domain.Wishlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var wishlists []domain.Wishlist
	err := r.DB.WithContext(ctx).Preload("Items").Where("user_id = ?", userID).Order("created_at").Find(&wishlists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find wishlists: %w", err)
	}

	return wishlists, nil
}

func (r *WishlistRepository) HasItem(ctx context.Context, wishlistID, productID uint64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).Model(&domain.WishlistItem{}).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist item: %w", err)
	}

	return count > 0, nil
}

func (r *WishlistRepository) AddItem(ctx context.Context, item *domain.WishlistItem) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}

	return nil
}

func (r *WishlistRepository) RemoveItem(ctx context.Context, wishlistID, productID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&domain.WishlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFound("product %d not in wishlist", productID)
	}

	return nil
}

func (r *WishlistRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wishlist_id = ?", id).Delete(&domain.WishlistItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete wishlist items: %w", err)
		}

		result := tx.Delete(&domain.Wishlist{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete wishlist: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFound("wishlist %d not found", id)
		}

		return nil
	})
}
