package postgres

import (
	"context"
	"fmt"

	"shopsphere/domain"

	"gorm.io/gorm"
)

type FavoriteRepository struct {
	DB *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{DB: db}
}

func (r *FavoriteRepository) Create(ctx context.Context, favorite *domain.Favorite) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(favorite).Error; err != nil {
		return fmt.Errorf("failed to create favorite: %w", err)
	}

	return nil
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID uint, productID uint64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).Model(&domain.Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}

	return count > 0, nil
}

func (r *FavoriteRepository) FindByUser(ctx context.Context, userID uint, page, limit int) ([]domain.Favorite, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.Favorite{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count favorites: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var favorites []domain.Favorite
	err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&favorites).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find favorites: %w", err)
	}

	return favorites, total, nil
}

// UserIDsByProduct returns the users who favorited a product. Consumed by the
// scraper's price-drop notifications.
func (r *FavoriteRepository) UserIDsByProduct(ctx context.Context, productID uint64) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uint
	err := r.DB.WithContext(ctx).Model(&domain.Favorite{}).
		Where("product_id = ?", productID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find favoriting users: %w", err)
	}

	return ids, nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, userID uint, productID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&domain.Favorite{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFound("favorite not found")
	}

	return nil
}
