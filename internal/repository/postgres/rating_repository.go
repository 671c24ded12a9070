package postgres

import (
	"context"
	"errors"
	"fmt"

	"shopsphere/domain"

	"gorm.io/gorm"
)

type RatingRepository struct {
	DB *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{DB: db}
}

// CreateWithAggregates inserts the rating and refreshes the product's
// rating_avg / rating_count in the same transaction.
func (r *RatingRepository) CreateWithAggregates(ctx context.Context, rating *domain.Rating) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rating).Error; err != nil {
			return fmt.Errorf("failed to create rating: %w", err)
		}
		return refreshRatingAggregates(tx, rating.ProductID)
	})
}

func (r *RatingRepository) UpdateWithAggregates(ctx context.Context, rating *domain.Rating) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Rating{}).Where("id = ?", rating.ID).
			Updates(map[string]interface{}{"score": rating.Score, "review": rating.Review})
		if result.Error != nil {
			return fmt.Errorf("failed to update rating: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFound("rating %d not found", rating.ID)
		}
		return refreshRatingAggregates(tx, rating.ProductID)
	})
}

func (r *RatingRepository) DeleteWithAggregates(ctx context.Context, rating *domain.Rating) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&domain.Rating{}, rating.ID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete rating: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFound("rating %d not found", rating.ID)
		}
		return refreshRatingAggregates(tx, rating.ProductID)
	})
}

func refreshRatingAggregates(tx *gorm.DB, productID uint64) error {
	err := tx.Model(&domain.Product{}).Where("id = ?", productID).Updates(map[string]interface{}{
		"rating_avg":   gorm.Expr("COALESCE((SELECT AVG(score) FROM ratings WHERE product_id = ?), 0)", productID),
		"rating_count": gorm.Expr("(SELECT COUNT(*) FROM ratings WHERE product_id = ?)", productID),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to refresh rating aggregates: %w", err)
	}

	return nil
}

func (r *RatingRepository) FindByID(ctx context.Context, id uint64) (domain.Rating, error) {
	if err := ctx.Err(); err != nil {
		return domain.Rating{}, fmt.Errorf("context error: %w", err)
	}

	var rating domain.Rating
	err := r.DB.WithContext(ctx).First(&rating, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Rating{}, domain.NewNotFound("rating %d not found", id)
		}
		return domain.Rating{}, fmt.Errorf("failed to find rating: %w", err)
	}

	return rating, nil
}

func (r *RatingRepository) FindByUserAndProduct(ctx context.Context, userID uint, productID uint64) (domain.Rating, error) {
	if err := ctx.Err(); err != nil {
		return domain.Rating{}, fmt.Errorf("context error: %w", err)
	}

	var rating domain.Rating
	err := r.DB.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Rating{}, domain.NewNotFound("rating not found")
		}
		return domain.Rating{}, fmt.Errorf("failed to find rating: %w", err)
	}

	return rating, nil
}

func (r *RatingRepository) FindByProduct(ctx context.Context, productID uint64, page, limit int) ([]domain.Rating, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.Rating{}).Where("product_id = ?", productID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ratings: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var ratings []domain.Rating
	err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&ratings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find ratings: %w", err)
	}

	return ratings, total, nil
}
