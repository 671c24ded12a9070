package rating

import (
	"context"

	"shopsphere/domain"
	"shopsphere/pkg/logger"
)

// RatingRepository contract interface
type RatingRepository interface {
	CreateWithAggregates(ctx context.Context, rating *domain.Rating) error
	UpdateWithAggregates(ctx context.Context, rating *domain.Rating) error
	DeleteWithAggregates(ctx context.Context, rating *domain.Rating) error
	FindByID(ctx context.Context, id uint64) (domain.Rating, error)
	FindByUserAndProduct(ctx context.Context, userID uint, productID uint64) (domain.Rating, error)
	FindByProduct(ctx context.Context, productID uint64, page, limit int) ([]domain.Rating, int64, error)
}

// ProductRepository contract interface
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
}

type ratingService struct {
	ratingRepo  RatingRepository
	productRepo ProductRepository
}

func NewRatingService(ratingRepo RatingRepository, productRepo ProductRepository) *ratingService {
	return &ratingService{
		ratingRepo:  ratingRepo,
		productRepo: productRepo,
	}
}

// CreateRating records one rating per user per product. The product's
// aggregate average and count are refreshed in the same transaction.
func (s *ratingService) CreateRating(ctx context.Context, userID uint, productID uint64, score int, review string) (domain.Rating, error) {
	if score < 1 || score > 5 {
		return domain.Rating{}, domain.NewBadRequest("score must be between 1 and 5")
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return domain.Rating{}, err
	}

	if existing, err := s.ratingRepo.FindByUserAndProduct(ctx, userID, productID); err == nil && existing.ID > 0 {
		return domain.Rating{}, domain.NewConflict("product already rated by this user")
	}

	rating := domain.Rating{
		UserID:    userID,
		ProductID: productID,
		Score:     score,
		Review:    review,
	}
	if err := s.ratingRepo.CreateWithAggregates(ctx, &rating); err != nil {
		logger.Error("Failed to create rating", err)
		return domain.Rating{}, err
	}

	return rating, nil
}

func (s *ratingService) UpdateRating(ctx context.Context, ratingID uint64, userID uint, score int, review string) (domain.Rating, error) {
	if score < 1 || score > 5 {
		return domain.Rating{}, domain.NewBadRequest("score must be between 1 and 5")
	}

	rating, err := s.ratingRepo.FindByID(ctx, ratingID)
	if err != nil {
		return domain.Rating{}, err
	}
	if rating.UserID != userID {
		return domain.Rating{}, domain.NewForbidden("rating does not belong to this user")
	}

	rating.Score = score
	rating.Review = review
	if err := s.ratingRepo.UpdateWithAggregates(ctx, &rating); err != nil {
		logger.Error("Failed to update rating", err)
		return domain.Rating{}, err
	}

	return rating, nil
}

func (s *ratingService) DeleteRating(ctx context.Context, ratingID uint64, userID uint, isAdmin bool) error {
	rating, err := s.ratingRepo.FindByID(ctx, ratingID)
	if err != nil {
		return err
	}
	if !isAdmin && rating.UserID != userID {
		return domain.NewForbidden("rating does not belong to this user")
	}

	if err := s.ratingRepo.DeleteWithAggregates(ctx, &rating); err != nil {
		logger.Error("Failed to delete rating", err)
		return err
	}

	return nil
}

func (s *ratingService) ListProductRatings(ctx context.Context, productID uint64, page, limit int) ([]domain.Rating, domain.PageMeta, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, domain.PageMeta{}, err
	}

	ratings, total, err := s.ratingRepo.FindByProduct(ctx, productID, page, limit)
	if err != nil {
		logger.Error("Failed to list ratings", err)
		return nil, domain.PageMeta{}, err
	}

	return ratings, domain.NewPageMeta(page, limit, int(total)), nil
}
