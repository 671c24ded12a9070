package favorite

import (
	"context"

	"shopsphere/domain"
	"shopsphere/pkg/logger"
)

// FavoriteRepository contract interface
type FavoriteRepository interface {
	Create(ctx context.Context, favorite *domain.Favorite) error
	Exists(ctx context.Context, userID uint, productID uint64) (bool, error)
	FindByUser(ctx context.Context, userID uint, page, limit int) ([]domain.Favorite, int64, error)
	Delete(ctx context.Context, userID uint, productID uint64) error
}

// ProductRepository contract interface
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
}

// Tracker records behavior events without blocking the request path.
type Tracker interface {
	Track(userID uint, eventType string, productID uint64, eventData map[string]any)
}

type favoriteService struct {
	favoriteRepo FavoriteRepository
	productRepo  ProductRepository
	tracker      Tracker
}

func NewFavoriteService(favoriteRepo FavoriteRepository, productRepo ProductRepository, tracker Tracker) *favoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
		tracker:      tracker,
	}
}

// AddFavorite marks a product as a favorite. Favoriting twice is a conflict.
func (s *favoriteService) AddFavorite(ctx context.Context, userID uint, productID uint64) (domain.Favorite, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return domain.Favorite{}, err
	}

	exists, err := s.favoriteRepo.Exists(ctx, userID, productID)
	if err != nil {
		return domain.Favorite{}, err
	}
	if exists {
		return domain.Favorite{}, domain.NewConflict("product already favorited")
	}

	favorite := domain.Favorite{UserID: userID, ProductID: productID}
	if err := s.favoriteRepo.Create(ctx, &favorite); err != nil {
		logger.Error("Failed to add favorite", err)
		return domain.Favorite{}, err
	}

	s.tracker.Track(userID, domain.EventFavoriteAdd, product.ID, map[string]any{
		"price":    product.Price,
		"category": product.Category,
		"tags":     []string(product.Tags),
	})

	return favorite, nil
}

// ListFavorites returns the favorited products themselves, paginated.
func (s *favoriteService) ListFavorites(ctx context.Context, userID uint, page, limit int) ([]domain.Product, domain.PageMeta, error) {
	favorites, total, err := s.favoriteRepo.FindByUser(ctx, userID, page, limit)
	if err != nil {
		logger.Error("Failed to list favorites", err)
		return nil, domain.PageMeta{}, err
	}

	ids := make([]uint64, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		logger.Error("Failed to load favorited products", err)
		return nil, domain.PageMeta{}, err
	}

	return products, domain.NewPageMeta(page, limit, int(total)), nil
}

func (s *favoriteService) RemoveFavorite(ctx context.Context, userID uint, productID uint64) error {
	if err := s.favoriteRepo.Delete(ctx, userID, productID); err != nil {
		logger.Error("Failed to remove favorite", err)
		return err
	}

	return nil
}
