package product

import (
	"context"

	"shopsphere/domain"
	"shopsphere/pkg/logger"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter, page, limit int) ([]domain.Product, int64, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uint64) error
}

// CategoryRepository contract interface
type CategoryRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Category, error)
}

// Tracker records behavior events without blocking the request path.
type Tracker interface {
	Track(userID uint, eventType string, productID uint64, eventData map[string]any)
}

type productService struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	tracker      Tracker
}

func NewProductService(productRepo ProductRepository, categoryRepo CategoryRepository, tracker Tracker) *productService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		tracker:      tracker,
	}
}

func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (domain.Product, error) {
	if product.Name == "" {
		return domain.Product{}, domain.NewBadRequest("product name is required")
	}
	if product.Price < 0 {
		return domain.Product{}, domain.NewBadRequest("product price cannot be negative")
	}
	if product.Stock < 0 {
		return domain.Product{}, domain.NewBadRequest("product stock cannot be negative")
	}

	if product.CategoryID != 0 {
		category, err := s.categoryRepo.FindByID(ctx, product.CategoryID)
		if err != nil {
			return domain.Product{}, domain.NewBadRequest("category %d does not exist", product.CategoryID)
		}
		if product.Category == "" {
			product.Category = category.Name
		}
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("Failed to create product", err)
		return domain.Product{}, err
	}

	return *product, nil
}

// GetProduct loads one product and records a view event for the requesting
// user, if any.
func (s *productService) GetProduct(ctx context.Context, id uint64, viewerID uint) (domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if viewerID > 0 {
		s.tracker.Track(viewerID, domain.EventProductView, product.ID, map[string]any{
			"price":    product.Price,
			"category": product.Category,
			"tags":     []string(product.Tags),
		})
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter domain.ProductFilter, page, limit int) ([]domain.Product, domain.PageMeta, error) {
	products, total, err := s.productRepo.FindAll(ctx, filter, page, limit)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, domain.PageMeta{}, err
	}

	return products, domain.NewPageMeta(page, limit, int(total)), nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uint64, updateData *domain.Product) (domain.Product, error) {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if updateData.Name != "" {
		existing.Name = updateData.Name
	}
	if updateData.Description != "" {
		existing.Description = updateData.Description
	}
	if updateData.Category != "" {
		existing.Category = updateData.Category
	}
	if updateData.CategoryID != 0 {
		if _, err := s.categoryRepo.FindByID(ctx, updateData.CategoryID); err != nil {
			return domain.Product{}, domain.NewBadRequest("category %d does not exist", updateData.CategoryID)
		}
		existing.CategoryID = updateData.CategoryID
	}
	if updateData.Tags != nil {
		existing.Tags = updateData.Tags
	}
	if updateData.Price > 0 {
		existing.Price = updateData.Price
	}
	if updateData.Stock >= 0 && updateData.Stock != existing.Stock {
		existing.Stock = updateData.Stock
	}
	if updateData.ImageURL != "" {
		existing.ImageURL = updateData.ImageURL
	}

	if err := s.productRepo.Update(ctx, &existing); err != nil {
		logger.Error("Failed to update product", err)
		return domain.Product{}, err
	}

	return existing, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete product", err)
		return err
	}

	return nil
}
