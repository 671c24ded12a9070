package category

import (
	"context"

	"shopsphere/domain"
	"shopsphere/pkg/logger"
)

// CategoryRepository contract interface
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id uint64) (domain.Category, error)
	FindAll(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uint64) error
}

type categoryService struct {
	categoryRepo CategoryRepository
}

func NewCategoryService(categoryRepo CategoryRepository) *categoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) CreateCategory(ctx context.Context, category *domain.Category) (domain.Category, error) {
	if category.Name == "" {
		return domain.Category{}, domain.NewBadRequest("category name is required")
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		logger.Error("Failed to create category", err)
		return domain.Category{}, err
	}

	return *category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uint64) (domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

func (s *categoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to list categories", err)
		return nil, err
	}

	return categories, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uint64, name string) (domain.Category, error) {
	if name == "" {
		return domain.Category{}, domain.NewBadRequest("category name is required")
	}

	existing, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}

	existing.Name = name
	if err := s.categoryRepo.Update(ctx, &existing); err != nil {
		logger.Error("Failed to update category", err)
		return domain.Category{}, err
	}

	return existing, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uint64) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete category", err)
		return err
	}

	return nil
}
