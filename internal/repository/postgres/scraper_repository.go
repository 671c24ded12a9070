package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopsphere/domain"

	"gorm.io/gorm"
)

type ScraperRepository struct {
	DB *gorm.DB
}

func NewScraperRepository(db *gorm.DB) *ScraperRepository {
	return &ScraperRepository{DB: db}
}

func (r *ScraperRepository) Create(ctx context.Context, job *domain.ScraperJob) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create scraper job: %w", err)
	}

	return nil
}

func (r *ScraperRepository) FindByID(ctx context.Context, id string) (domain.ScraperJob, error) {
	if err := ctx.Err(); err != nil {
		return domain.ScraperJob{}, fmt.Errorf("context error: %w", err)
	}

	var job domain.ScraperJob
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ScraperJob{}, domain.NewNotFound("scraper job %s not found", id)
		}
		return domain.ScraperJob{}, fmt.Errorf("failed to find scraper job: %w", err)
	}

	return job, nil
}

func (r *ScraperRepository) FindAll(ctx context.Context) ([]domain.ScraperJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var jobs []domain.ScraperJob
	if err := r.DB.WithContext(ctx).Order("created_at").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to find scraper jobs: %w", err)
	}

	return jobs, nil
}

// FindDue returns active jobs whose interval has elapsed since their last run.
func (r *ScraperRepository) FindDue(ctx context.Context, now time.Time) ([]domain.ScraperJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var jobs []domain.ScraperJob
	err := r.DB.WithContext(ctx).
		Where("status = ?", domain.ScraperJobActive).
		Where("last_run_at IS NULL OR last_run_at + (interval_secs * INTERVAL '1 second') <= ?", now).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find due scraper jobs: %w", err)
	}

	return jobs, nil
}

func (r *ScraperRepository) Update(ctx context.Context, job *domain.ScraperJob) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Save(job).Error; err != nil {
		return fmt.Errorf("failed to update scraper job: %w", err)
	}

	return nil
}

func (r *ScraperRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.ScraperJob{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete scraper job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFound("scraper job %s not found", id)
	}

	return nil
}

func (r *ScraperRepository) SavePricePoint(ctx context.Context, point *domain.PricePoint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(point).Error; err != nil {
		return fmt.Errorf("failed to save price point: %w", err)
	}

	return nil
}

func (r *ScraperRepository) PriceHistory(ctx context.Context, jobID string, limit int) ([]domain.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 100
	}

	var points []domain.PricePoint
	err := r.DB.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Limit(limit).
		Find(&points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load price history: %w", err)
	}

	return points, nil
}
