package scraper

import (
	"context"
	"net/url"
	"time"

	"shopsphere/domain"
	"shopsphere/pkg/logger"

	"github.com/google/uuid"
)

const (
	minIntervalSecs     = 60
	defaultIntervalSecs = 3600
)

// ScraperRepository contract interface
type ScraperRepository interface {
	Create(ctx context.Context, job *domain.ScraperJob) error
	FindByID(ctx context.Context, id string) (domain.ScraperJob, error)
	FindAll(ctx context.Context) ([]domain.ScraperJob, error)
	FindDue(ctx context.Context, now time.Time) ([]domain.ScraperJob, error)
	Update(ctx context.Context, job *domain.ScraperJob) error
	Delete(ctx context.Context, id string) error
	SavePricePoint(ctx context.Context, point *domain.PricePoint) error
	PriceHistory(ctx context.Context, jobID string, limit int) ([]domain.PricePoint, error)
}

// ProductRepository contract interface
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	UpdatePrice(ctx context.Context, id uint64, price float64) error
}

type scraperService struct {
	scraperRepo ScraperRepository
	productRepo ProductRepository
}

func NewScraperService(scraperRepo ScraperRepository, productRepo ProductRepository) *scraperService {
	return &scraperService{
		scraperRepo: scraperRepo,
		productRepo: productRepo,
	}
}

func (s *scraperService) CreateJob(ctx context.Context, job *domain.ScraperJob) (domain.ScraperJob, error) {
	parsed, err := url.Parse(job.SourceURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return domain.ScraperJob{}, domain.NewBadRequest("source_url must be a valid http(s) url")
	}
	if job.PriceSelector == "" {
		return domain.ScraperJob{}, domain.NewBadRequest("price_selector is required")
	}
	if job.IntervalSecs == 0 {
		job.IntervalSecs = defaultIntervalSecs
	}
	if job.IntervalSecs < minIntervalSecs {
		return domain.ScraperJob{}, domain.NewBadRequest("interval_secs must be at least %d", minIntervalSecs)
	}

	if _, err := s.productRepo.FindByID(ctx, job.ProductID); err != nil {
		return domain.ScraperJob{}, err
	}

	job.ID = uuid.NewString()
	job.Status = domain.ScraperJobActive
	job.FailCount = 0

	if err := s.scraperRepo.Create(ctx, job); err != nil {
		logger.Error("Failed to create scraper job", err)
		return domain.ScraperJob{}, err
	}

	return *job, nil
}

func (s *scraperService) GetJob(ctx context.Context, id string) (domain.ScraperJob, error) {
	return s.scraperRepo.FindByID(ctx, id)
}

func (s *scraperService) ListJobs(ctx context.Context) ([]domain.ScraperJob, error) {
	jobs, err := s.scraperRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to list scraper jobs", err)
		return nil, err
	}

	return jobs, nil
}

// SetJobStatus pauses or resumes a job. Resuming a failed job resets its
// fail count.
func (s *scraperService) SetJobStatus(ctx context.Context, id, status string) (domain.ScraperJob, error) {
	if status != domain.ScraperJobActive && status != domain.ScraperJobPaused {
		return domain.ScraperJob{}, domain.NewBadRequest("status must be %q or %q", domain.ScraperJobActive, domain.ScraperJobPaused)
	}

	job, err := s.scraperRepo.FindByID(ctx, id)
	if err != nil {
		return domain.ScraperJob{}, err
	}

	job.Status = status
	if status == domain.ScraperJobActive {
		job.FailCount = 0
	}

	if err := s.scraperRepo.Update(ctx, &job); err != nil {
		logger.Error("Failed to update scraper job", err)
		return domain.ScraperJob{}, err
	}

	return job, nil
}

func (s *scraperService) DeleteJob(ctx context.Context, id string) error {
	if err := s.scraperRepo.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete scraper job", err)
		return err
	}

	return nil
}

func (s *scraperService) PriceHistory(ctx context.Context, jobID string, limit int) ([]domain.PricePoint, error) {
	if _, err := s.scraperRepo.FindByID(ctx, jobID); err != nil {
		return nil, err
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	points, err := s.scraperRepo.PriceHistory(ctx, jobID, limit)
	if err != nil {
		logger.Error("Failed to load price history", err)
		return nil, err
	}

	return points, nil
}
