package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"shopsphere/domain"
	jsonres "shopsphere/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ScraperService interface {
	CreateJob(ctx context.Context, job *domain.ScraperJob) (domain.ScraperJob, error)
	GetJob(ctx context.Context, id string) (domain.ScraperJob, error)
	ListJobs(ctx context.Context) ([]domain.ScraperJob, error)
	SetJobStatus(ctx context.Context, id, status string) (domain.ScraperJob, error)
	DeleteJob(ctx context.Context, id string) error
	PriceHistory(ctx context.Context, jobID string, limit int) ([]domain.PricePoint, error)
}

type ScraperHandler struct {
	scraperService ScraperService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewScraperHandler(scraperService ScraperService) *ScraperHandler {
	return &ScraperHandler{
		scraperService: scraperService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

type CreateScraperJobRequest struct {
	ProductID     uint64 `json:"product_id" validate:"required"`
	SourceURL     string `json:"source_url" validate:"required,url"`
	PriceSelector string `json:"price_selector" validate:"required"`
	IntervalSecs  int    `json:"interval_secs,omitempty" validate:"omitempty,min=60"`
}

type ScraperJobStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *ScraperHandler) Create(c echo.Context) error {
	var req CreateScraperJobRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	job, err := h.scraperService.CreateJob(ctx, &domain.ScraperJob{
		ProductID:     req.ProductID,
		SourceURL:     req.SourceURL,
		PriceSelector: req.PriceSelector,
		IntervalSecs:  req.IntervalSecs,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.OK(http.StatusCreated, job))
}

func (h *ScraperHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	job, err := h.scraperService.GetJob(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, job))
}

func (h *ScraperHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	jobs, err := h.scraperService.ListJobs(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, jobs))
}

func (h *ScraperHandler) SetStatus(c echo.Context) error {
	var req ScraperJobStatusRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	job, err := h.scraperService.SetJobStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, job))
}

func (h *ScraperHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.scraperService.DeleteJob(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, map[string]interface{}{
		"message": "Scraper job deleted successfully",
	}))
}

func (h *ScraperHandler) PriceHistory(c echo.Context) error {
	limit := 100
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	points, err := h.scraperService.PriceHistory(ctx, c.Param("id"), limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, points))
}
