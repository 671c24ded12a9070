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

type RatingService interface {
	CreateRating(ctx context.Context, userID uint, productID uint64, score int, review string) (domain.Rating, error)
	UpdateRating(ctx context.Context, ratingID uint64, userID uint, score int, review string) (domain.Rating, error)
	DeleteRating(ctx context.Context, ratingID uint64, userID uint, isAdmin bool) error
	ListProductRatings(ctx context.Context, productID uint64, page, limit int) ([]domain.Rating, domain.PageMeta, error)
}

type RatingHandler struct {
	ratingService RatingService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewRatingHandler(ratingService RatingService) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		validator:     validator.New(),
		timeout:       10 * time.Second,
	}
}

type CreateRatingRequest struct {
	ProductID uint64 `json:"product_id" validate:"required"`
	Score     int    `json:"score" validate:"required,min=1,max=5"`
	Review    string `json:"review,omitempty"`
}

type UpdateRatingRequest struct {
	Score  int    `json:"score" validate:"required,min=1,max=5"`
	Review string `json:"review,omitempty"`
}

func (h *RatingHandler) Create(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	var req CreateRatingRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rating, err := h.ratingService.CreateRating(ctx, userID, req.ProductID, req.Score, req.Review)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.OK(http.StatusCreated, rating))
}

func (h *RatingHandler) Update(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid rating id")
	}

	var req UpdateRatingRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rating, err := h.ratingService.UpdateRating(ctx, id, userID, req.Score, req.Review)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, rating))
}

func (h *RatingHandler) Delete(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid rating id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.ratingService.DeleteRating(ctx, id, userID, callerIsAdmin(c)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, map[string]interface{}{
		"message": "Rating deleted successfully",
	}))
}

func (h *RatingHandler) ListByProduct(c echo.Context) error {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid product id")
	}

	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	ratings, meta, err := h.ratingService.ListProductRatings(ctx, productID, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated(http.StatusOK, ratings, meta))
}
