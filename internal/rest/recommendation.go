package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"shopsphere/domain"
	jsonres "shopsphere/pkg/response"

	"github.com/labstack/echo/v4"
)

type RecommendationService interface {
	GetPersonalized(ctx context.Context, userID uint, page, limit int) ([]domain.ScoredProduct, domain.PageMeta, error)
	GetRecommendedForYou(ctx context.Context, userID uint, page, limit int) ([]domain.ScoredProduct, domain.PageMeta, error)
	GetSimilar(ctx context.Context, productID uint64, page, limit int) ([]domain.ScoredProduct, domain.PageMeta, error)
	GetTrending(ctx context.Context, page, limit int) ([]domain.ScoredProduct, domain.PageMeta, error)
}

type RecommendationHandler struct {
	recoService RecommendationService
	timeout     time.Duration
}

func NewRecommendationHandler(recoService RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		recoService: recoService,
		timeout:     10 * time.Second,
	}
}

func (h *RecommendationHandler) Personalized(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, meta, err := h.recoService.GetPersonalized(ctx, userID, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated(http.StatusOK, products, meta))
}

func (h *RecommendationHandler) ForYou(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, meta, err := h.recoService.GetRecommendedForYou(ctx, userID, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated(http.StatusOK, products, meta))
}

func (h *RecommendationHandler) Similar(c echo.Context) error {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid product id")
	}

	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, meta, err := h.recoService.GetSimilar(ctx, productID, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated(http.StatusOK, products, meta))
}

func (h *RecommendationHandler) Trending(c echo.Context) error {
	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, meta, err := h.recoService.GetTrending(ctx, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated(http.StatusOK, products, meta))
}
