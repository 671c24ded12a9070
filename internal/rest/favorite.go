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

type FavoriteService interface {
	AddFavorite(ctx context.Context, userID uint, productID uint64) (domain.Favorite, error)
	ListFavorites(ctx context.Context, userID uint, page, limit int) ([]domain.Product, domain.PageMeta, error)
	RemoveFavorite(ctx context.Context, userID uint, productID uint64) error
}

type FavoriteHandler struct {
	favoriteService FavoriteService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewFavoriteHandler(favoriteService FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		validator:       validator.New(),
		timeout:         10 * time.Second,
	}
}

type FavoriteRequest struct {
	ProductID uint64 `json:"product_id" validate:"required"`
}

func (h *FavoriteHandler) Add(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	var req FavoriteRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	favorite, err := h.favoriteService.AddFavorite(ctx, userID, req.ProductID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.OK(http.StatusCreated, favorite))
}

func (h *FavoriteHandler) List(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, meta, err := h.favoriteService.ListFavorites(ctx, userID, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated(http.StatusOK, products, meta))
}

func (h *FavoriteHandler) Remove(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid product id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.favoriteService.RemoveFavorite(ctx, userID, productID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, map[string]interface{}{
		"message": "Favorite removed successfully",
	}))
}
