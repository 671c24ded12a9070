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

type WishlistService interface {
	CreateWishlist(ctx context.Context, userID uint, name string) (domain.Wishlist, error)
	GetWishlist(ctx context.Context, id uint64, userID uint) (domain.Wishlist, error)
	ListWishlists(ctx context.Context, userID uint) ([]domain.Wishlist, error)
	AddItem(ctx context.Context, wishlistID uint64, userID uint, productID uint64) (domain.WishlistItem, error)
	RemoveItem(ctx context.Context, wishlistID uint64, userID uint, productID uint64) error
	DeleteWishlist(ctx context.Context, id uint64, userID uint) error
}

type WishlistHandler struct {
	wishlistService WishlistService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewWishlistHandler(wishlistService WishlistService) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		validator:       validator.New(),
		timeout:         10 * time.Second,
	}
}

type CreateWishlistRequest struct {
	Name string `json:"name" validate:"required"`
}

type WishlistItemRequest struct {
	ProductID uint64 `json:"product_id" validate:"required"`
}

func (h *WishlistHandler) Create(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	var req CreateWishlistRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	wishlist, err := h.wishlistService.CreateWishlist(ctx, userID, req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.OK(http.StatusCreated, wishlist))
}

func (h *WishlistHandler) Get(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid wishlist id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	wishlist, err := h.wishlistService.GetWishlist(ctx, id, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, wishlist))
}

func (h *WishlistHandler) List(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	wishlists, err := h.wishlistService.ListWishlists(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, wishlists))
}

func (h *WishlistHandler) AddItem(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid wishlist id")
	}

	var req WishlistItemRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	item, err := h.wishlistService.AddItem(ctx, id, userID, req.ProductID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.OK(http.StatusCreated, item))
}

func (h *WishlistHandler) RemoveItem(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid wishlist id")
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid product id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.wishlistService.RemoveItem(ctx, id, userID, productID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, map[string]interface{}{
		"message": "Item removed from wishlist",
	}))
}

func (h *WishlistHandler) Delete(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid wishlist id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.wishlistService.DeleteWishlist(ctx, id, userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, map[string]interface{}{
		"message": "Wishlist deleted successfully",
	}))
}
