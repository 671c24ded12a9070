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

type CategoryService interface {
	CreateCategory(ctx context.Context, category *domain.Category) (domain.Category, error)
	GetCategory(ctx context.Context, id uint64) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, id uint64, name string) (domain.Category, error)
	DeleteCategory(ctx context.Context, id uint64) error
}

type CategoryHandler struct {
	categoryService CategoryService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewCategoryHandler(categoryService CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		validator:       validator.New(),
		timeout:         10 * time.Second,
	}
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *CategoryHandler) Create(c echo.Context) error {
	var req CategoryRequest

	if err := c.Bind(&req); err != nil {
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	category, err := h.categoryService.CreateCategory(ctx, &domain.Category{Name: req.Name})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.OK(http.StatusCreated, category))
}

func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid category id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	category, err := h.categoryService.GetCategory(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, category))
}

func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	categories, err := h.categoryService.ListCategories(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, categories))
}

func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid category id")
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	category, err := h.categoryService.UpdateCategory(ctx, id, req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, category))
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid category id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.categoryService.DeleteCategory(ctx, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, map[string]interface{}{
		"message": "Category deleted successfully",
	}))
}
