package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"shopsphere/domain"
	"shopsphere/pkg/logger"
	jsonres "shopsphere/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

type ProductService interface {
	CreateProduct(ctx context.Context, product *domain.Product) (domain.Product, error)
	GetProduct(ctx context.Context, id uint64, viewerID uint) (domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter, page, limit int) ([]domain.Product, domain.PageMeta, error)
	UpdateProduct(ctx context.Context, id uint64, updateData *domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id uint64) error
}

type ProductHandler struct {
	productService ProductService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

type ProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	CategoryID  uint64   `json:"category_id,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	ImageURL    string   `json:"image_url,omitempty"`
}

type ProductUpdateRequest struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	CategoryID  uint64   `json:"category_id,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Price       float64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	Stock       int      `json:"stock,omitempty" validate:"omitempty,gte=0"`
	ImageURL    string   `json:"image_url,omitempty"`
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req ProductRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate product request", err)
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.CreateProduct(ctx, &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		CategoryID:  req.CategoryID,
		Tags:        datatypes.NewJSONSlice(req.Tags),
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.OK(http.StatusCreated, product))
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid product id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.GetProduct(ctx, id, callerID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, product))
}

func (h *ProductHandler) List(c echo.Context) error {
	page, limit := pageParams(c)

	filter := domain.ProductFilter{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		InStock:  c.QueryParam("in_stock") == "true",
	}
	if v, err := strconv.ParseFloat(c.QueryParam("min_price"), 64); err == nil && v > 0 {
		filter.MinPrice = v
	}
	if v, err := strconv.ParseFloat(c.QueryParam("max_price"), 64); err == nil && v > 0 {
		filter.MaxPrice = v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, meta, err := h.productService.ListProducts(ctx, filter, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated(http.StatusOK, products, meta))
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid product id")
	}

	var req ProductUpdateRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	update := domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}
	if req.Tags != nil {
		update.Tags = datatypes.NewJSONSlice(req.Tags)
	}

	product, err := h.productService.UpdateProduct(ctx, id, &update)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, product))
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid product id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.productService.DeleteProduct(ctx, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, map[string]interface{}{
		"message": "Product deleted successfully",
	}))
}
