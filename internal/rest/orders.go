package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"shopsphere/business/orders"
	"shopsphere/domain"
	"shopsphere/pkg/logger"
	jsonres "shopsphere/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type OrdersService interface {
	CreateOrder(ctx context.Context, userID uint, items []orders.CartItem, paymentMethod string) (domain.Order, error)
	GetOrder(ctx context.Context, id uint64, userID uint, isAdmin bool) (domain.Order, error)
	ListOrders(ctx context.Context, userID uint, page, limit int) ([]domain.Order, domain.PageMeta, error)
	CancelOrder(ctx context.Context, id uint64, userID uint, isAdmin bool) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint64, status string) (domain.Order, error)
}

type OrdersHandler struct {
	ordersService OrdersService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewOrdersHandler(ordersService OrdersService) *OrdersHandler {
	return &OrdersHandler{
		ordersService: ordersService,
		validator:     validator.New(),
		timeout:       10 * time.Second,
	}
}

type CreateOrderRequest struct {
	Items         []orders.CartItem `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrdersHandler) Create(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate order request", err)
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.CreateOrder(ctx, userID, req.Items, req.PaymentMethod)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.OK(http.StatusCreated, order))
}

func (h *OrdersHandler) Get(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid order id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.GetOrder(ctx, id, userID, callerIsAdmin(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, order))
}

func (h *OrdersHandler) List(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	orderList, meta, err := h.ordersService.ListOrders(ctx, userID, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated(http.StatusOK, orderList, meta))
}

func (h *OrdersHandler) Cancel(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid order id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.CancelOrder(ctx, id, userID, callerIsAdmin(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, order))
}

func (h *OrdersHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.NewBadRequest("invalid order id")
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.UpdateOrderStatus(ctx, id, req.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, order))
}
