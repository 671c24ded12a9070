package orders

import (
	"context"
	"strings"

	"shopsphere/domain"
	"shopsphere/pkg/logger"

	"github.com/google/uuid"
)

// OrdersRepository contract interface
type OrdersRepository interface {
	CreateWithStockDecrement(ctx context.Context, order *domain.Order) error
	CancelWithStockRestore(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (domain.Order, error)
	FindByUser(ctx context.Context, userID uint, page, limit int) ([]domain.Order, int64, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
}

// ProductRepository contract interface
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
}

// Tracker records behavior events without blocking the request path.
type Tracker interface {
	Track(userID uint, eventType string, productID uint64, eventData map[string]any)
}

// CartItem is one requested order line.
type CartItem struct {
	ProductID uint64 `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

var validStatuses = map[string]bool{
	domain.OrderStatusPending:    true,
	domain.OrderStatusConfirmed:  true,
	domain.OrderStatusProcessing: true,
	domain.OrderStatusShipped:    true,
	domain.OrderStatusDelivered:  true,
	domain.OrderStatusCancelled:  true,
}

// cancellableStatuses are the statuses a customer may still back out of.
var cancellableStatuses = map[string]bool{
	domain.OrderStatusPending:   true,
	domain.OrderStatusConfirmed: true,
}

type ordersService struct {
	ordersRepo  OrdersRepository
	productRepo ProductRepository
	tracker     Tracker
}

func NewOrdersService(ordersRepo OrdersRepository, productRepo ProductRepository, tracker Tracker) *ordersService {
	return &ordersService{
		ordersRepo:  ordersRepo,
		productRepo: productRepo,
		tracker:     tracker,
	}
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8]) + "-" + uuid.NewString()[24:]
}

// CreateOrder prices the cart against current catalog prices and commits the
// order and its stock decrements atomically. Any line with insufficient stock
// rolls the whole order back.
func (s *ordersService) CreateOrder(ctx context.Context, userID uint, items []CartItem, paymentMethod string) (domain.Order, error) {
	if len(items) == 0 {
		return domain.Order{}, domain.NewBadRequest("order must contain at least one item")
	}

	seen := make(map[uint64]bool, len(items))
	orderItems := make([]domain.OrderItem, 0, len(items))
	total := 0.0

	for _, item := range items {
		if item.Quantity < 1 {
			return domain.Order{}, domain.NewBadRequest("quantity must be at least 1")
		}
		if seen[item.ProductID] {
			return domain.Order{}, domain.NewBadRequest("duplicate product %d in order", item.ProductID)
		}
		seen[item.ProductID] = true

		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return domain.Order{}, err
		}

		subtotal := product.Price * float64(item.Quantity)
		orderItems = append(orderItems, domain.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			PriceEach: product.Price,
			Subtotal:  subtotal,
		})
		total += subtotal
	}

	order := domain.Order{
		OrderNumber:   newOrderNumber(),
		UserID:        userID,
		Status:        domain.OrderStatusPending,
		Total:         total,
		PaymentMethod: paymentMethod,
		Items:         orderItems,
	}

	if err := s.ordersRepo.CreateWithStockDecrement(ctx, &order); err != nil {
		logger.Error("Failed to create order", err)
		return domain.Order{}, err
	}

	for _, item := range order.Items {
		s.tracker.Track(userID, domain.EventPurchase, item.ProductID, map[string]any{
			"order_id": order.ID,
			"quantity": item.Quantity,
			"price":    item.PriceEach,
		})
	}

	logger.Info("order created", "order_number", order.OrderNumber, "user_id", userID, "total", total)
	return order, nil
}

func (s *ordersService) GetOrder(ctx context.Context, id uint64, userID uint, isAdmin bool) (domain.Order, error) {
	order, err := s.ordersRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	if !isAdmin && order.UserID != userID {
		return domain.Order{}, domain.NewForbidden("order does not belong to this user")
	}

	return order, nil
}

func (s *ordersService) ListOrders(ctx context.Context, userID uint, page, limit int) ([]domain.Order, domain.PageMeta, error) {
	orders, total, err := s.ordersRepo.FindByUser(ctx, userID, page, limit)
	if err != nil {
		logger.Error("Failed to list orders", err)
		return nil, domain.PageMeta{}, err
	}

	return orders, domain.NewPageMeta(page, limit, int(total)), nil
}

// CancelOrder restores stock for every line as part of the same transaction
// that flips the status.
func (s *ordersService) CancelOrder(ctx context.Context, id uint64, userID uint, isAdmin bool) (domain.Order, error) {
	order, err := s.ordersRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	if !isAdmin && order.UserID != userID {
		return domain.Order{}, domain.NewForbidden("order does not belong to this user")
	}

	if order.Status == domain.OrderStatusCancelled {
		return order, nil
	}
	if !cancellableStatuses[order.Status] {
		return domain.Order{}, domain.NewBadRequest("order in status %q cannot be cancelled", order.Status)
	}

	if err := s.ordersRepo.CancelWithStockRestore(ctx, &order); err != nil {
		logger.Error("Failed to cancel order", err)
		return domain.Order{}, err
	}

	order.Status = domain.OrderStatusCancelled
	return order, nil
}

func (s *ordersService) UpdateOrderStatus(ctx context.Context, id uint64, status string) (domain.Order, error) {
	if !validStatuses[status] {
		return domain.Order{}, domain.NewBadRequest("invalid order status %q", status)
	}
	if status == domain.OrderStatusCancelled {
		return domain.Order{}, domain.NewBadRequest("use the cancel endpoint to cancel an order")
	}

	order, err := s.ordersRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	if order.Status == domain.OrderStatusCancelled {
		return domain.Order{}, domain.NewBadRequest("cancelled orders cannot change status")
	}

	if err := s.ordersRepo.UpdateStatus(ctx, id, status); err != nil {
		logger.Error("Failed to update order status", err)
		return domain.Order{}, err
	}

	order.Status = status
	return order, nil
}
