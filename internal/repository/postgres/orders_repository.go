package postgres

import (
	"context"
	"errors"
	"fmt"

	"shopsphere/domain"

	"gorm.io/gorm"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{DB: db}
}

// CreateWithStockDecrement creates the order, its items, and decrements the
// stock of every ordered product inside one transaction. Any failing stock
// decrement (including going negative) rolls the whole order back.
func (r *OrdersRepository) CreateWithStockDecrement(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			result := tx.Model(&domain.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return fmt.Errorf("failed to decrement stock for product %d: %w", item.ProductID, result.Error)
			}
			if result.RowsAffected == 0 {
				return domain.NewBadRequest("insufficient stock for product %d", item.ProductID)
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		return nil
	})
}

// CancelWithStockRestore flips the order to cancelled and restores the stock
// of its items in one transaction.
func (r *OrdersRepository) CancelWithStockRestore(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Order{}).
			Where("id = ? AND status IN ?", order.ID, []string{domain.OrderStatusPending, domain.OrderStatusConfirmed}).
			Update("status", domain.OrderStatusCancelled)
		if result.Error != nil {
			return fmt.Errorf("failed to cancel order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewBadRequest("order %d cannot be cancelled", order.ID)
		}

		for _, item := range order.Items {
			err := tx.Model(&domain.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to restore stock for product %d: %w", item.ProductID, err)
			}
		}

		return nil
	})
}

func (r *OrdersRepository) FindByID(ctx context.Context, id uint64) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, fmt.Errorf("context error: %w", err)
	}

	var order domain.Order
	err := r.DB.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, domain.NewNotFound("order %d not found", id)
		}
		return domain.Order{}, fmt.Errorf("failed to find order: %w", err)
	}

	return order, nil
}

func (r *OrdersRepository) FindByUser(ctx context.Context, userID uint, page, limit int) ([]domain.Order, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var orders []domain.Order
	err := q.Preload("Items").Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find orders: %w", err)
	}

	return orders, total, nil
}

// ProductIDsInStatuses returns the distinct product ids appearing in the
// user's orders with any of the given statuses.
func (r *OrdersRepository) ProductIDsInStatuses(ctx context.Context, userID uint, statuses []string) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uint64
	err := r.DB.WithContext(ctx).
		Model(&domain.OrderItem{}).
		Distinct("order_items.product_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status IN ?", userID, statuses).
		Pluck("order_items.product_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find ordered product ids: %w", err)
	}

	return ids, nil
}

func (r *OrdersRepository) UpdateStatus(ctx context.Context, id uint64, status string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFound("order %d not found", id)
	}

	return nil
}
