package domain

import "time"

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ActiveOrderStatuses are the statuses whose products count as already bought
// when filtering recommended-for-you results.
var ActiveOrderStatuses = []string{
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

type Order struct {
	ID            uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber   string      `gorm:"column:order_number;unique;not null" json:"order_number"`
	UserID        uint        `gorm:"column:user_id;index;not null" json:"user_id"`
	Status        string      `gorm:"column:status;default:pending;index" json:"status"`
	Total         float64     `gorm:"column:total;type:numeric" json:"total"`
	PaymentMethod string      `gorm:"column:payment_method" json:"payment_method"`
	Items         []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint64  `gorm:"column:order_id;index;not null" json:"order_id"`
	ProductID uint64  `gorm:"column:product_id;index;not null" json:"product_id"`
	Quantity  int     `gorm:"column:quantity;not null" json:"quantity"`
	PriceEach float64 `gorm:"column:price_each;type:numeric" json:"price_each"`
	Subtotal  float64 `gorm:"column:subtotal;type:numeric" json:"subtotal"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
