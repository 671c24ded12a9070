package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EventProductView  = "product_view"
	EventSearchQuery  = "search_query"
	EventAddToCart    = "add_to_cart"
	EventRemoveCart   = "remove_from_cart"
	EventPurchase     = "purchase"
	EventWishlistAdd  = "wishlist_add"
	EventFavoriteAdd  = "favorite_add"
	EventCategoryView = "category_view"
	EventProductClick = "product_click"
)

var ValidEventTypes = map[string]bool{
	EventProductView:  true,
	EventSearchQuery:  true,
	EventAddToCart:    true,
	EventRemoveCart:   true,
	EventPurchase:     true,
	EventWishlistAdd:  true,
	EventFavoriteAdd:  true,
	EventCategoryView: true,
	EventProductClick: true,
}

// BehaviorEvent is a single user interaction. EventData carries the product
// attributes observed at event time (price, category, tags).
type BehaviorEvent struct {
	ID        uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint              `gorm:"column:user_id;index;not null" json:"user_id"`
	EventType string            `gorm:"column:event_type;index;not null" json:"event_type"`
	ProductID uint64            `gorm:"column:product_id;index" json:"product_id,omitempty"`
	EventData datatypes.JSONMap `gorm:"column:event_data" json:"event_data,omitempty"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}

func (BehaviorEvent) TableName() string {
	return "behavior_events"
}

// InteractionSummary aggregates one user's events against one product.
type InteractionSummary struct {
	ProductID uint64
	Count     int
	LastSeen  time.Time
}

// ProductInteractionCounts aggregates a cohort's events against one product.
type ProductInteractionCounts struct {
	ProductID         uint64
	DistinctUserCount int
	TotalInteractions int
}

// TrendingCounts holds per-product event counts over a trailing window.
type TrendingCounts struct {
	ProductID uint64
	Views     int
	Purchases int
	CartAdds  int
}
