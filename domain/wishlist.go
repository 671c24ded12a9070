package domain

import "time"

type Wishlist struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint           `gorm:"column:user_id;index;not null" json:"user_id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Items     []WishlistItem `gorm:"foreignKey:WishlistID" json:"items"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Wishlist) TableName() string {
	return "wishlists"
}

type WishlistItem struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	WishlistID uint64    `gorm:"column:wishlist_id;index:idx_wishlist_product,unique;not null" json:"wishlist_id"`
	ProductID  uint64    `gorm:"column:product_id;index:idx_wishlist_product,unique;not null" json:"product_id"`
	AddedAt    time.Time `gorm:"column:added_at" json:"added_at"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}
