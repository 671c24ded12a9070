package domain

import "time"

type Favorite struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"column:user_id;index:idx_user_favorite,unique;not null" json:"user_id"`
	ProductID uint64    `gorm:"column:product_id;index:idx_user_favorite,unique;not null" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}
