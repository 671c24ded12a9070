package domain

import "time"

type Rating struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"column:user_id;index:idx_user_rating,unique;not null" json:"user_id"`
	ProductID uint64    `gorm:"column:product_id;index:idx_user_rating,unique;not null" json:"product_id"`
	Score     int       `gorm:"column:score;not null" json:"score"`
	Review    string    `gorm:"column:review;type:text" json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rating) TableName() string {
	return "ratings"
}
