package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Product struct {
	ID          uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string                      `gorm:"column:name;type:text;not null" json:"name"`
	Description string                      `gorm:"column:description;type:text" json:"description"`
	Category    string                      `gorm:"column:category;type:text;index" json:"category"`
	CategoryID  uint64                      `gorm:"column:category_id;default:0;index" json:"category_id"`
	Tags        datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	Price       float64                     `gorm:"column:price;type:numeric" json:"price"`
	Stock       int                         `gorm:"column:stock;default:0" json:"stock"`
	ImageURL    string                      `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	RatingAvg   float64                     `gorm:"column:rating_avg;default:0" json:"rating_avg"`
	RatingCount int                         `gorm:"column:rating_count;default:0" json:"rating_count"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	DeletedAt   gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// ProductFilter narrows product listing queries.
type ProductFilter struct {
	Category string
	MinPrice float64
	MaxPrice float64
	Search   string
	InStock  bool
}

type Category struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"column:name;type:text;unique;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}
