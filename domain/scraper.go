package domain

import "time"

const (
	ScraperJobActive = "active"
	ScraperJobPaused = "paused"
	ScraperJobFailed = "failed"
)

// ScraperJob polls an external page for a product's price.
type ScraperJob struct {
	ID            string     `gorm:"primaryKey;type:uuid" json:"id"`
	ProductID     uint64     `gorm:"column:product_id;index;not null" json:"product_id"`
	SourceURL     string     `gorm:"column:source_url;type:text;not null" json:"source_url"`
	PriceSelector string     `gorm:"column:price_selector;type:text;not null" json:"price_selector"`
	IntervalSecs  int        `gorm:"column:interval_secs;default:3600" json:"interval_secs"`
	Status        string     `gorm:"column:status;default:active;index" json:"status"`
	LastPrice     float64    `gorm:"column:last_price;type:numeric" json:"last_price"`
	LastRunAt     *time.Time `gorm:"column:last_run_at" json:"last_run_at,omitempty"`
	FailCount     int        `gorm:"column:fail_count;default:0" json:"fail_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (ScraperJob) TableName() string {
	return "scraper_jobs"
}

// PricePoint is one observed price for a job run.
type PricePoint struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID     string    `gorm:"column:job_id;type:uuid;index;not null" json:"job_id"`
	ProductID uint64    `gorm:"column:product_id;index;not null" json:"product_id"`
	Price     float64   `gorm:"column:price;type:numeric" json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

func (PricePoint) TableName() string {
	return "price_points"
}
