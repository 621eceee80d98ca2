package models

import "time"

// Product is a shop item converted from a published submission. The product
// type mirrors the format review's book decision.
type Product struct {
	ProductID    int          `gorm:"primaryKey;column:product_id" json:"product_id"`
	SubmissionID int          `gorm:"column:submission_id;unique" json:"submission_id"`
	SKU          string       `gorm:"column:sku;unique" json:"sku"`
	Title        string       `gorm:"column:title" json:"title"`
	ProductType  BookDecision `gorm:"column:product_type" json:"product_type"`
	PriceCents   int          `gorm:"column:price_cents" json:"price_cents"`
	Currency     string       `gorm:"column:currency" json:"currency"`
	IsActive     bool         `gorm:"column:is_active" json:"is_active"`
	CreatedBy    int          `gorm:"column:created_by" json:"created_by"`
	CreatedAt    time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    *time.Time   `gorm:"column:updated_at" json:"updated_at,omitempty"`

	Submission *Submission `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
