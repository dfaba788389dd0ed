package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/dairylicious/dairyshop-backend/pkg/enums"
)

// Product represents a catalog listing.
type Product struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name           string                `gorm:"column:name;not null"`
	Description    string                `gorm:"column:description;not null"`
	Category       enums.ProductCategory `gorm:"column:category;not null;index"`
	Unit           enums.ProductUnit     `gorm:"column:unit;not null"`
	Price          decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null"`
	CompareAtPrice *decimal.Decimal      `gorm:"column:compare_at_price;type:numeric(10,2)"`
	ImageURL       string                `gorm:"column:image_url;not null;default:''"`
	Stock          int                   `gorm:"column:stock;not null;default:0"`
	Rating         float64               `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	ReviewCount    int                   `gorm:"column:review_count;not null;default:0"`
	Brand          string                `gorm:"column:brand;not null;default:''"`
	ExpiryDays     int                   `gorm:"column:expiry_days;not null;default:0"`
	FatContent     *float64              `gorm:"column:fat_content;type:numeric(4,1)"`
	Volume         string                `gorm:"column:volume;not null;default:''"`
	DietaryTags    pq.StringArray        `gorm:"column:dietary_tags;type:text[]"`
	IsFeatured     bool                  `gorm:"column:is_featured;not null;default:false"`
	IsOrganic      bool                  `gorm:"column:is_organic;not null;default:false"`
	IsActive       bool                  `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// InStock reports whether at least qty units remain available.
func (p Product) InStock(qty int) bool {
	return p.Stock >= qty
}
