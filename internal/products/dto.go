package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dairylicious/dairyshop-backend/pkg/db/models"
	"github.com/dairylicious/dairyshop-backend/pkg/pagination"
)

// ProductDTO represents the catalog payload returned to clients.
type ProductDTO struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Category       string           `json:"category"`
	Unit           string           `json:"unit"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	ImageURL       string           `json:"image_url"`
	Stock          int              `json:"stock"`
	InStock        bool             `json:"in_stock"`
	Rating         float64          `json:"rating"`
	ReviewCount    int              `json:"review_count"`
	Brand          string           `json:"brand,omitempty"`
	ExpiryDays     int              `json:"expiry_days,omitempty"`
	FatContent     *float64         `json:"fat_content,omitempty"`
	Volume         string           `json:"volume,omitempty"`
	DietaryTags    []string         `json:"dietary_tags,omitempty"`
	IsFeatured     bool             `json:"is_featured"`
	IsOrganic      bool             `json:"is_organic"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ProductListResult bundles one page of products with pagination metadata.
type ProductListResult struct {
	Products   []ProductDTO    `json:"products"`
	Pagination pagination.Meta `json:"pagination"`
}

// CategoryDTO describes one catalog category with its product count.
type CategoryDTO struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:             product.ID,
		Name:           product.Name,
		Description:    product.Description,
		Category:       string(product.Category),
		Unit:           string(product.Unit),
		Price:          product.Price,
		CompareAtPrice: product.CompareAtPrice,
		ImageURL:       product.ImageURL,
		Stock:          product.Stock,
		InStock:        product.Stock > 0,
		Rating:         product.Rating,
		ReviewCount:    product.ReviewCount,
		Brand:          product.Brand,
		ExpiryDays:     product.ExpiryDays,
		FatContent:     product.FatContent,
		Volume:         product.Volume,
		DietaryTags:    product.DietaryTags,
		IsFeatured:     product.IsFeatured,
		IsOrganic:      product.IsOrganic,
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
}

// NewProductDTOs maps a slice of models into DTOs.
func NewProductDTOs(products []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, *NewProductDTO(&products[i]))
	}
	return out
}
