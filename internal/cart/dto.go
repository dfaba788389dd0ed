package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dairylicious/dairyshop-backend/pkg/db/models"
)

// CartDTO is the customer-facing cart payload.
type CartDTO struct {
	ID            uuid.UUID       `json:"id"`
	Items         []CartItemDTO   `json:"items"`
	TotalQuantity int             `json:"total_quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CartItemDTO is one cart line joined with the live product.
type CartItemDTO struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	ImageURL     string          `json:"image_url"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
	Stock        int             `json:"stock"`
	InStock      bool            `json:"in_stock"`
}

// NewCartDTO flattens the persisted cart into the response payload. Lines
// whose product has gone missing or inactive are surfaced with zero stock so
// the client can prompt removal.
func NewCartDTO(cart *models.Cart) *CartDTO {
	dto := &CartDTO{
		ID:        cart.ID,
		Items:     make([]CartItemDTO, 0, len(cart.Items)),
		Subtotal:  decimal.Zero,
		UpdatedAt: cart.UpdatedAt,
	}
	for i := range cart.Items {
		item := &cart.Items[i]
		line := CartItemDTO{
			ProductID:    item.ProductID,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
			LineSubtotal: item.LineSubtotal(),
		}
		if item.Product != nil {
			line.Name = item.Product.Name
			line.ImageURL = item.Product.ImageURL
			line.Unit = string(item.Product.Unit)
			if item.Product.IsActive {
				line.Stock = item.Product.Stock
			}
			line.InStock = line.Stock >= item.Quantity
		}
		dto.Items = append(dto.Items, line)
		dto.TotalQuantity += item.Quantity
		dto.Subtotal = dto.Subtotal.Add(line.LineSubtotal)
	}
	return dto
}
