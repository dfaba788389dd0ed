package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dairylicious/dairyshop-backend/pkg/db/models"
	"github.com/dairylicious/dairyshop-backend/pkg/pagination"
	"github.com/dairylicious/dairyshop-backend/pkg/types"
)

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID              uuid.UUID       `json:"id"`
	Status          string          `json:"status"`
	ShippingAddress types.Address   `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	Items           []OrderItemDTO  `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	Total           decimal.Decimal `json:"total"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItemDTO is one immutable order line.
type OrderItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderListResult bundles one page of orders with pagination metadata.
type OrderListResult struct {
	Orders     []OrderDTO      `json:"orders"`
	Pagination pagination.Meta `json:"pagination"`
}

// NewOrderDTO maps the persisted order into the response payload.
func NewOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:              order.ID,
		Status:          string(order.Status),
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		Items:           make([]OrderItemDTO, 0, len(order.Items)),
		Subtotal:        order.Subtotal,
		Tax:             order.Tax,
		ShippingFee:     order.ShippingFee,
		Total:           order.Total,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	for i := range order.Items {
		item := &order.Items[i]
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		})
	}
	return dto
}

// NewOrderDTOs maps a slice of orders into DTOs.
func NewOrderDTOs(orders []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, *NewOrderDTO(&orders[i]))
	}
	return out
}
