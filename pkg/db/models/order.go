package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dairylicious/dairyshop-backend/pkg/enums"
	"github.com/dairylicious/dairyshop-backend/pkg/types"
)

// Order captures an immutable checkout snapshot for a user.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	ShippingAddress types.Address     `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod   string            `gorm:"column:payment_method;not null;default:'card'"`
	Subtotal        decimal.Decimal   `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Tax             decimal.Decimal   `gorm:"column:tax;type:numeric(10,2);not null"`
	ShippingFee     decimal.Decimal   `gorm:"column:shipping_fee;type:numeric(10,2);not null"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
