package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the per-user mutable cart. Version backs optimistic concurrency:
// every mutation that persists the cart bumps it, and saves are conditional
// on the version read.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Version   int        `gorm:"column:version;not null;default:1"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// ItemFor returns the line matching productID, or nil when absent.
func (c *Cart) ItemFor(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// TotalQuantity sums the quantities across every line.
func (c *Cart) TotalQuantity() int {
	total := 0
	for i := range c.Items {
		total += c.Items[i].Quantity
	}
	return total
}
