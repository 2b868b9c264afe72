package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Only OrderStatusPending is checked by the lifecycle rules;
// other values are stored as given.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// Order is a checked-out cart. TotalPrice and Items are fixed at creation; only Status changes.
type Order struct {
	ID         uint            `gorm:"primaryKey"`
	UserID     uint            `gorm:"index;not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status     string          `gorm:"type:varchar(32);not null"`
	CreatedAt  time.Time       `gorm:"index"`
	UpdatedAt  time.Time
	Items      []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
}

// OrderItem is a line of an order. Price is the book price captured at checkout.
type OrderItem struct {
	ID       uint            `gorm:"primaryKey"`
	OrderID  uint            `gorm:"index;not null"`
	BookID   uint            `gorm:"index;not null"`
	Book     Book            `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity int             `gorm:"not null"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

// Subtotal returns Price × Quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
