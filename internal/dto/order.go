package dto

import (
	"time"

	"bookstore/internal/models"

	"github.com/shopspring/decimal"
)

// Order is the response shape of an order.
type Order struct {
	ID         uint            `json:"id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []OrderItem     `json:"items"`
}

// OrderItem is the response shape of an order line.
type OrderItem struct {
	ID       uint            `json:"id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Book     *Book           `json:"book,omitempty"`
}

// FromOrder shapes an order and its items.
func FromOrder(o models.Order) Order {
	items := make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = FromOrderItem(it)
	}
	return Order{
		ID:         o.ID,
		TotalPrice: o.TotalPrice,
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
		Items:      items,
	}
}

// FromOrderItem shapes an order line. The book is left out when it was not loaded.
func FromOrderItem(it models.OrderItem) OrderItem {
	out := OrderItem{
		ID:       it.ID,
		Quantity: it.Quantity,
		Price:    it.Price,
	}
	if it.Book.ID != 0 {
		b := FromBook(it.Book)
		out.Book = &b
	}
	return out
}

// FromOrders shapes a list of orders.
func FromOrders(orders []models.Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = FromOrder(o)
	}
	return out
}
