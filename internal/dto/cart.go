package dto

import (
	"bookstore/internal/models"

	"github.com/shopspring/decimal"
)

// Cart is the response shape of a cart.
type Cart struct {
	ID     uint            `json:"id"`
	UserID uint            `json:"user_id"`
	Items  []CartItem      `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

// CartItem is the response shape of a cart line.
type CartItem struct {
	ID       uint `json:"id"`
	Quantity int  `json:"quantity"`
	Book     Book `json:"book"`
}

// FromCart shapes a cart; Total is priced at the books' current prices.
func FromCart(c models.Cart) Cart {
	items := make([]CartItem, len(c.Items))
	total := decimal.Zero
	for i, it := range c.Items {
		items[i] = CartItem{ID: it.ID, Quantity: it.Quantity, Book: FromBook(it.Book)}
		total = total.Add(it.Book.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return Cart{ID: c.ID, UserID: c.UserID, Items: items, Total: total}
}
