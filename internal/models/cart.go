package models

import "time"

// Cart is a user's staging area for books before checkout. Every user has at most one.
type Cart struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	Items     []CartItem `json:"items" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is one book line in a cart. Lines with zero quantity are removed, never stored.
type CartItem struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	CartID   uint `json:"cart_id" gorm:"index;not null"`
	BookID   uint `json:"book_id" gorm:"index;not null"`
	Book     Book `json:"book"`
	Quantity int  `json:"quantity" gorm:"not null"`
}
