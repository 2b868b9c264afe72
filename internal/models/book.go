package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Book is a catalog entry. Optional attributes are pointers so that unset
// values stay NULL in the database and are omitted from responses.
type Book struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"type:varchar(255);index" validate:"required,max=255"`
	Author      string          `json:"author" gorm:"type:varchar(255);index" validate:"required,max=255"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity    int             `json:"quantity" gorm:"not null;default:0" validate:"gte=0"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	ISBN        *string         `json:"isbn,omitempty" gorm:"type:varchar(20)" validate:"omitempty,max=20"`
	ImageURL    *string         `json:"image_url,omitempty" validate:"omitempty,url"`
	Year        *int            `json:"year,omitempty" validate:"omitempty,gte=0,lte=9999"`
	Genres      []string        `json:"genres,omitempty" gorm:"serializer:json"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}
