package domain

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"imageUrl"`
	IsActive    bool      `json:"isActive" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Active products, only loaded on request.
	Products []ProductSummary `json:"products,omitempty" gorm:"-"`
}

// ProductSummary is the product projection embedded in category listings.
type ProductSummary struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	ImageURL   string     `json:"imageUrl"`
	Price      float64    `json:"price"`
	CategoryID *uuid.UUID `json:"-"`
}

type CategoryFilter struct {
	IsActive        *bool
	IncludeProducts bool
}
