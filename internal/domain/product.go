package domain

import (
	"time"

	"github.com/google/uuid"
)

// SimilarProductsLimit caps the related products shown next to a product.
const SimilarProductsLimit = 3

// MaxPrice is the largest value the decimal(10,2) price column holds.
const MaxPrice = 99999999.99

type Product struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name           string     `json:"name" gorm:"not null"`
	Description    string     `json:"description" gorm:"not null"`
	Content        *string    `json:"content" gorm:"type:text"`
	Price          float64    `json:"price" gorm:"type:decimal(10,2);not null;check:price >= 0"`
	ImageURL       string     `json:"imageUrl"`
	ImageStorageID *string    `json:"imageStorageId"`
	Slug           string     `json:"slug" gorm:"uniqueIndex;not null"`
	CategoryID     *uuid.UUID `json:"categoryId" gorm:"type:uuid;index"`
	Category       *Category  `json:"category" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	IsPromo        bool       `json:"isPromo" gorm:"not null"`
	IsActive       bool       `json:"isActive" gorm:"not null"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ProductFilter fields are optional and combined with AND.
type ProductFilter struct {
	IsPromo    *bool
	IsActive   *bool
	CategoryID *uuid.UUID
}
