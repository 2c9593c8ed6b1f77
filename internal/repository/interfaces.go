package repository

import (
	"context"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/google/uuid"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	Update(ctx context.Context, admin *domain.AdminUser) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context, filter domain.CategoryFilter) ([]*domain.Category, error)
	// FindConflict returns a category other than excludeID sharing name or slug, or nil.
	FindConflict(ctx context.Context, name, slug string, excludeID *uuid.UUID) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	// Delete removes the category unless a product references it.
	Delete(ctx context.Context, id uuid.UUID) error
	// ActiveProducts returns the product projection for the given categories.
	ActiveProducts(ctx context.Context, categoryIDs []uuid.UUID) ([]domain.ProductSummary, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Similar(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ContactRepository interface {
	Create(ctx context.Context, contact *domain.ContactRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ContactRequest, error)
	List(ctx context.Context, filter domain.ContactFilter) ([]*domain.ContactRequest, error)
	SetRead(ctx context.Context, id uuid.UUID, read bool) (*domain.ContactRequest, error)
	SetNotification(ctx context.Context, id uuid.UUID, outcome []byte) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Repositories struct {
	Admin    AdminRepository
	Category CategoryRepository
	Product  ProductRepository
	Contact  ContactRepository
}
