package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *productRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
	return translateProductError(err)
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, domain.ErrProductNotFound)
	}
	return &product, nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Preload("Category").First(&product, "slug = ?", slug).Error
	if err != nil {
		return nil, notFound(err, domain.ErrProductNotFound)
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	query := r.db.WithContext(ctx).Preload("Category")
	if filter.IsPromo != nil {
		query = query.Where("is_promo = ?", *filter.IsPromo)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var products []*domain.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&domain.Product{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepository) Similar(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("category_id = ? AND is_active = ? AND id <> ?", categoryID, true, excludeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":             product.Name,
			"description":      product.Description,
			"content":          product.Content,
			"price":            product.Price,
			"image_url":        product.ImageURL,
			"image_storage_id": product.ImageStorageID,
			"slug":             product.Slug,
			"category_id":      product.CategoryID,
			"is_promo":         product.IsPromo,
			"is_active":        product.IsActive,
		})
	if err := translateProductError(result.Error); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// numericOverflow is the SQLSTATE for a value outside a numeric column's precision.
const numericOverflow = "22003"

func translateProductError(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrProductSlugExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.NewValidationError("categoryId", "category does not exist")
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return domain.NewValidationError("price", "must be zero or greater")
	case errors.As(err, &pgErr) && pgErr.Code == numericOverflow:
		return domain.NewValidationError("price", fmt.Sprintf("must be %.2f or less", domain.MaxPrice))
	default:
		return err
	}
}
