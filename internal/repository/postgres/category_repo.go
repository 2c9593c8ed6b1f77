package postgres

import (
	"context"
	"errors"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *categoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	err := r.db.WithContext(ctx).Create(category).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrCategoryExists
	}
	return err
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	var category domain.Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, domain.ErrCategoryNotFound)
	}
	return &category, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var category domain.Category
	err := r.db.WithContext(ctx).First(&category, "slug = ?", slug).Error
	if err != nil {
		return nil, notFound(err, domain.ErrCategoryNotFound)
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, filter domain.CategoryFilter) ([]*domain.Category, error) {
	query := r.db.WithContext(ctx)
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var categories []*domain.Category
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindConflict(ctx context.Context, name, slug string, excludeID *uuid.UUID) (*domain.Category, error) {
	query := r.db.WithContext(ctx).Where("(name = ? OR slug = ?)", name, slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var category domain.Category
	err := query.Take(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]any{
			"name":        category.Name,
			"slug":        category.Slug,
			"description": category.Description,
			"image_url":   category.ImageURL,
			"is_active":   category.IsActive,
		})
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return domain.ErrCategoryExists
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// Delete locks the category row before counting dependents, so a product
// insert referencing it waits on the lock and then fails its foreign key.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category domain.Category
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&category, "id = ?", id).Error
		if err != nil {
			return notFound(err, domain.ErrCategoryNotFound)
		}

		var dependents int64
		if err := tx.Model(&domain.Product{}).Where("category_id = ?", id).Count(&dependents).Error; err != nil {
			return err
		}
		if dependents > 0 {
			return domain.ErrCategoryHasProducts
		}

		return tx.Delete(&domain.Category{}, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return domain.ErrCategoryHasProducts
	}
	return err
}

func (r *categoryRepository) ActiveProducts(ctx context.Context, categoryIDs []uuid.UUID) ([]domain.ProductSummary, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	var products []domain.ProductSummary
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Select("id", "name", "slug", "image_url", "price", "category_id").
		Where("category_id IN ? AND is_active = ?", categoryIDs, true).
		Order("created_at DESC").
		Scan(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
