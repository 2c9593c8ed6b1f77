package postgres

import (
	"context"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *contactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.ContactRequest) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *contactRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContactRequest, error) {
	var contact domain.ContactRequest
	err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, domain.ErrContactNotFound)
	}
	return &contact, nil
}

func (r *contactRepository) List(ctx context.Context, filter domain.ContactFilter) ([]*domain.ContactRequest, error) {
	query := r.db.WithContext(ctx)
	if filter.Read != nil {
		query = query.Where("read = ?", *filter.Read)
	}

	var contacts []*domain.ContactRequest
	if err := query.Order("created_at DESC").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *contactRepository) SetRead(ctx context.Context, id uuid.UUID, read bool) (*domain.ContactRequest, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.ContactRequest{}).
		Where("id = ?", id).
		Update("read", read)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrContactNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *contactRepository) SetNotification(ctx context.Context, id uuid.UUID, outcome []byte) error {
	return r.db.WithContext(ctx).
		Model(&domain.ContactRequest{}).
		Where("id = ?", id).
		Update("notification", datatypes.JSON(outcome)).Error
}

func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.ContactRequest{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}
