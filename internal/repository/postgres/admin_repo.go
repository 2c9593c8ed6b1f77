package postgres

import (
	"context"
	"errors"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *adminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.AdminUser) error {
	admin.Email = domain.NormalizeEmail(admin.Email)
	err := r.db.WithContext(ctx).Create(admin).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAdminExists
	}
	return err
}

func (r *adminRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	var admin domain.AdminUser
	err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, domain.ErrAdminNotFound)
	}
	return &admin, nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	var admin domain.AdminUser
	err := r.db.WithContext(ctx).First(&admin, "email = ?", domain.NormalizeEmail(email)).Error
	if err != nil {
		return nil, notFound(err, domain.ErrAdminNotFound)
	}
	return &admin, nil
}

func (r *adminRepository) Update(ctx context.Context, admin *domain.AdminUser) error {
	admin.Email = domain.NormalizeEmail(admin.Email)
	err := r.db.WithContext(ctx).Save(admin).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAdminExists
	}
	return err
}
