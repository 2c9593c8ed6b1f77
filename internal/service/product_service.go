package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/dom/jbf-storefront/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	logger       *zap.Logger
}

func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// ProductInput is used for create and update. On create a nil IsActive means
// true and a nil IsPromo false; on update nil flags keep their current values.
type ProductInput struct {
	Name           string     `json:"name" validate:"required,max=200"`
	Description    string     `json:"description" validate:"required,max=500"`
	Content        *string    `json:"content" validate:"omitempty,max=20000"`
	Price          float64    `json:"price" validate:"gte=0,lte=99999999.99"`
	ImageURL       string     `json:"imageUrl" validate:"max=2048"`
	ImageStorageID *string    `json:"imageStorageId" validate:"omitempty,max=255"`
	Slug           string     `json:"slug" validate:"required,max=120,slug"`
	CategoryID     *uuid.UUID `json:"categoryId"`
	IsPromo        *bool      `json:"isPromo"`
	IsActive       *bool      `json:"isActive"`
}

func (in *ProductInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Content = trimmed(in.Content)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.ImageStorageID = trimmed(in.ImageStorageID)
	if !math.IsInf(in.Price, 0) && !math.IsNaN(in.Price) {
		in.Price = math.Round(in.Price*100) / 100
	}
	in.Slug = resolveSlug(in.Slug, in.Name)
	if in.CategoryID != nil && *in.CategoryID == uuid.Nil {
		in.CategoryID = nil
	}
}

func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	return s.productRepo.List(ctx, filter)
}

// Get looks a product up by id or slug. Inactive products are reported as
// not found unless includeInactive is set.
func (s *ProductService) Get(ctx context.Context, idOrSlug string, includeInactive bool) (*domain.Product, error) {
	var (
		product *domain.Product
		err     error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		product, err = s.productRepo.GetByID(ctx, id)
	} else {
		product, err = s.productRepo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !includeInactive {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

// Similar returns up to domain.SimilarProductsLimit other active products of
// the same category, newest first.
func (s *ProductService) Similar(ctx context.Context, idOrSlug string, includeInactive bool) ([]*domain.Product, error) {
	product, err := s.Get(ctx, idOrSlug, includeInactive)
	if err != nil {
		return nil, err
	}
	if product.CategoryID == nil {
		return []*domain.Product{}, nil
	}
	return s.productRepo.Similar(ctx, *product.CategoryID, product.ID, domain.SimilarProductsLimit)
}

func (s *ProductService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	input.normalize()
	if err := derivableSlug(input.Name, input.Slug); err != nil {
		return nil, err
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	taken, err := s.productRepo.SlugTaken(ctx, input.Slug, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrProductSlugExists
	}

	product := &domain.Product{
		Name:           input.Name,
		Description:    input.Description,
		Content:        input.Content,
		Price:          input.Price,
		ImageURL:       input.ImageURL,
		ImageStorageID: input.ImageStorageID,
		Slug:           input.Slug,
		CategoryID:     input.CategoryID,
		IsActive:       true,
	}
	if input.IsPromo != nil {
		product.IsPromo = *input.IsPromo
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created", zap.String("id", product.ID.String()), zap.String("slug", product.Slug))
	return s.productRepo.GetByID(ctx, product.ID)
}

// Update replaces the product's fields. The slug must stay unique among
// other products and the category must exist.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	input.normalize()
	if err := derivableSlug(input.Name, input.Slug); err != nil {
		return nil, err
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	taken, err := s.productRepo.SlugTaken(ctx, input.Slug, &id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrProductSlugExists
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Content = input.Content
	product.Price = input.Price
	product.ImageURL = input.ImageURL
	product.ImageStorageID = input.ImageStorageID
	product.Slug = input.Slug
	product.CategoryID = input.CategoryID
	if input.IsPromo != nil {
		product.IsPromo = *input.IsPromo
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.String("id", id.String()))
	return nil
}

func (s *ProductService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.categoryRepo.GetByID(ctx, *id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewValidationError("categoryId", "category does not exist")
	}
	return err
}
