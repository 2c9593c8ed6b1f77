package service

import (
	"context"
	"strings"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/dom/jbf-storefront/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
	logger       *zap.Logger
}

func NewCategoryService(categoryRepo repository.CategoryRepository, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{categoryRepo: categoryRepo, logger: logger}
}

// CategoryInput is used for both create and update. A blank slug is derived
// from the name; a nil IsActive means true on create and unchanged on update.
type CategoryInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Slug        string  `json:"slug" validate:"required,max=120,slug"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,max=2048"`
	IsActive    *bool   `json:"isActive"`
}

func (in *CategoryInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = resolveSlug(in.Slug, in.Name)
	in.Description = trimmed(in.Description)
	in.ImageURL = trimmed(in.ImageURL)
}

func (s *CategoryService) List(ctx context.Context, filter domain.CategoryFilter) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if !filter.IncludeProducts || len(categories) == 0 {
		return categories, nil
	}

	if err := s.attachProducts(ctx, categories...); err != nil {
		return nil, err
	}
	return categories, nil
}

// Get looks a category up by id or slug and attaches its active products.
func (s *CategoryService) Get(ctx context.Context, idOrSlug string) (*domain.Category, error) {
	var (
		category *domain.Category
		err      error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		category, err = s.categoryRepo.GetByID(ctx, id)
	} else {
		category, err = s.categoryRepo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachProducts(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	input.normalize()
	if err := derivableSlug(input.Name, input.Slug); err != nil {
		return nil, err
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	// The unique indexes are authoritative; this check only gives a clearer error first.
	conflict, err := s.categoryRepo.FindConflict(ctx, input.Name, input.Slug, nil)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, domain.ErrCategoryExists
	}

	category := &domain.Category{
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		IsActive:    true,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category created", zap.String("id", category.ID.String()), zap.String("slug", category.Slug))
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, input CategoryInput) (*domain.Category, error) {
	input.normalize()
	if err := derivableSlug(input.Name, input.Slug); err != nil {
		return nil, err
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	conflict, err := s.categoryRepo.FindConflict(ctx, input.Name, input.Slug, &id)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, domain.ErrCategoryExists
	}

	category.Name = input.Name
	category.Slug = input.Slug
	category.Description = input.Description
	category.ImageURL = input.ImageURL
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return s.categoryRepo.GetByID(ctx, id)
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("category deleted", zap.String("id", id.String()))
	return nil
}

func (s *CategoryService) attachProducts(ctx context.Context, categories ...*domain.Category) error {
	ids := make([]uuid.UUID, 0, len(categories))
	byID := make(map[uuid.UUID]*domain.Category, len(categories))
	for _, c := range categories {
		c.Products = []domain.ProductSummary{}
		ids = append(ids, c.ID)
		byID[c.ID] = c
	}

	products, err := s.categoryRepo.ActiveProducts(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range products {
		if p.CategoryID == nil {
			continue
		}
		if c, ok := byID[*p.CategoryID]; ok {
			c.Products = append(c.Products, p)
		}
	}
	return nil
}
