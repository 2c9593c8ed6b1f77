package postgres_test

import (
	"context"
	"testing"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/dom/jbf-storefront/internal/repository/postgres"
	"github.com/dom/jbf-storefront/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_CreateConstraints(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewProductRepository(testDB.DB)
	ctx := context.Background()

	category := testutil.NewCategoryBuilder().Build(t, testDB.DB)
	testutil.NewProductBuilder().WithSlug("taken").Build(t, testDB.DB)
	missing := uuid.New()

	tests := []struct {
		name    string
		product *domain.Product
		wantErr error
		field   string
	}{
		{
			name:    "valid with category",
			product: &domain.Product{Name: "Ball", Description: "d", Price: 10, Slug: "ball", CategoryID: &category.ID, IsActive: true},
		},
		{
			name:    "duplicate slug",
			product: &domain.Product{Name: "Other", Description: "d", Slug: "taken"},
			wantErr: domain.ErrProductSlugExists,
		},
		{
			name:    "unknown category",
			product: &domain.Product{Name: "Orphan", Description: "d", Slug: "orphan", CategoryID: &missing},
			wantErr: domain.ErrValidation,
			field:   "categoryId",
		},
		{
			name:    "price beyond column precision",
			product: &domain.Product{Name: "Yacht", Description: "d", Slug: "yacht", Price: 123456789},
			wantErr: domain.ErrValidation,
			field:   "price",
		},
		{
			name:    "negative price",
			product: &domain.Product{Name: "Cheap", Description: "d", Slug: "cheap", Price: -0.01},
			wantErr: domain.ErrValidation,
			field:   "price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.product)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, tt.product.ID)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.field != "" {
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Fields[0].Field)
			}
		})
	}
}

func TestProductRepository_List(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewProductRepository(testDB.DB)
	ctx := context.Background()

	tennis := testutil.NewCategoryBuilder().Build(t, testDB.DB)
	first := testutil.NewProductBuilder().WithCategory(tennis).Promo().Build(t, testDB.DB)
	second := testutil.NewProductBuilder().WithCategory(tennis).Build(t, testDB.DB)
	third := testutil.NewProductBuilder().Promo().Inactive().Build(t, testDB.DB)

	yes, no := true, false

	tests := []struct {
		name   string
		filter domain.ProductFilter
		want   []uuid.UUID
	}{
		{"no filter newest first", domain.ProductFilter{}, []uuid.UUID{third.ID, second.ID, first.ID}},
		{"promo", domain.ProductFilter{IsPromo: &yes}, []uuid.UUID{third.ID, first.ID}},
		{"active", domain.ProductFilter{IsActive: &yes}, []uuid.UUID{second.ID, first.ID}},
		{"inactive", domain.ProductFilter{IsActive: &no}, []uuid.UUID{third.ID}},
		{"category", domain.ProductFilter{CategoryID: &tennis.ID}, []uuid.UUID{second.ID, first.ID}},
		{"promo and active and category", domain.ProductFilter{IsPromo: &yes, IsActive: &yes, CategoryID: &tennis.ID}, []uuid.UUID{first.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)

			var got []uuid.UUID
			for _, p := range products {
				got = append(got, p.ID)
				if p.CategoryID != nil {
					require.NotNil(t, p.Category, "category is joined")
					assert.Equal(t, *p.CategoryID, p.Category.ID)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewProductRepository(testDB.DB)
	ctx := context.Background()

	product := testutil.NewProductBuilder().Promo().Build(t, testDB.DB)
	testutil.NewProductBuilder().WithSlug("other").Build(t, testDB.DB)

	product.IsPromo = false
	product.IsActive = false
	product.Price = 0
	require.NoError(t, repo.Update(ctx, product))

	got, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPromo)
	assert.False(t, got.IsActive)
	assert.Equal(t, 0.0, got.Price)

	taken, err := repo.SlugTaken(ctx, "other", &product.ID)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.SlugTaken(ctx, product.Slug, &product.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	product.Slug = "other"
	assert.ErrorIs(t, repo.Update(ctx, product), domain.ErrProductSlugExists)

	require.NoError(t, repo.Delete(ctx, product.ID))
	assert.ErrorIs(t, repo.Delete(ctx, product.ID), domain.ErrNotFound)
	_, err = repo.GetByID(ctx, product.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
