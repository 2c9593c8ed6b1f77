package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminBuilder creates test admins with a builder pattern
type AdminBuilder struct {
	email    string
	name     string
	password string
}

// NewAdminBuilder creates a new AdminBuilder with default values
func NewAdminBuilder() *AdminBuilder {
	return &AdminBuilder{
		email:    fmt.Sprintf("admin_%s@example.com", uuid.New().String()[:8]),
		name:     "Test Admin",
		password: "testpassword123",
	}
}

// WithEmail sets the email
func (b *AdminBuilder) WithEmail(email string) *AdminBuilder {
	b.email = email
	return b
}

// WithName sets the display name
func (b *AdminBuilder) WithName(name string) *AdminBuilder {
	b.name = name
	return b
}

// WithPassword sets the password
func (b *AdminBuilder) WithPassword(password string) *AdminBuilder {
	b.password = password
	return b
}

// Build creates the admin in the database and returns it with the raw password
func (b *AdminBuilder) Build(t *testing.T, db *gorm.DB) (*domain.AdminUser, string) {
	t.Helper()

	// Minimum cost keeps fixtures fast; verification works for any cost.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	admin := &domain.AdminUser{
		Email:        domain.NormalizeEmail(b.email),
		PasswordHash: string(hashedPassword),
		Name:         b.name,
	}

	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	return admin, b.password
}

// LoginResponse matches the API login response
type LoginResponse struct {
	Token string `json:"token"`
	Admin struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"admin"`
}

// BuildAndAuthenticate creates the admin and logs in through the API,
// returning the admin and a bearer token
func (b *AdminBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.AdminUser, string) {
	t.Helper()

	admin, password := b.Build(t, ts.DB.DB)

	body, _ := json.Marshal(map[string]string{
		"email":    admin.Email,
		"password": password,
	})

	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return admin, loginResp.Token
}

// CategoryBuilder creates test categories with a builder pattern
type CategoryBuilder struct {
	name     string
	slug     string
	isActive bool
}

// NewCategoryBuilder creates a new CategoryBuilder with unique defaults
func NewCategoryBuilder() *CategoryBuilder {
	suffix := uuid.New().String()[:8]
	return &CategoryBuilder{
		name:     "Category " + suffix,
		slug:     "category-" + suffix,
		isActive: true,
	}
}

func (b *CategoryBuilder) WithName(name string) *CategoryBuilder {
	b.name = name
	return b
}

func (b *CategoryBuilder) WithSlug(slug string) *CategoryBuilder {
	b.slug = slug
	return b
}

func (b *CategoryBuilder) Inactive() *CategoryBuilder {
	b.isActive = false
	return b
}

// Build creates the category in the database
func (b *CategoryBuilder) Build(t *testing.T, db *gorm.DB) *domain.Category {
	t.Helper()

	category := &domain.Category{
		Name:     b.name,
		Slug:     b.slug,
		IsActive: b.isActive,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}

// ProductBuilder creates test products with a builder pattern
type ProductBuilder struct {
	name     string
	slug     string
	price    float64
	category *domain.Category
	isPromo  bool
	isActive bool
}

// NewProductBuilder creates a new ProductBuilder with unique defaults
func NewProductBuilder() *ProductBuilder {
	suffix := uuid.New().String()[:8]
	return &ProductBuilder{
		name:     "Product " + suffix,
		slug:     "product-" + suffix,
		price:    19.99,
		isActive: true,
	}
}

func (b *ProductBuilder) WithName(name string) *ProductBuilder {
	b.name = name
	return b
}

func (b *ProductBuilder) WithSlug(slug string) *ProductBuilder {
	b.slug = slug
	return b
}

func (b *ProductBuilder) WithPrice(price float64) *ProductBuilder {
	b.price = price
	return b
}

func (b *ProductBuilder) WithCategory(category *domain.Category) *ProductBuilder {
	b.category = category
	return b
}

func (b *ProductBuilder) Promo() *ProductBuilder {
	b.isPromo = true
	return b
}

func (b *ProductBuilder) Inactive() *ProductBuilder {
	b.isActive = false
	return b
}

// Build creates the product in the database
func (b *ProductBuilder) Build(t *testing.T, db *gorm.DB) *domain.Product {
	t.Helper()

	product := &domain.Product{
		Name:        b.name,
		Description: "A product used in tests",
		Price:       b.price,
		ImageURL:    "https://img.example.com/" + b.slug + ".jpg",
		Slug:        b.slug,
		IsPromo:     b.isPromo,
		IsActive:    b.isActive,
	}
	if b.category != nil {
		product.CategoryID = &b.category.ID
	}

	if err := db.Omit("Category").Create(product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product
}

// ContactBuilder creates test contact requests with a builder pattern
type ContactBuilder struct {
	name    string
	email   string
	message string
	read    bool
}

// NewContactBuilder creates a new ContactBuilder with default values
func NewContactBuilder() *ContactBuilder {
	return &ContactBuilder{
		name:    "Test Customer",
		email:   "customer@example.com",
		message: "Do you have this item in stock?",
	}
}

func (b *ContactBuilder) WithName(name string) *ContactBuilder {
	b.name = name
	return b
}

func (b *ContactBuilder) Read() *ContactBuilder {
	b.read = true
	return b
}

// Build creates the contact request in the database
func (b *ContactBuilder) Build(t *testing.T, db *gorm.DB) *domain.ContactRequest {
	t.Helper()

	contact := &domain.ContactRequest{
		Name:    b.name,
		Email:   b.email,
		Message: b.message,
		Read:    b.read,
	}
	if err := db.Create(contact).Error; err != nil {
		t.Fatalf("failed to create contact request: %v", err)
	}
	return contact
}
