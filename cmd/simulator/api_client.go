package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type Admin struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Admin     Admin     `json:"admin"`
}

type ProductSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug"`
	Price float64 `json:"price"`
}

type Category struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Slug     string           `json:"slug"`
	IsActive bool             `json:"isActive"`
	Products []ProductSummary `json:"products"`
}

type Product struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	Price      float64 `json:"price"`
	CategoryID *string `json:"categoryId"`
	IsPromo    bool    `json:"isPromo"`
	IsActive   bool    `json:"isActive"`
}

type Notification struct {
	Status      string `json:"status"`
	AdminEmail  bool   `json:"adminEmail"`
	ClientEmail bool   `json:"clientEmail"`
}

type SubmitResponse struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message"`
	ID           string       `json:"id"`
	Notification Notification `json:"notification"`
}

type ContactRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Read  bool   `json:"read"`
}

// Login exchanges admin credentials for a bearer token
func (c *APIClient) Login(email, password string) (*LoginResponse, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var result LoginResponse
	if err := c.do(http.MethodPost, "/auth/login", body, "", http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &result, nil
}

// ListCategories returns categories with their active products
func (c *APIClient) ListCategories() ([]Category, error) {
	var categories []Category
	if err := c.do(http.MethodGet, "/categories?withProducts=true", nil, "", http.StatusOK, &categories); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ListPromoProducts returns the products currently on promotion
func (c *APIClient) ListPromoProducts() ([]Product, error) {
	var products []Product
	if err := c.do(http.MethodGet, "/products?isPromo=true", nil, "", http.StatusOK, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// CreateCategory creates an active category, deriving the slug server side
func (c *APIClient) CreateCategory(token, name string) (*Category, error) {
	var category Category
	body := map[string]any{"name": name}
	if err := c.do(http.MethodPost, "/categories", body, token, http.StatusCreated, &category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

// CreateProduct creates a product in the given category
func (c *APIClient) CreateProduct(token, name, categoryID string, price float64, promo bool) (*Product, error) {
	var product Product
	body := map[string]any{
		"name":        name,
		"description": "Simulated product " + name,
		"price":       price,
		"categoryId":  categoryID,
		"isPromo":     promo,
	}
	if err := c.do(http.MethodPost, "/products", body, token, http.StatusCreated, &product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &product, nil
}

func (c *APIClient) DeleteProduct(token, id string) error {
	return c.do(http.MethodDelete, "/products/"+id, nil, token, http.StatusOK, nil)
}

func (c *APIClient) DeleteCategory(token, id string) error {
	return c.do(http.MethodDelete, "/categories/"+id, nil, token, http.StatusOK, nil)
}

// SubmitContact posts the public contact form
func (c *APIClient) SubmitContact(name, email, message string) (*SubmitResponse, error) {
	var result SubmitResponse
	body := map[string]string{
		"name":    name,
		"email":   email,
		"message": message,
	}
	if err := c.do(http.MethodPost, "/contact", body, "", http.StatusCreated, &result); err != nil {
		return nil, fmt.Errorf("submit contact: %w", err)
	}
	return &result, nil
}

// ListUnread returns contact requests not yet handled
func (c *APIClient) ListUnread(token string) ([]ContactRequest, error) {
	var contacts []ContactRequest
	if err := c.do(http.MethodGet, "/contacts?read=false", nil, token, http.StatusOK, &contacts); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func (c *APIClient) MarkRead(token, id string) error {
	body := map[string]bool{"read": true}
	return c.do(http.MethodPut, "/contacts/"+id, body, token, http.StatusOK, nil)
}

// HTTP helpers

func (c *APIClient) do(method, path string, body interface{}, token string, want int, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
