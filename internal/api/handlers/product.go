package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dom/jbf-storefront/internal/api/middleware"
	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/dom/jbf-storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductHandler struct {
	productService *service.ProductService
	logger         *zap.Logger
}

func NewProductHandler(productService *service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: productService, logger: logger}
}

// Price accepts a JSON number or a finite numeric string.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*p = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("price %q is not a number", s)
		}
		*p = Price(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Price(v)
	return nil
}

type ProductRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Content        *string `json:"content"`
	Price          Price   `json:"price"`
	ImageURL       string  `json:"imageUrl"`
	ImageStorageID *string `json:"imageStorageId"`
	Slug           string  `json:"slug"`
	// Empty string means no category.
	CategoryID *string `json:"categoryId"`
	IsPromo    *bool   `json:"isPromo"`
	IsActive   *bool   `json:"isActive"`
}

func (req ProductRequest) input() (service.ProductInput, error) {
	in := service.ProductInput{
		Name:           req.Name,
		Description:    req.Description,
		Content:        req.Content,
		Price:          float64(req.Price),
		ImageURL:       req.ImageURL,
		ImageStorageID: req.ImageStorageID,
		Slug:           req.Slug,
		IsPromo:        req.IsPromo,
		IsActive:       req.IsActive,
	}
	if req.CategoryID != nil && strings.TrimSpace(*req.CategoryID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*req.CategoryID))
		if err != nil {
			return in, domain.NewValidationError("categoryId", "must be a valid UUID")
		}
		in.CategoryID = &id
	}
	return in, nil
}

// List handles GET /products?isPromo=&isActive=&category=. Callers without
// an admin session only ever see active products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.ProductFilter
	var err error

	if filter.IsPromo, err = queryBool(r, "isPromo"); err != nil {
		badRequest(w, "isPromo", err.Error())
		return
	}
	if filter.IsActive, err = queryBool(r, "isActive"); err != nil {
		badRequest(w, "isActive", err.Error())
		return
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(w, "category", "must be a valid UUID")
			return
		}
		filter.CategoryID = &id
	}

	if _, admin := middleware.GetSession(r.Context()); !admin {
		active := true
		filter.IsActive = &active
	}

	products, err := h.productService.List(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, admin := middleware.GetSession(r.Context())
	product, err := h.productService.Get(r.Context(), chi.URLParam(r, "id"), admin)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Similar(w http.ResponseWriter, r *http.Request) {
	_, admin := middleware.GetSession(r.Context())
	products, err := h.productService.Similar(r.Context(), chi.URLParam(r, "id"), admin)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	input, err := req.input()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	product, err := h.productService.Create(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	input, err := req.input()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	product, err := h.productService.Update(r.Context(), id, input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}
