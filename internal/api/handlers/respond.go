package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/dom/jbf-storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string              `json:"error"`
	Kind    string              `json:"kind"`
	Details []domain.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain error kinds onto status codes. Unknown errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		verr *domain.ValidationError
		rerr *service.RateLimitError
	)

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid input", Kind: "validation", Details: verr.Fields})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials", Kind: "unauthorized"})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired token", Kind: "unauthorized"})
	case errors.As(err, &rerr):
		seconds := int(math.Ceil(rerr.RetryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "Too many attempts, try again later", Kind: "rate_limited"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: kindMessage(err, "Not found"), Kind: "not_found"})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: kindMessage(err, "Conflict"), Kind: "conflict"})
	default:
		logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Kind: "internal"})
	}
}

// kindMessage returns the entity-level message of a *domain.KindError.
func kindMessage(err error, fallback string) string {
	var kerr *domain.KindError
	if errors.As(err, &kerr) {
		return kerr.Msg
	}
	return fallback
}

func badRequest(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid input",
		Kind:    "validation",
		Details: []domain.FieldError{{Field: field, Message: msg}},
	})
}

// decodeJSON reads a single JSON object into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		msg := "Invalid request body"
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			msg = "Request body is required"
		case errors.As(err, &typeErr) && typeErr.Field != "":
			badRequest(w, typeErr.Field, fmt.Sprintf("must be a %s", typeErr.Type.Kind()))
			return false
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Kind: "validation"})
		return false
	}
	return true
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("must be true or false")
	}
	return &v, nil
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "id", "must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
