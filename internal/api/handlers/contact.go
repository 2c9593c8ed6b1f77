package handlers

import (
	"net/http"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/dom/jbf-storefront/internal/service"
	"go.uber.org/zap"
)

type ContactHandler struct {
	contactService *service.ContactService
	logger         *zap.Logger
}

func NewContactHandler(contactService *service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{contactService: contactService, logger: logger}
}

type ContactRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone"`
	Message string  `json:"message"`
}

type SubmitResponse struct {
	Success      bool                       `json:"success"`
	Message      string                     `json:"message"`
	ID           string                     `json:"id"`
	Notification domain.NotificationOutcome `json:"notification"`
}

type MarkReadRequest struct {
	Read *bool `json:"read"`
}

// Submit handles the public POST /contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.contactService.Submit(r.Context(), service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	msg := "Your message has been sent"
	if result.Notification.Degraded() {
		msg = "Your message has been saved"
	}
	writeJSON(w, http.StatusCreated, SubmitResponse{
		Success:      true,
		Message:      msg,
		ID:           result.Contact.ID.String(),
		Notification: result.Notification,
	})
}

// List handles GET /contacts?read=
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	read, err := queryBool(r, "read")
	if err != nil {
		badRequest(w, "read", err.Error())
		return
	}

	contacts, err := h.contactService.List(r.Context(), domain.ContactFilter{Read: read})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	contact, err := h.contactService.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req MarkReadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Read == nil {
		badRequest(w, "read", "is required")
		return
	}

	contact, err := h.contactService.MarkRead(r.Context(), id, *req.Read)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.contactService.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Contact request deleted"})
}
