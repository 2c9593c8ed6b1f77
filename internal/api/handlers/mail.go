package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/dom/jbf-storefront/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pinger checks that the mail transport is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MailSettings is the non-secret part of the mail configuration shown by the status endpoint.
type MailSettings struct {
	Host       string        `json:"host"`
	Port       int           `json:"port"`
	User       string        `json:"user"`
	AdminEmail string        `json:"adminEmail"`
	Timeout    time.Duration `json:"-"`
}

type MailHandler struct {
	pinger   Pinger
	notifier service.Notifier
	settings MailSettings
	logger   *zap.Logger
}

func NewMailHandler(pinger Pinger, notifier service.Notifier, settings MailSettings, logger *zap.Logger) *MailHandler {
	if settings.Timeout <= 0 {
		settings.Timeout = service.DefaultNotifyTimeout
	}
	return &MailHandler{pinger: pinger, notifier: notifier, settings: settings, logger: logger}
}

type MailStatusResponse struct {
	Connected bool         `json:"connected"`
	Error     string       `json:"error,omitempty"`
	Config    MailSettings `json:"config"`
}

// Status dials the mail server without sending anything.
func (h *MailHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.settings.Timeout)
	defer cancel()

	resp := MailStatusResponse{
		Connected: true,
		Config: MailSettings{
			Host:       h.settings.Host,
			Port:       h.settings.Port,
			User:       maskAddress(h.settings.User),
			AdminEmail: maskAddress(h.settings.AdminEmail),
		},
	}
	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Warn("mail status check failed", zap.Error(err))
		resp.Connected = false
		resp.Error = "mail server unreachable or rejected the credentials"
	}
	writeJSON(w, http.StatusOK, resp)
}

// Test sends both contact emails for a synthetic request to the mailbox owner.
func (h *MailHandler) Test(w http.ResponseWriter, r *http.Request) {
	if h.settings.User == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Mail delivery is not configured", Kind: "validation"})
		return
	}

	contact := &domain.ContactRequest{
		ID:        uuid.New(),
		Name:      "Test Contact",
		Email:     h.settings.User,
		Message:   "This is a test message sent from the mail diagnostics endpoint.",
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.settings.Timeout)
	defer cancel()

	adminErr := h.notifier.NotifyAdmin(ctx, contact)
	clientErr := h.notifier.AcknowledgeSubmitter(ctx, contact)
	if adminErr != nil || clientErr != nil {
		h.logger.Warn("test email failed", zap.NamedError("admin", adminErr), zap.NamedError("client", clientErr))
	}

	writeJSON(w, http.StatusOK, domain.NewNotificationOutcome(adminErr, clientErr))
}

// maskAddress keeps the first character of the local part.
func maskAddress(addr string) string {
	local, domainPart, ok := strings.Cut(addr, "@")
	if !ok || local == "" {
		if addr == "" {
			return ""
		}
		return "***"
	}
	return local[:1] + "***@" + domainPart
}
