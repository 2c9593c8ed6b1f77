package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/dom/jbf-storefront/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultNotifyTimeout bounds each notification attempt when none is configured.
const DefaultNotifyTimeout = 15 * time.Second

// Notifier delivers the two emails that follow a contact submission.
type Notifier interface {
	NotifyAdmin(ctx context.Context, contact *domain.ContactRequest) error
	AcknowledgeSubmitter(ctx context.Context, contact *domain.ContactRequest) error
}

// EventPublisher pushes intake events to live admin sessions. It must not block.
type EventPublisher interface {
	PublishContactCreated(contact *domain.ContactRequest, outcome domain.NotificationOutcome)
}

type ContactService struct {
	contactRepo   repository.ContactRepository
	notifier      Notifier
	publisher     EventPublisher
	notifyTimeout time.Duration
	logger        *zap.Logger
}

func NewContactService(contactRepo repository.ContactRepository, notifier Notifier, publisher EventPublisher, notifyTimeout time.Duration, logger *zap.Logger) *ContactService {
	if notifyTimeout <= 0 {
		notifyTimeout = DefaultNotifyTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{
		contactRepo:   contactRepo,
		notifier:      notifier,
		publisher:     publisher,
		notifyTimeout: notifyTimeout,
		logger:        logger,
	}
}

type ContactInput struct {
	Name    string  `json:"name" validate:"required,max=100"`
	Email   string  `json:"email" validate:"required,email,max=100"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	Message string  `json:"message" validate:"required,min=10,max=1000"`
}

type SubmitResult struct {
	Contact      *domain.ContactRequest
	Notification domain.NotificationOutcome
}

// Submit validates and stores a contact request, then attempts both
// notifications in parallel. Once the record is stored the call succeeds;
// delivery problems only show up in the returned outcome.
func (s *ContactService) Submit(ctx context.Context, input ContactInput) (*SubmitResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = trimmed(input.Phone)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	contact := &domain.ContactRequest{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Message: input.Message,
		Read:    false,
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}

	outcome := s.notify(ctx, contact)
	if outcome.Degraded() {
		s.logger.Warn("contact notification degraded",
			zap.String("contact_id", contact.ID.String()),
			zap.String("status", string(outcome.Status)),
			zap.Strings("errors", outcome.Errors),
		)
	}

	s.recordOutcome(ctx, contact, outcome)

	if s.publisher != nil {
		s.publisher.PublishContactCreated(contact, outcome)
	}

	return &SubmitResult{Contact: contact, Notification: outcome}, nil
}

// notify runs both deliveries concurrently on a context that survives the
// caller going away, each bounded by notifyTimeout.
func (s *ContactService) notify(ctx context.Context, contact *domain.ContactRequest) domain.NotificationOutcome {
	if s.notifier == nil {
		return domain.NewNotificationOutcome(domain.ErrNotification, domain.ErrNotification)
	}

	base := context.WithoutCancel(ctx)
	var (
		wg                  sync.WaitGroup
		adminErr, clientErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		adminErr = s.attempt(base, "admin notice", contact, s.notifier.NotifyAdmin)
	}()
	go func() {
		defer wg.Done()
		clientErr = s.attempt(base, "acknowledgement", contact, s.notifier.AcknowledgeSubmitter)
	}()
	wg.Wait()

	return domain.NewNotificationOutcome(adminErr, clientErr)
}

func (s *ContactService) attempt(ctx context.Context, kind string, contact *domain.ContactRequest, send func(context.Context, *domain.ContactRequest) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("notification panicked", zap.String("kind", kind), zap.Any("panic", r))
			err = domain.ErrNotification
		}
	}()

	if err = send(ctx, contact); err != nil {
		s.logger.Warn("notification failed",
			zap.String("kind", kind),
			zap.String("contact_id", contact.ID.String()),
			zap.Error(err),
		)
	}
	return err
}

func (s *ContactService) recordOutcome(ctx context.Context, contact *domain.ContactRequest, outcome domain.NotificationOutcome) {
	data, err := json.Marshal(outcome)
	if err != nil {
		s.logger.Error("encode notification outcome", zap.Error(err))
		return
	}
	contact.Notification = data

	if err := s.contactRepo.SetNotification(context.WithoutCancel(ctx), contact.ID, data); err != nil {
		s.logger.Error("store notification outcome",
			zap.String("contact_id", contact.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *ContactService) List(ctx context.Context, filter domain.ContactFilter) ([]*domain.ContactRequest, error) {
	return s.contactRepo.List(ctx, filter)
}

func (s *ContactService) Get(ctx context.Context, id uuid.UUID) (*domain.ContactRequest, error) {
	return s.contactRepo.GetByID(ctx, id)
}

func (s *ContactService) MarkRead(ctx context.Context, id uuid.UUID, read bool) (*domain.ContactRequest, error) {
	return s.contactRepo.SetRead(ctx, id, read)
}

func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.contactRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("contact request deleted", zap.String("id", id.String()))
	return nil
}
