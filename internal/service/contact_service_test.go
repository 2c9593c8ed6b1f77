package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/dom/jbf-storefront/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memContacts is an in-memory ContactRepository.
type memContacts struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*domain.ContactRequest
	createErr error
}

func newMemContacts() *memContacts {
	return &memContacts{items: make(map[uuid.UUID]*domain.ContactRequest)}
}

func (m *memContacts) Create(_ context.Context, c *domain.ContactRequest) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *memContacts) GetByID(_ context.Context, id uuid.UUID) (*domain.ContactRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memContacts) List(context.Context, domain.ContactFilter) ([]*domain.ContactRequest, error) {
	return nil, errors.New("not used")
}

func (m *memContacts) SetRead(_ context.Context, id uuid.UUID, read bool) (*domain.ContactRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	c.Read = read
	cp := *c
	return &cp, nil
}

func (m *memContacts) SetNotification(_ context.Context, id uuid.UUID, outcome []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return domain.ErrContactNotFound
	}
	c.Notification = outcome
	return nil
}

func (m *memContacts) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrContactNotFound
	}
	delete(m.items, id)
	return nil
}

type fakeNotifier struct {
	adminErr  error
	clientErr error
	// block makes both deliveries wait for their context to end.
	block bool

	mu       sync.Mutex
	admin    int
	client   int
	ctxErrs  []error
	lastSeen *domain.ContactRequest
}

func (f *fakeNotifier) deliver(ctx context.Context, c *domain.ContactRequest, counter *int, err error) error {
	if f.block {
		<-ctx.Done()
		err = ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	*counter++
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	f.lastSeen = c
	return err
}

func (f *fakeNotifier) NotifyAdmin(ctx context.Context, c *domain.ContactRequest) error {
	return f.deliver(ctx, c, &f.admin, f.adminErr)
}

func (f *fakeNotifier) AcknowledgeSubmitter(ctx context.Context, c *domain.ContactRequest) error {
	return f.deliver(ctx, c, &f.client, f.clientErr)
}

type recordingPublisher struct {
	mu       sync.Mutex
	contacts []*domain.ContactRequest
	outcomes []domain.NotificationOutcome
}

func (p *recordingPublisher) PublishContactCreated(c *domain.ContactRequest, o domain.NotificationOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contacts = append(p.contacts, c)
	p.outcomes = append(p.outcomes, o)
}

func validContact() service.ContactInput {
	return service.ContactInput{
		Name:    "Alice",
		Email:   "alice@example.com",
		Message: "I need a new football, size 5 please.",
	}
}

func TestContactService_Submit_NotificationOutcomes(t *testing.T) {
	smtpDown := errors.New("smtp: connection refused")

	tests := []struct {
		name       string
		adminErr   error
		clientErr  error
		wantStatus domain.NotificationStatus
	}{
		{"both delivered", nil, nil, domain.NotificationSent},
		{"admin fails", smtpDown, nil, domain.NotificationPartial},
		{"acknowledgement fails", nil, smtpDown, domain.NotificationPartial},
		{"both fail", smtpDown, smtpDown, domain.NotificationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemContacts()
			notifier := &fakeNotifier{adminErr: tt.adminErr, clientErr: tt.clientErr}
			publisher := &recordingPublisher{}
			svc := service.NewContactService(repo, notifier, publisher, time.Second, nil)

			result, err := svc.Submit(context.Background(), validContact())
			require.NoError(t, err)
			require.NotNil(t, result.Contact)
			assert.NotEqual(t, uuid.Nil, result.Contact.ID)
			assert.False(t, result.Contact.Read)
			assert.Equal(t, tt.wantStatus, result.Notification.Status)
			assert.Equal(t, tt.wantStatus != domain.NotificationSent, result.Notification.Degraded())

			// Both attempts always run, whatever the other one did.
			assert.Equal(t, 1, notifier.admin)
			assert.Equal(t, 1, notifier.client)

			stored, err := repo.GetByID(context.Background(), result.Contact.ID)
			require.NoError(t, err)
			var persisted domain.NotificationOutcome
			require.NoError(t, json.Unmarshal(stored.Notification, &persisted))
			assert.Equal(t, tt.wantStatus, persisted.Status)

			require.Len(t, publisher.outcomes, 1)
			assert.Equal(t, tt.wantStatus, publisher.outcomes[0].Status)
		})
	}
}

func TestContactService_Submit_MessageBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantErr bool
	}{
		{"9 characters", 9, true},
		{"10 characters", 10, false},
		{"1000 characters", 1000, false},
		{"1001 characters", 1001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemContacts()
			svc := service.NewContactService(repo, &fakeNotifier{}, nil, time.Second, nil)

			input := validContact()
			input.Message = strings.Repeat("a", tt.length)
			result, err := svc.Submit(context.Background(), input)

			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrValidation)
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "message", verr.Fields[0].Field)
				assert.Empty(t, repo.items, "nothing is persisted on validation failure")
				return
			}
			require.NoError(t, err)
			assert.Len(t, result.Contact.Message, tt.length)
		})
	}
}

func TestContactService_Submit_Validation(t *testing.T) {
	phone := "+33 6 12 34 56 78"
	tests := []struct {
		name       string
		mutate     func(*service.ContactInput)
		wantFields []string
	}{
		{"missing name", func(in *service.ContactInput) { in.Name = "  " }, []string{"name"}},
		{"name too long", func(in *service.ContactInput) { in.Name = strings.Repeat("n", 101) }, []string{"name"}},
		{"malformed email", func(in *service.ContactInput) { in.Email = "alice-at-example" }, []string{"email"}},
		{"email too long", func(in *service.ContactInput) { in.Email = strings.Repeat("a", 95) + "@x.com" }, []string{"email"}},
		{"several fields", func(in *service.ContactInput) { in.Name = ""; in.Message = "short" }, []string{"name", "message"}},
		{"optional phone", func(in *service.ContactInput) { in.Phone = &phone }, nil},
		{"multibyte message counts characters", func(in *service.ContactInput) { in.Message = strings.Repeat("é", 10) }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := service.NewContactService(newMemContacts(), &fakeNotifier{}, nil, time.Second, nil)
			input := validContact()
			tt.mutate(&input)

			_, err := svc.Submit(context.Background(), input)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			var fields []string
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
				assert.NotEmpty(t, f.Message)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestContactService_Submit_StorageFailure(t *testing.T) {
	repo := newMemContacts()
	repo.createErr = errors.New("connection reset")
	notifier := &fakeNotifier{}
	svc := service.NewContactService(repo, notifier, nil, time.Second, nil)

	_, err := svc.Submit(context.Background(), validContact())
	require.Error(t, err)
	assert.Zero(t, notifier.admin, "no notification without a stored record")
	assert.Zero(t, notifier.client)
}

func TestContactService_Submit_NotificationTimeout(t *testing.T) {
	notifier := &fakeNotifier{block: true}
	svc := service.NewContactService(newMemContacts(), notifier, nil, 50*time.Millisecond, nil)

	start := time.Now()
	result, err := svc.Submit(context.Background(), validContact())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second, "both attempts share one timeout window")
	assert.Equal(t, domain.NotificationFailed, result.Notification.Status)
}

func TestContactService_Submit_SurvivesCallerCancellation(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := service.NewContactService(newMemContacts(), notifier, nil, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.Submit(ctx, validContact())
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationSent, result.Notification.Status)
	for _, e := range notifier.ctxErrs {
		assert.NoError(t, e)
	}
}

func TestContactService_Submit_NoNotifier(t *testing.T) {
	svc := service.NewContactService(newMemContacts(), nil, nil, time.Second, nil)

	result, err := svc.Submit(context.Background(), validContact())
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationFailed, result.Notification.Status)
	assert.NotEqual(t, uuid.Nil, result.Contact.ID)
}

func TestContactService_MarkReadAndDelete(t *testing.T) {
	repo := newMemContacts()
	svc := service.NewContactService(repo, &fakeNotifier{}, nil, time.Second, nil)
	ctx := context.Background()

	result, err := svc.Submit(ctx, validContact())
	require.NoError(t, err)
	id := result.Contact.ID

	updated, err := svc.MarkRead(ctx, id, true)
	require.NoError(t, err)
	assert.True(t, updated.Read)

	require.NoError(t, svc.Delete(ctx, id))
	assert.ErrorIs(t, svc.Delete(ctx, id), domain.ErrNotFound)

	_, err = svc.MarkRead(ctx, uuid.New(), true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
