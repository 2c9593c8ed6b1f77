package testutil

import (
	"context"
	"sync"

	"github.com/dom/jbf-storefront/internal/mailer"
)

// RecordingSender captures outgoing mail. FailTo makes sends to the listed
// recipients return an error.
type RecordingSender struct {
	mu       sync.Mutex
	messages []mailer.Message
	failTo   map[string]error
	pingErr  error
}

func (s *RecordingSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.failTo[msg.To]; ok {
		return err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *RecordingSender) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pingErr
}

// FailTo makes every later send to addr fail with err.
func (s *RecordingSender) FailTo(addr string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTo == nil {
		s.failTo = make(map[string]error)
	}
	s.failTo[addr] = err
}

func (s *RecordingSender) SetPingError(err error) {
	s.mu.Lock()
	s.pingErr = err
	s.mu.Unlock()
}

// Messages returns a copy of everything sent so far.
func (s *RecordingSender) Messages() []mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mailer.Message(nil), s.messages...)
}

// Reset forgets sent mail and configured failures.
func (s *RecordingSender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.failTo = nil
	s.pingErr = nil
}
