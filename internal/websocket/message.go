package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/google/uuid"
)

type MessageType string

const (
	// Client to Server
	MessageTypePing MessageType = "ping"

	// Server to Client
	MessageTypePong           MessageType = "pong"
	MessageTypeContactCreated MessageType = "contact.created"
	MessageTypeError          MessageType = "error"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	msg := &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
	}
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = payloadBytes
	}
	return msg, nil
}

// ContactCreatedPayload is the admin-facing summary of a new contact request.
type ContactCreatedPayload struct {
	ID           uuid.UUID                 `json:"id"`
	Name         string                    `json:"name"`
	Email        string                    `json:"email"`
	Excerpt      string                    `json:"excerpt"`
	CreatedAt    time.Time                 `json:"createdAt"`
	Notification domain.NotificationStatus `json:"notification"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
