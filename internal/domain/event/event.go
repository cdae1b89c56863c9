package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is an in-process domain event describing a change to a solicitation
// or accountability record. Derived views recompute off these; handlers
// must treat the payload as read-only.
type Event struct {
	ID             string                 `json:"id"`
	Type           Type                   `json:"type"`
	SolicitationID string                 `json:"solicitation_id"`
	Payload        map[string]interface{} `json:"payload"`
	Timestamp      time.Time              `json:"timestamp"`
}

// NewEvent creates a new domain event with generated ID and timestamp.
func NewEvent(eventType Type, solicitationID string, payload map[string]interface{}) *Event {
	return &Event{
		ID:             uuid.NewString(),
		Type:           eventType,
		SolicitationID: solicitationID,
		Payload:        payload,
		Timestamp:      time.Now(),
	}
}

// GetPayloadString retrieves a string value from the payload.
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetPayloadFloat retrieves a float64 value from the payload.
func (e *Event) GetPayloadFloat(key string) float64 {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int64:
			return float64(v)
		case int:
			return float64(v)
		}
	}
	return 0.0
}
