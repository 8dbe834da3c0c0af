package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventReorderRequested = "pharmacy.reorder.requested"
	EventOrderReceived    = "pharmacy.order.received"
	EventAlertGenerated   = "pharmacy.alert.generated"
)

// ExchangePharmacyEvents is the topic exchange all pharmacy events go to
const ExchangePharmacyEvents = "pharmacy.events"

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// ReorderRequestedEvent carries what a mail relay needs to contact the
// supplier/pharmacist. Field names follow the email template variables.
type ReorderRequestedEvent struct {
	OrderID      string `json:"order_id"`
	ToEmail      string `json:"to_email"`
	MedicineName string `json:"medicine_name"`
	Quantity     int    `json:"quantity"`
}

// OrderReceivedEvent is published when a pending order is marked received
type OrderReceivedEvent struct {
	OrderID   string         `json:"order_id"`
	Restocked map[string]int `json:"restocked"`
}

// AlertGeneratedEvent summarises one reminder pass
type AlertGeneratedEvent struct {
	Message           string   `json:"message"`
	ExpiredCount      int      `json:"expired_count"`
	ExpiringCount     int      `json:"expiring_count"`
	LowStockCount     int      `json:"low_stock_count"`
	PatientsToContact []string `json:"patients_to_contact,omitempty"`
}
