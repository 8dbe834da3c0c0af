package events

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/medflow/medsupply-backend/internal/pharmacy/alerts"
	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/pkg/logger"
	"github.com/medflow/medsupply-backend/pkg/messaging"
	"github.com/medflow/medsupply-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishOrderReceived(t *testing.T) {
	pub := testutil.NewMockPublisher()
	p := New(pub, logger.Nop())

	p.PublishOrderReceived(context.Background(), "o1", map[string]int{"m1": 50})

	pub.AssertEventPublished(t, messaging.EventOrderReceived)
	assert.Equal(t, "o1", pub.Events()[0].CorrelationID)
	payloads := pub.EventsOfType(messaging.EventOrderReceived)
	require.Len(t, payloads, 1)
	assert.Equal(t, messaging.OrderReceivedEvent{OrderID: "o1", Restocked: map[string]int{"m1": 50}}, payloads[0])
}

func TestPublishAlertGenerated(t *testing.T) {
	pub := testutil.NewMockPublisher()
	p := New(pub, logger.Nop())

	report := alerts.Report{
		Message:                "⚠ 1 medicine(s) low in stock.",
		LowStock:               alerts.LowStockReport{LowStock: []domain.Medicine{{ID: "m1"}}},
		PatientsNeedingContact: []domain.Patient{{ID: "p1"}},
	}
	p.PublishAlertGenerated(context.Background(), report)

	payloads := pub.EventsOfType(messaging.EventAlertGenerated)
	require.Len(t, payloads, 1)
	assert.Equal(t, messaging.AlertGeneratedEvent{
		Message:           "⚠ 1 medicine(s) low in stock.",
		LowStockCount:     1,
		PatientsToContact: []string{"p1"},
	}, payloads[0])
}

func TestPublisher_ErrorsAreSwallowed(t *testing.T) {
	pub := testutil.NewMockPublisher()
	pub.Err = errors.New("broker down")
	var logs bytes.Buffer
	p := New(pub, logger.NewWithWriter("test", &logs))

	assert.NotPanics(t, func() {
		p.PublishOrderReceived(context.Background(), "o1", nil)
	})
	pub.AssertNoEventsPublished(t)
	assert.Contains(t, logs.String(), `"order_id":"o1"`)
}

func TestPublisher_NilIsNoop(t *testing.T) {
	var p *PharmacyEventPublisher
	assert.NotPanics(t, func() {
		p.PublishOrderReceived(context.Background(), "o1", nil)
		p.PublishAlertGenerated(context.Background(), alerts.Report{})
	})
}
