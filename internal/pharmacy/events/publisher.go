package events

import (
	"context"

	"github.com/medflow/medsupply-backend/internal/pharmacy/alerts"
	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/pkg/logger"
	"github.com/medflow/medsupply-backend/pkg/messaging"
)

// PharmacyEventPublisher publishes pharmacy events. A nil publisher drops
// everything, so the service runs without a broker.
type PharmacyEventPublisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewPharmacyEventPublisher declares the pharmacy exchange on rmq
func NewPharmacyEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*PharmacyEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangePharmacyEvents, "medsupply-service", log)
	if err != nil {
		return nil, err
	}

	return New(publisher, log), nil
}

// New wraps an existing publisher
func New(publisher messaging.EventPublisher, log *logger.Logger) *PharmacyEventPublisher {
	return &PharmacyEventPublisher{publisher: publisher, logger: log}
}

// PublishOrderReceived publishes an order received event
func (p *PharmacyEventPublisher) PublishOrderReceived(ctx context.Context, orderID string, restocked map[string]int) {
	if p == nil {
		return
	}

	ctx = messaging.WithCorrelationID(ctx, orderID)
	data := messaging.OrderReceivedEvent{OrderID: orderID, Restocked: restocked}
	if err := p.publisher.Publish(ctx, messaging.EventOrderReceived, data); err != nil {
		p.logger.WithOrderID(orderID).Error().Err(err).Msg("failed to publish order received event")
	}
}

// PublishAlertGenerated publishes the outcome of a reminder pass
func (p *PharmacyEventPublisher) PublishAlertGenerated(ctx context.Context, report alerts.Report) {
	if p == nil {
		return
	}

	data := messaging.AlertGeneratedEvent{
		Message:           report.Message,
		ExpiredCount:      len(report.Expiry.Expired),
		ExpiringCount:     len(report.Expiry.ExpiringSoon),
		LowStockCount:     len(report.LowStock.LowStock),
		PatientsToContact: patientIDs(report.PatientsNeedingContact),
	}

	if err := p.publisher.Publish(ctx, messaging.EventAlertGenerated, data); err != nil {
		p.logger.Error().Err(err).Msg("failed to publish alert generated event")
	}
}

func patientIDs(patients []domain.Patient) []string {
	ids := make([]string, 0, len(patients))
	for _, p := range patients {
		ids = append(ids, p.ID)
	}
	return ids
}
