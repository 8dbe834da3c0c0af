package notifier

import (
	"context"

	"github.com/medflow/medsupply-backend/pkg/messaging"
)

// AMQPNotifier hands the notification to a mail relay over RabbitMQ
type AMQPNotifier struct {
	publisher messaging.EventPublisher
}

// NewAMQPNotifier creates a notifier publishing on publisher
func NewAMQPNotifier(publisher messaging.EventPublisher) *AMQPNotifier {
	return &AMQPNotifier{publisher: publisher}
}

func (a *AMQPNotifier) Notify(ctx context.Context, n ReorderNotification) error {
	ctx = messaging.WithCorrelationID(ctx, n.OrderID)
	return a.publisher.Publish(ctx, messaging.EventReorderRequested, messaging.ReorderRequestedEvent{
		OrderID:      n.OrderID,
		ToEmail:      n.Recipient,
		MedicineName: n.MedicineName,
		Quantity:     n.Quantity,
	})
}
