// Package notifier delivers reorder notifications to the supplier. Delivery
// is fire-and-forget: callers hand a notification to a Dispatcher and only
// learn about failures through a callback.
package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/medflow/medsupply-backend/pkg/logger"
)

// ReorderNotification is what the supplier receives. MedicineName is the
// order summary, e.g. "Amox - 50, Panadol - 20".
type ReorderNotification struct {
	OrderID      string
	Recipient    string
	MedicineName string
	Quantity     int
}

// Notifier attempts one delivery. There are no retries.
type Notifier interface {
	Notify(ctx context.Context, n ReorderNotification) error
}

// LogNotifier only logs. It is the development default.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a notifier that writes to log
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log.WithComponent("notifier")}
}

func (l *LogNotifier) Notify(ctx context.Context, n ReorderNotification) error {
	l.logger.Info().
		Str("order_id", n.OrderID).
		Str("to_email", n.Recipient).
		Str("medicine_name", n.MedicineName).
		Int("quantity", n.Quantity).
		Msg("reorder notification")
	return nil
}

// Dispatcher runs notifications in the background with a per-call timeout
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   *logger.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A zero timeout means 10s.
func NewDispatcher(n Notifier, timeout time.Duration, log *logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{notifier: n, timeout: timeout, logger: log.WithComponent("dispatcher")}
}

// Dispatch returns immediately. onFailure, if set, runs on the delivery
// goroutine when Notify fails.
func (d *Dispatcher) Dispatch(n ReorderNotification, onFailure func(error)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		log := d.logger.WithOrderID(n.OrderID)
		if err := d.notifier.Notify(ctx, n); err != nil {
			log.Error().Err(err).
				Str("to_email", n.Recipient).
				Msg("reorder notification failed")
			if onFailure != nil {
				onFailure(err)
			}
			return
		}

		log.Debug().Msg("reorder notification sent")
	}()
}

// Wait blocks until every dispatched notification has finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
