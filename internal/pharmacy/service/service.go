// Package service runs the pharmacy: it owns the current snapshot, applies
// operator commands one at a time, persists each result and drives the
// flash board, reorder notifications and pharmacy events.
package service

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/medflow/medsupply-backend/internal/pharmacy/alerts"
	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/internal/pharmacy/events"
	"github.com/medflow/medsupply-backend/internal/pharmacy/notifier"
	"github.com/medflow/medsupply-backend/internal/pharmacy/repository"
	"github.com/medflow/medsupply-backend/internal/pharmacy/state"
	"github.com/medflow/medsupply-backend/pkg/errors"
	"github.com/medflow/medsupply-backend/pkg/logger"
)

// EmailFailedMessage is flashed when a reorder notification cannot be sent
const EmailFailedMessage = "Email sending failed. Please try again."

// Options tunes the service
type Options struct {
	LowStockThreshold int
	RecheckDelay      time.Duration
	// Now and NewID default to time.Now and random UUIDs
	Now   func() time.Time
	NewID func() string
}

// PharmacyService serialises commands against the snapshot
type PharmacyService struct {
	mu    sync.RWMutex
	state *state.State

	store      *repository.StateStore
	dispatcher *notifier.Dispatcher
	events     *events.PharmacyEventPublisher
	flash      *FlashBoard

	threshold int
	now       func() time.Time
	newID     func() string
	logger    *logger.Logger
}

// NewPharmacyService loads the persisted snapshot and returns a ready
// service. evts may be nil.
func NewPharmacyService(
	ctx context.Context,
	store *repository.StateStore,
	dispatcher *notifier.Dispatcher,
	evts *events.PharmacyEventPublisher,
	opts Options,
	log *logger.Logger,
) (*PharmacyService, error) {
	st, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	s := &PharmacyService{
		state:      st,
		store:      store,
		dispatcher: dispatcher,
		events:     evts,
		threshold:  opts.LowStockThreshold,
		now:        opts.Now,
		newID:      opts.NewID,
		logger:     log.WithComponent("pharmacy_service"),
	}
	if s.threshold <= 0 {
		s.threshold = alerts.DefaultLowStockThreshold
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.flash = NewFlashBoard(opts.RecheckDelay, s.Banner)

	s.logger.Info().
		Int("medicines", len(st.Medicines)).
		Int("orders", len(st.Orders)).
		Int("patients", len(st.Patients)).
		Bool("session", st.Session != nil).
		Msg("state loaded")

	return s, nil
}

// Execute validates and applies cmd, persists the new snapshot and flashes
// the outcome. On any error the snapshot is left as it was.
func (s *PharmacyService) Execute(ctx context.Context, cmd state.Command) (string, error) {
	s.mu.Lock()

	next, notice, err := state.Reduce(s.state, cmd, state.Env{Now: s.now(), NewID: s.newID})
	if err != nil {
		s.mu.Unlock()
		s.logger.Info().Err(err).Str("command", cmd.Kind()).Msg("command rejected")
		s.flash.Show(domain.FlashError, flashText(err))
		return "", err
	}

	if err := s.store.Save(ctx, next); err != nil {
		s.mu.Unlock()
		s.logger.Error().Err(err).Str("command", cmd.Kind()).Msg("failed to persist state")
		appErr := errors.Wrap(err, "INTERNAL_ERROR", "failed to save changes", http.StatusInternalServerError)
		s.flash.Show(domain.FlashError, appErr.Message)
		return "", appErr
	}

	s.state = next
	s.mu.Unlock()

	s.logger.Info().Str("command", cmd.Kind()).Msg(notice)
	s.flash.Show(domain.FlashSuccess, notice)
	s.afterCommit(ctx, cmd)

	return notice, nil
}

// afterCommit runs the side effects of a committed command. None of them
// can undo it.
func (s *PharmacyService) afterCommit(ctx context.Context, cmd state.Command) {
	switch c := cmd.(type) {
	case *state.SubmitReorder:
		s.dispatcher.Dispatch(notifier.ReorderNotification{
			OrderID:      c.Order.ID,
			Recipient:    c.Order.Email,
			MedicineName: c.Order.Medicine,
			Quantity:     c.Order.Quantity,
		}, func(err error) {
			s.flash.Show(domain.FlashError, EmailFailedMessage)
		})

	case *state.ReceiveOrder:
		if !c.AlreadyCompleted {
			s.events.PublishOrderReceived(ctx, c.ID, c.Restocked)
		}
	}
}

// Snapshot returns a copy of the current state
func (s *PharmacyService) Snapshot() *state.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Session returns the logged-in operator, nil when logged out
func (s *PharmacyService) Session() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.Session == nil {
		return nil
	}
	sess := *s.state.Session
	return &sess
}

// Report derives the alert views from the current state
func (s *PharmacyService) Report() alerts.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Report(s.threshold, s.now())
}

// Banner is the alert text to show, "" when logged out or nothing is due
func (s *PharmacyService) Banner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.Session == nil {
		return ""
	}
	return s.state.Report(s.threshold, s.now()).Message
}

// Flash returns the transient message on display
func (s *PharmacyService) Flash() *domain.Flash {
	return s.flash.Current()
}

// ClearFlash dismisses the transient message
func (s *PharmacyService) ClearFlash() {
	s.flash.Clear()
}

// RefreshBanner shows the alert banner now if there is one
func (s *PharmacyService) RefreshBanner() {
	if text := s.Banner(); text != "" {
		s.flash.Show(domain.FlashError, text)
	}
}

// Health reports the storage backend status
func (s *PharmacyService) Health(ctx context.Context) map[string]string {
	return s.store.Health(ctx)
}

// Close stops the alert timer and waits for in-flight notifications
func (s *PharmacyService) Close() {
	s.flash.Stop()
	s.dispatcher.Wait()
}

// flashText turns a command error into the operator message
func flashText(err error) string {
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		return "Something went wrong. Please try again."
	}
	if len(appErr.Details) == 0 {
		return appErr.Message
	}

	fields := make([]string, 0, len(appErr.Details))
	for f := range appErr.Details {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s: %s", fields[0], appErr.Details[fields[0]])
}
