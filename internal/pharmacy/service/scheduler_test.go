package service

import (
	"context"
	"testing"
	"time"

	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/internal/pharmacy/state"
	"github.com/medflow/medsupply-backend/pkg/logger"
	"github.com/medflow/medsupply-backend/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminder_PublishesWhenSomethingIsDue(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.exec(t, &state.StartSession{SessionID: "s1", Username: "test"})
	addAmox(t, f)
	f.exec(t, &state.SaveMedicine{Name: "Panadol", Row: "B", Slot: "2", Stock: 80, Expiry: "2024-02-01"})

	r, err := NewReminderScheduler(f.svc, time.Hour, logger.Nop())
	require.NoError(t, err)
	r.RunOnce(context.Background())

	published := f.publisher.EventsOfType(messaging.EventAlertGenerated)
	require.Len(t, published, 1)
	evt := published[0].(messaging.AlertGeneratedEvent)
	assert.Equal(t, 1, evt.LowStockCount)
	assert.Equal(t, 1, evt.ExpiringCount)
	assert.Equal(t, "⚠ 1 medicine(s) expiring soon. ⚠ 1 medicine(s) low in stock.", evt.Message)

	flash := f.svc.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, domain.FlashError, flash.Type)
	assert.Equal(t, evt.Message, flash.Msg)
}

func TestReminder_QuietWhenNothingIsDue(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.exec(t, &state.SaveMedicine{Name: "Panadol", Row: "B", Slot: "2", Stock: 80, Expiry: "2026-01-01"})

	r, err := NewReminderScheduler(f.svc, time.Hour, logger.Nop())
	require.NoError(t, err)
	r.RunOnce(context.Background())

	f.publisher.AssertNoEventsPublished(t)
}

func TestReminder_StartRunsImmediately(t *testing.T) {
	f := newFixture(t, time.Hour)
	addAmox(t, f)

	r, err := NewReminderScheduler(f.svc, time.Hour, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	require.Eventually(t, func() bool {
		return len(f.publisher.EventsOfType(messaging.EventAlertGenerated)) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
