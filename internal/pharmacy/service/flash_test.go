package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashBoard_ShowCancelsPendingTimer(t *testing.T) {
	var calls atomic.Int32
	board := NewFlashBoard(100*time.Millisecond, func() string {
		calls.Add(1)
		return ""
	})
	defer board.Stop()

	board.Show(domain.FlashSuccess, "first")
	time.Sleep(60 * time.Millisecond)
	board.Show(domain.FlashSuccess, "second")
	time.Sleep(60 * time.Millisecond)

	// the first timer would have fired by now
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, "second", board.Current().Msg)

	require.Eventually(t, func() bool { return board.Current() == nil }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFlashBoard_ClearSchedulesRecheck(t *testing.T) {
	board := NewFlashBoard(10*time.Millisecond, func() string { return "⚠ 2 medicine(s) expiring soon." })
	defer board.Stop()

	board.Clear()
	assert.Nil(t, board.Current())
	assert.True(t, board.Pending())

	require.Eventually(t, func() bool {
		c := board.Current()
		return c != nil && c.Type == domain.FlashError
	}, time.Second, 5*time.Millisecond)
}

func TestFlashBoard_StopDisarms(t *testing.T) {
	var calls atomic.Int32
	board := NewFlashBoard(10*time.Millisecond, func() string {
		calls.Add(1)
		return "banner"
	})

	board.Show(domain.FlashSuccess, "saved")
	board.Stop()
	board.Show(domain.FlashSuccess, "again")

	time.Sleep(40 * time.Millisecond)
	assert.False(t, board.Pending())
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, "again", board.Current().Msg)
}
