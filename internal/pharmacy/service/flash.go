package service

import (
	"sync"
	"time"

	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
)

// DefaultRecheckDelay is how long a flash stays up before the alert banner
// is re-evaluated.
const DefaultRecheckDelay = 3500 * time.Millisecond

// FlashBoard holds the one transient message shown to the operator and the
// single pending alert timer. Showing or clearing a message cancels the
// pending timer and arms a new one. When it fires the message is cleared and
// the banner, if any, takes its place as an error flash.
type FlashBoard struct {
	mu      sync.Mutex
	current *domain.Flash
	timer   *time.Timer
	gen     uint64
	stopped bool

	delay  time.Duration
	banner func() string
}

// NewFlashBoard creates a board. banner returns the current alert text, or
// "" when there is nothing to show.
func NewFlashBoard(delay time.Duration, banner func() string) *FlashBoard {
	if delay <= 0 {
		delay = DefaultRecheckDelay
	}
	if banner == nil {
		banner = func() string { return "" }
	}
	return &FlashBoard{delay: delay, banner: banner}
}

// Show replaces the current message
func (f *FlashBoard) Show(kind, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = &domain.Flash{Type: kind, Msg: msg}
	f.scheduleLocked()
}

// Clear removes the current message
func (f *FlashBoard) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = nil
	f.scheduleLocked()
}

// Current returns a copy of the message on display, nil if none
func (f *FlashBoard) Current() *domain.Flash {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.current == nil {
		return nil
	}
	c := *f.current
	return &c
}

// Pending reports whether an alert timer is armed
func (f *FlashBoard) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timer != nil
}

// Stop cancels the pending timer and keeps new ones from being armed
func (f *FlashBoard) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopped = true
	f.cancelLocked()
}

func (f *FlashBoard) cancelLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.gen++
}

func (f *FlashBoard) scheduleLocked() {
	f.cancelLocked()
	if f.stopped {
		return
	}

	gen := f.gen
	f.timer = time.AfterFunc(f.delay, func() { f.fire(gen) })
}

func (f *FlashBoard) fire(gen uint64) {
	// banner reads service state, so it runs before taking the board lock
	text := f.banner()

	f.mu.Lock()
	defer f.mu.Unlock()

	// a newer Show/Clear superseded this timer
	if gen != f.gen {
		return
	}

	f.timer = nil
	f.current = nil
	if text != "" {
		f.current = &domain.Flash{Type: domain.FlashError, Msg: text}
		f.scheduleLocked()
	}
}
