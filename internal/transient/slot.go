// Package transient holds status strings that clear themselves after a delay.
//
// A Slot owns exactly one pending clear. Every Set or Clear bumps the slot's
// generation, so a clear scheduled for an older message is ignored when it
// finally fires.
package transient

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDelay is how long a message stays visible.
const DefaultDelay = 3 * time.Second

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// Scheduler turns a delay into a command that eventually yields fn's message.
// tea.Tick is the production scheduler; tests substitute one that fires at
// once.
type Scheduler func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// ClearMsg asks the slot with the matching id to clear generation gen.
type ClearMsg struct {
	id  int
	gen int
}

// Slot is a single auto-clearing message.
type Slot struct {
	id       int
	gen      int
	text     string
	ok       bool
	delay    time.Duration
	schedule Scheduler
}

// Option configures a Slot.
type Option func(*Slot)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(s *Slot) { s.delay = d }
}

// WithScheduler overrides tea.Tick.
func WithScheduler(fn Scheduler) Option {
	return func(s *Slot) {
		if fn != nil {
			s.schedule = fn
		}
	}
}

func New(opts ...Option) Slot {
	s := Slot{
		id:       nextID(),
		delay:    DefaultDelay,
		schedule: tea.Tick,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Set shows text and returns the command that clears it after the delay.
// ok marks a success message. Any clear still pending for an earlier message
// is superseded.
func (s *Slot) Set(text string, ok bool) tea.Cmd {
	s.gen++
	s.text = text
	s.ok = ok
	id, gen := s.id, s.gen
	return s.schedule(s.delay, func(time.Time) tea.Msg {
		return ClearMsg{id: id, gen: gen}
	})
}

// Clear empties the slot immediately and cancels the pending clear.
func (s *Slot) Clear() {
	s.gen++
	s.text = ""
	s.ok = false
}

// Update applies msg if it is this slot's current ClearMsg and reports whether
// the slot was cleared.
func (s *Slot) Update(msg tea.Msg) bool {
	cm, ok := msg.(ClearMsg)
	if !ok || cm.id != s.id || cm.gen != s.gen {
		return false
	}
	s.text = ""
	s.ok = false
	return true
}

func (s Slot) Text() string         { return s.text }
func (s Slot) OK() bool             { return s.ok }
func (s Slot) Active() bool         { return s.text != "" }
func (s Slot) Delay() time.Duration { return s.delay }
