// Package review is the moderation table for submitted contact messages.
//
// The list is a read-through copy of the server's: a fetch replaces it
// wholesale and a successful accept or reject removes the row. Fetches go
// through a request handle so switching views cancels the superseded fetch
// and any late result it still produces is dropped.
package review

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"folioterm/internal/api"
	"folioterm/internal/model"
	"folioterm/internal/transient"
)

// Service is the slice of the backend the table needs. *api.Client
// implements it.
type Service interface {
	ListMessages(ctx context.Context, view model.ViewMode) ([]model.Message, error)
	SetStatus(ctx context.Context, upd model.StatusUpdate) (string, error)
}

type State int

const (
	StateLoading State = iota
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "failed"
	}
}

var lastID int64

// request is the handle of the newest fetch.
type request struct {
	seq    int
	cancel context.CancelFunc
}

type fetchedMsg struct {
	table int
	seq   int
	view  model.ViewMode
	msgs  []model.Message
	err   error
}

type statusResultMsg struct {
	table  int
	list   int
	target model.Message
	status model.Status
	text   string
	err    error
}

// OpenMessageMsg asks the parent to show a message in full.
type OpenMessageMsg struct {
	Message model.Message
}

type Model struct {
	id  int
	svc Service
	ctx context.Context
	log *zap.Logger

	view     model.ViewMode
	state    State
	err      error
	messages []model.Message

	seq      int
	listSeq  int // seq of the fetch that filled messages
	inflight *request
	pending  map[model.MessageID]bool

	notice transient.Slot
	table  table.Model
	width  int
	height int
}

type Option func(*Model)

func WithLogger(l *zap.Logger) Option {
	return func(m *Model) { m.log = l }
}

// WithContext is the parent of every request context.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

func WithSlotOptions(opts ...transient.Option) Option {
	return func(m *Model) { m.notice = transient.New(opts...) }
}

func New(svc Service, opts ...Option) Model {
	m := Model{
		id:      int(atomic.AddInt64(&lastID, 1)),
		svc:     svc,
		ctx:     context.Background(),
		log:     zap.NewNop(),
		state:   StateLoading,
		pending: make(map[model.MessageID]bool),
		notice:  transient.New(),
		table: table.New(
			table.WithFocused(true),
			table.WithHeight(10),
		),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.table.SetStyles(tableStyles())
	m.syncTable()
	return m
}

// Init starts the first fetch.
func (m *Model) Init() tea.Cmd {
	return m.Fetch()
}

// Fetch (re)loads the current view, cancelling any fetch still in flight.
func (m *Model) Fetch() tea.Cmd {
	if m.inflight != nil {
		m.inflight.cancel()
	}
	m.seq++
	ctx, cancel := context.WithCancel(m.ctx)
	m.inflight = &request{seq: m.seq, cancel: cancel}
	m.state = StateLoading
	m.err = nil

	svc, view, seq, tableID := m.svc, m.view, m.seq, m.id
	return func() tea.Msg {
		msgs, err := svc.ListMessages(ctx, view)
		return fetchedMsg{table: tableID, seq: seq, view: view, msgs: msgs, err: err}
	}
}

// SetView switches between all and accepted messages and refetches. Selecting
// the current view is a no-op.
func (m *Model) SetView(v model.ViewMode) tea.Cmd {
	if v == m.view {
		return nil
	}
	m.view = v
	m.syncTable()
	return m.Fetch()
}

// Accept marks msg accepted on the server.
func (m *Model) Accept(msg model.Message) tea.Cmd {
	return m.setStatus(msg, model.StatusAccepted)
}

// Reject marks msg rejected on the server.
func (m *Model) Reject(msg model.Message) tea.Cmd {
	return m.setStatus(msg, model.StatusRejected)
}

func (m *Model) setStatus(target model.Message, status model.Status) tea.Cmd {
	if m.pending[target.ID] {
		return nil
	}
	m.pending[target.ID] = true

	upd := model.StatusUpdate{
		ID:      target.ID,
		Status:  status,
		Email:   target.Email,
		Name:    target.Name,
		Message: target.Message,
	}
	svc, ctx, tableID, list := m.svc, m.ctx, m.id, m.listSeq
	return func() tea.Msg {
		text, err := svc.SetStatus(ctx, upd)
		return statusResultMsg{table: tableID, list: list, target: target, status: status, text: text, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case fetchedMsg:
		if msg.table != m.id {
			return nil
		}
		m.applyFetch(msg)
		return nil

	case statusResultMsg:
		if msg.table != m.id {
			return nil
		}
		return m.applyStatus(msg)

	case transient.ClearMsg:
		m.notice.Update(msg)
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

func (m *Model) applyFetch(msg fetchedMsg) {
	if m.inflight == nil || msg.seq != m.inflight.seq {
		m.log.Debug("dropping stale fetch", zap.Int("seq", msg.seq), zap.Stringer("view", msg.view))
		return
	}
	m.inflight.cancel()
	m.inflight = nil

	if msg.err != nil {
		m.log.Error("error fetching messages", zap.Stringer("view", msg.view), zap.Error(msg.err))
		m.state = StateFailed
		m.err = msg.err
		return
	}
	m.state = StateLoaded
	m.messages = msg.msgs
	m.listSeq = msg.seq
	m.syncTable()
}

func (m *Model) applyStatus(msg statusResultMsg) tea.Cmd {
	delete(m.pending, msg.target.ID)
	verb := "accepting"
	if msg.status == model.StatusRejected {
		verb = "rejecting"
	}
	if msg.err != nil {
		m.log.Error("error "+verb+" message",
			zap.Stringer("id", msg.target.ID),
			zap.Error(msg.err),
		)
		return m.notice.Set(fmt.Sprintf("Error %s message: %s", verb, errorText(msg.err)), false)
	}
	m.log.Info("message status updated",
		zap.Stringer("id", msg.target.ID),
		zap.String("status", string(msg.status)),
		zap.String("message", msg.text),
	)
	if msg.list != m.listSeq {
		// A newer fetch already replaced the list the action was taken on.
		return nil
	}
	m.messages = model.RemoveByID(m.messages, msg.target.ID)
	m.syncTable()
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "v":
		if m.view == model.ViewAll {
			return m.SetView(model.ViewAccepted)
		}
		return m.SetView(model.ViewAll)
	case "A":
		return m.SetView(model.ViewAccepted)
	case "P":
		return m.SetView(model.ViewAll)
	case "ctrl+r":
		return m.Fetch()
	case "a":
		if sel, ok := m.Selected(); ok && m.view == model.ViewAll {
			return m.Accept(sel)
		}
		return nil
	case "r":
		if sel, ok := m.Selected(); ok && m.view == model.ViewAll {
			return m.Reject(sel)
		}
		return nil
	case "enter":
		if sel, ok := m.Selected(); ok {
			return func() tea.Msg { return OpenMessageMsg{Message: sel} }
		}
		return nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

// Selected returns the message under the cursor.
func (m *Model) Selected() (model.Message, bool) {
	if m.state != StateLoaded || len(m.messages) == 0 {
		return model.Message{}, false
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.messages) {
		return model.Message{}, false
	}
	return m.messages[i], true
}

func (m *Model) SetSize(w, h int) {
	m.width, m.height = w, h
	if h > 8 {
		m.table.SetHeight(h - 8)
	}
	m.syncTable()
}

func (m *Model) Mode() model.ViewMode { return m.view }
func (m *Model) State() State         { return m.state }
func (m *Model) Err() error           { return m.err }
func (m *Model) Notice() string       { return m.notice.Text() }

// Messages returns a copy of the cached list.
func (m *Model) Messages() []model.Message {
	out := make([]model.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// errorText prefers the server's own message, the way the status endpoint
// reports why an update was refused.
func errorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return api.TransportMessage(err)
}
