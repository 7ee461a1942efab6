// Package contact implements the contact form: field collection, validation,
// one asynchronous submit and the auto-clearing banners that report on it.
package contact

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"folioterm/internal/api"
	"folioterm/internal/model"
	"folioterm/internal/transient"
	"folioterm/internal/util"
)

const (
	MsgSubmitted    = "Form submitted successfully!"
	MsgInvalidEmail = util.MsgInvalidEmail
	MsgInvalidPhone = util.MsgInvalidPhone
	MsgNetwork      = "Network response was not ok"
)

// Submitter sends a submission to the backend. *api.Client implements it.
type Submitter interface {
	SubmitForm(ctx context.Context, sub model.ContactSubmission) (string, error)
}

// Focus positions, in tab order.
const (
	focusEmail = iota
	focusName
	focusPhone
	focusSubject
	focusMessage
	focusSend
)

var lastID int64

// Validate returns the banner text for the first rule sub breaks, or "" when
// sub may be sent.
func Validate(sub model.ContactSubmission) string {
	return util.ValidateSubmission(sub)
}

// FailureText maps a submit error to the banner shown to the user.
func FailureText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			if apiErr.Message != "" {
				return apiErr.Message
			}
			return http.StatusText(http.StatusTooManyRequests)
		}
		return MsgNetwork
	}
	return api.TransportMessage(err)
}

type submitResultMsg struct {
	form int
	text string
	err  error
}

// Model is one contact form instance.
type Model struct {
	id  int
	svc Submitter
	ctx context.Context
	log *zap.Logger

	inputs  []textinput.Model
	message textarea.Model
	focus   int

	submitting bool
	validation transient.Slot
	submission transient.Slot

	width int
}

type Option func(*Model)

func WithLogger(l *zap.Logger) Option {
	return func(m *Model) { m.log = l }
}

// WithContext bounds submit requests, normally by the program's lifetime.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithSlotOptions configures both banners, e.g. to inject a scheduler.
func WithSlotOptions(opts ...transient.Option) Option {
	return func(m *Model) {
		m.validation = transient.New(opts...)
		m.submission = transient.New(opts...)
	}
}

func New(svc Submitter, opts ...Option) Model {
	placeholders := []string{"Your Email", "Your Name", "Your Phone Number", "Subject"}
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		ti := textinput.New()
		ti.Placeholder = p
		ti.Prompt = "  "
		ti.CharLimit = 254
		inputs[i] = ti
	}
	inputs[focusPhone].CharLimit = 10

	ta := textarea.New()
	ta.Placeholder = "Message"
	ta.ShowLineNumbers = false
	ta.CharLimit = 5000
	ta.SetHeight(4)

	m := Model{
		id:         int(atomic.AddInt64(&lastID, 1)),
		svc:        svc,
		ctx:        context.Background(),
		log:        zap.NewNop(),
		inputs:     inputs,
		message:    ta,
		validation: transient.New(),
		submission: transient.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.inputs[focusEmail].Focus()
	return m
}

// Submission collects the current field values.
func (m *Model) Submission() model.ContactSubmission {
	return model.ContactSubmission{
		Email:   m.inputs[focusEmail].Value(),
		Name:    m.inputs[focusName].Value(),
		Phone:   m.inputs[focusPhone].Value(),
		Subject: m.inputs[focusSubject].Value(),
		Message: m.message.Value(),
	}
}

// Fill replaces the field values.
func (m *Model) Fill(sub model.ContactSubmission) {
	m.inputs[focusEmail].SetValue(sub.Email)
	m.inputs[focusName].SetValue(sub.Name)
	m.inputs[focusPhone].SetValue(sub.Phone)
	m.inputs[focusSubject].SetValue(sub.Subject)
	m.message.SetValue(sub.Message)
}

// Reset empties every field.
func (m *Model) Reset() {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.message.Reset()
}

// Submit validates the form and, if it passes, starts the POST. It does
// nothing while a submission is already in flight.
func (m *Model) Submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	sub := m.Submission()
	if text := Validate(sub); text != "" {
		m.log.Debug("contact form rejected", zap.String("reason", text))
		return m.validation.Set(text, false)
	}

	m.validation.Clear()
	m.submission.Clear()
	m.submitting = true

	svc, ctx, form := m.svc, m.ctx, m.id
	return func() tea.Msg {
		text, err := svc.SubmitForm(ctx, sub)
		return submitResultMsg{form: form, text: text, err: err}
	}
}

func (m *Model) finish(res submitResultMsg) tea.Cmd {
	m.submitting = false
	if res.err != nil {
		m.log.Error("error submitting form", zap.Error(res.err))
		return m.submission.Set(FailureText(res.err), false)
	}
	m.log.Info("form submitted successfully", zap.String("message", res.text))
	m.Reset()
	return m.submission.Set(MsgSubmitted, true)
}

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case transient.ClearMsg:
		m.validation.Update(msg)
		m.submission.Update(msg)
		return nil

	case submitResultMsg:
		if msg.form != m.id {
			return nil
		}
		return m.finish(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.updateFocused(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+s":
		return m.Submit()
	case "tab":
		return m.setFocus(m.focus + 1)
	case "shift+tab":
		return m.setFocus(m.focus - 1)
	case "down":
		if m.focus != focusMessage {
			return m.setFocus(m.focus + 1)
		}
	case "up":
		if m.focus != focusMessage {
			return m.setFocus(m.focus - 1)
		}
	case "enter":
		switch {
		case m.focus == focusSend:
			return m.Submit()
		case m.focus < focusMessage:
			return m.setFocus(m.focus + 1)
		}
	}
	return m.updateFocused(msg)
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.focus < focusMessage:
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	case m.focus == focusMessage:
		m.message, cmd = m.message.Update(msg)
	}
	return cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	n := focusSend + 1
	i = ((i % n) + n) % n
	m.focus = i
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	m.message.Blur()
	switch {
	case i < focusMessage:
		return m.inputs[i].Focus()
	case i == focusMessage:
		return m.message.Focus()
	}
	return nil
}

// Focus puts the cursor back on the current field.
func (m *Model) Focus() tea.Cmd { return m.setFocus(m.focus) }

// Blur removes the cursor from every field.
func (m *Model) Blur() {
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	m.message.Blur()
}

// Typing reports whether keys should go to a text field rather than to
// global shortcuts.
func (m *Model) Typing() bool { return m.focus != focusSend }

func (m *Model) SetWidth(w int) {
	m.width = w
	fw := formWidth(w)
	for i := range m.inputs {
		m.inputs[i].Width = fw - 4
	}
	m.message.SetWidth(fw - 2)
}

func (m *Model) Submitting() bool          { return m.submitting }
func (m *Model) ValidationMessage() string { return m.validation.Text() }
func (m *Model) SubmissionMessage() string { return m.submission.Text() }
func (m *Model) SubmissionSuccess() bool   { return m.submission.OK() }
