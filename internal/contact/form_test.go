package contact

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioterm/internal/api"
	"folioterm/internal/model"
	"folioterm/internal/transient"
)

type mockSubmitter struct {
	calls      int
	submitFunc func(ctx context.Context, sub model.ContactSubmission) (string, error)
}

func (m *mockSubmitter) SubmitForm(ctx context.Context, sub model.ContactSubmission) (string, error) {
	m.calls++
	if m.submitFunc != nil {
		return m.submitFunc(ctx, sub)
	}
	return "ok", nil
}

// simClock fires scheduled clears when the returned command runs and keeps
// the requested delays, so tests simulate time without sleeping.
type simClock struct {
	delays []time.Duration
}

func (c *simClock) schedule(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	c.delays = append(c.delays, d)
	return func() tea.Msg { return fn(time.Time{}.Add(d)) }
}

func newForm(svc Submitter) (Model, *simClock) {
	clock := &simClock{}
	return New(svc, WithSlotOptions(transient.WithScheduler(clock.schedule))), clock
}

var validSubmission = model.ContactSubmission{
	Email:   "a.b@example.co",
	Name:    "N",
	Phone:   "9876543210",
	Subject: "S",
	Message: "hello",
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		sub  model.ContactSubmission
		want string
	}{
		{"email missing", model.ContactSubmission{Name: "N", Phone: "9876543210", Subject: "S", Message: "m"}, "Email cannot be empty"},
		{"several missing", model.ContactSubmission{Name: "N"}, "Email, Phone, Subject cannot be empty"},
		{"bad email", model.ContactSubmission{Email: "bad", Name: "N", Phone: "9876543210", Subject: "S"}, MsgInvalidEmail},
		{"bad phone", model.ContactSubmission{Email: "a@b.co", Name: "N", Phone: "1234567890", Subject: "S"}, MsgInvalidPhone},
		{"message optional", model.ContactSubmission{Email: "a@b.co", Name: "N", Phone: "9876543210", Subject: "S"}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Validate(tc.sub))
		})
	}
}

func TestSubmit_EmptyEmail(t *testing.T) {
	svc := &mockSubmitter{}
	m, clock := newForm(svc)
	m.Fill(model.ContactSubmission{Name: "N", Phone: "9876543210", Subject: "S", Message: "m"})

	cmd := m.Submit()
	require.NotNil(t, cmd)
	assert.Equal(t, "Email cannot be empty", m.ValidationMessage())
	assert.False(t, m.Submitting())
	assert.Equal(t, []time.Duration{3 * time.Second}, clock.delays)

	m.Update(cmd())
	assert.Empty(t, m.ValidationMessage())
	assert.Zero(t, svc.calls)
}

func TestSubmit_InvalidEmailSkipsNetwork(t *testing.T) {
	svc := &mockSubmitter{}
	m, _ := newForm(svc)
	m.Fill(model.ContactSubmission{Email: "bad", Name: "N", Phone: "9876543210", Subject: "S"})

	m.Submit()
	assert.Equal(t, MsgInvalidEmail, m.ValidationMessage())
	assert.Zero(t, svc.calls)
}

func TestSubmit_InvalidPhone(t *testing.T) {
	svc := &mockSubmitter{}
	m, _ := newForm(svc)
	m.Fill(model.ContactSubmission{Email: "a@b.co", Name: "N", Phone: "98765", Subject: "S"})

	m.Submit()
	assert.Equal(t, MsgInvalidPhone, m.ValidationMessage())
	assert.Zero(t, svc.calls)
}

func TestSubmit_Success(t *testing.T) {
	var sent model.ContactSubmission
	svc := &mockSubmitter{submitFunc: func(ctx context.Context, sub model.ContactSubmission) (string, error) {
		sent = sub
		return "Form data saved", nil
	}}
	m, clock := newForm(svc)
	m.Fill(validSubmission)

	cmd := m.Submit()
	require.NotNil(t, cmd)
	assert.True(t, m.Submitting())
	assert.Empty(t, m.ValidationMessage())
	assert.Nil(t, m.Submit(), "second submit while in flight must be ignored")

	clear := m.Update(cmd())
	require.NotNil(t, clear)
	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, validSubmission, sent)
	assert.False(t, m.Submitting())
	assert.True(t, m.SubmissionSuccess())
	assert.Equal(t, MsgSubmitted, m.SubmissionMessage())
	assert.Equal(t, model.ContactSubmission{}, m.Submission(), "fields reset after success")
	assert.Equal(t, []time.Duration{3 * time.Second}, clock.delays)

	m.Update(clear())
	assert.Empty(t, m.SubmissionMessage())
	assert.False(t, m.SubmissionSuccess())
}

func TestSubmit_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limited", &api.Error{StatusCode: http.StatusTooManyRequests, Message: "Too many requests"}, "Too many requests"},
		{"rate limited without body", &api.Error{StatusCode: http.StatusTooManyRequests}, "Too Many Requests"},
		{"server error", &api.Error{StatusCode: http.StatusInternalServerError, Message: "db down"}, MsgNetwork},
		{"transport", &url.Error{Op: "Post", URL: "http://localhost:5000/submit-form", Err: errors.New("connection refused")}, "connection refused"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockSubmitter{submitFunc: func(ctx context.Context, sub model.ContactSubmission) (string, error) {
				return "", tc.err
			}}
			m, _ := newForm(svc)
			m.Fill(validSubmission)

			cmd := m.Submit()
			clear := m.Update(cmd())
			require.NotNil(t, clear)
			assert.Equal(t, tc.want, m.SubmissionMessage())
			assert.False(t, m.SubmissionSuccess())
			assert.False(t, m.Submitting())
			assert.Equal(t, validSubmission, m.Submission(), "fields kept after failure")

			m.Update(clear())
			assert.Empty(t, m.SubmissionMessage())
		})
	}
}

func TestSubmit_NewerMessageNotWipedByOlderClear(t *testing.T) {
	m, _ := newForm(&mockSubmitter{})
	m.Fill(model.ContactSubmission{Name: "N", Phone: "9876543210", Subject: "S"})
	first := m.Submit()

	m.Fill(model.ContactSubmission{Email: "bad", Name: "N", Phone: "9876543210", Subject: "S"})
	second := m.Submit()

	m.Update(first())
	assert.Equal(t, MsgInvalidEmail, m.ValidationMessage())
	m.Update(second())
	assert.Empty(t, m.ValidationMessage())
}

func TestSubmit_ResultForOtherFormIgnored(t *testing.T) {
	a, _ := newForm(&mockSubmitter{})
	b, _ := newForm(&mockSubmitter{})
	a.Fill(validSubmission)
	b.Fill(validSubmission)

	cmd := a.Submit()
	b.Submit()
	assert.Nil(t, b.Update(cmd()))
	assert.True(t, b.Submitting())
	assert.Equal(t, validSubmission, b.Submission())
}

func TestKeys_CtrlSAndSendButton(t *testing.T) {
	svc := &mockSubmitter{}
	m, _ := newForm(svc)
	m.Fill(validSubmission)

	cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	assert.True(t, m.Submitting())
	m.Update(cmd())

	m.Fill(validSubmission)
	for i := 0; i < focusSend; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	assert.False(t, m.Typing())
	cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, 2, svc.calls)
}

func TestView_ButtonReflectsSubmitting(t *testing.T) {
	m, _ := newForm(&mockSubmitter{})
	m.Fill(validSubmission)
	assert.Contains(t, m.View(), "Send")

	m.Submit()
	assert.Contains(t, m.View(), "Submitting...")
}

func TestSubmit_AgainstServer_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"message":"Too many requests"}`)
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, api.WithHTTPClient(srv.Client()))
	m, _ := newForm(client)
	m.Fill(validSubmission)

	cmd := m.Submit()
	m.Update(cmd())
	assert.Equal(t, "Too many requests", m.SubmissionMessage())
	assert.False(t, m.SubmissionSuccess())
}
