package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"folioterm/internal/api"
	"folioterm/internal/model"
	"folioterm/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingNotifier struct {
	mu   sync.Mutex
	got  []model.Message
	fail error
}

func (n *recordingNotifier) StatusChanged(_ context.Context, msg model.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, msg)
	return n.fail
}

type fixture struct {
	srv    *Server
	http   *httptest.Server
	client *api.Client
	store  *store.SQLiteStore
	notify *recordingNotifier
	logs   *observer.ObservedLogs
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	n := &recordingNotifier{}
	opts = append([]Option{WithLogger(zap.New(core)), WithNotifier(n)}, opts...)
	s := New(st, opts...)
	hs := httptest.NewServer(s.Handler())

	t.Cleanup(func() {
		hs.Close()
		s.Close()
		st.Close()
	})
	return &fixture{
		srv:    s,
		http:   hs,
		client: api.NewClient(hs.URL, api.WithHTTPClient(hs.Client())),
		store:  st,
		notify: n,
		logs:   logs,
	}
}

var valid = model.ContactSubmission{
	Email:   "ada@example.com",
	Name:    "Ada",
	Phone:   "9876543210",
	Subject: "Hello",
	Message: "Let's talk",
}

func TestSubmitListAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	text, err := f.client.SubmitForm(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, "Form submitted successfully", text)

	second := valid
	second.Email = "bob@example.com"
	second.Name = "Bob"
	_, err = f.client.SubmitForm(ctx, second)
	require.NoError(t, err)

	all, err := f.client.ListMessages(ctx, model.ViewAll)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.StatusPending, all[0].Status)
	assert.Equal(t, "Hello", all[0].Subject)

	accepted, err := f.client.ListMessages(ctx, model.ViewAccepted)
	require.NoError(t, err)
	assert.Empty(t, accepted)

	text, err = f.client.SetStatus(ctx, model.StatusUpdate{
		ID: all[0].ID, Status: model.StatusAccepted,
		Email: all[0].Email, Name: all[0].Name, Message: all[0].Message,
	})
	require.NoError(t, err)
	assert.Equal(t, "Message accepted", text)

	_, err = f.client.SetStatus(ctx, model.StatusUpdate{ID: all[1].ID, Status: model.StatusRejected})
	require.NoError(t, err)

	accepted, err = f.client.ListMessages(ctx, model.ViewAccepted)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, all[0].ID, accepted[0].ID)

	all, err = f.client.ListMessages(ctx, model.ViewAll)
	require.NoError(t, err)
	require.Len(t, all, 1, "rejected messages leave the all view")
	assert.Equal(t, model.StatusAccepted, all[0].Status)

	require.Len(t, f.notify.got, 2)
	assert.Equal(t, model.StatusAccepted, f.notify.got[0].Status)
	assert.Equal(t, "ada@example.com", f.notify.got[0].Email)
	assert.Equal(t, model.StatusRejected, f.notify.got[1].Status)
}

func TestSubmitForm_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		edit func(*model.ContactSubmission)
		want string
	}{
		{"missing fields", func(s *model.ContactSubmission) { s.Name, s.Subject = "", "" }, "Name, Subject cannot be empty"},
		{"bad email", func(s *model.ContactSubmission) { s.Email = "nope" }, "Invalid email format"},
		{"bad phone", func(s *model.ContactSubmission) { s.Phone = "12345" }, "Invalid phone number format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := valid
			tt.edit(&sub)
			_, err := f.client.SubmitForm(ctx, sub)
			var apiErr *api.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}

	msgs, err := f.store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSubmitForm_RateLimited(t *testing.T) {
	f := newFixture(t, WithRateLimit(2, time.Minute))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.client.SubmitForm(ctx, valid)
		require.NoError(t, err)
	}

	_, err := f.client.SubmitForm(ctx, valid)
	require.True(t, api.IsRateLimited(err), "got %v", err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, MsgTooManyRequests, apiErr.Message)

	// Listing is not limited.
	_, err = f.client.ListMessages(ctx, model.ViewAll)
	require.NoError(t, err)
	assert.Equal(t, 1, f.logs.FilterMessage("rate limited").Len())
}

func TestSubmitForm_RateLimitedPerForwardedClient(t *testing.T) {
	submit := func(f *fixture, forwardedFor string) int {
		t.Helper()
		body, err := json.Marshal(valid)
		require.NoError(t, err)
		req, err := http.NewRequest(http.MethodPost, f.http.URL+api.PathSubmitForm, bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		resp, err := f.http.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	behindProxy := newFixture(t, WithRateLimit(1, time.Minute), WithTrustedProxies(1))
	assert.Equal(t, http.StatusOK, submit(behindProxy, "203.0.113.1"))
	assert.Equal(t, http.StatusOK, submit(behindProxy, "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, submit(behindProxy, "198.51.100.9, 203.0.113.1"),
		"only the entry written by the trusted proxy counts")

	direct := newFixture(t, WithRateLimit(1, time.Minute))
	assert.Equal(t, http.StatusOK, submit(direct, "203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, submit(direct, "203.0.113.2"),
		"the header is ignored without trusted proxies")
}

func TestStatusOfMessage_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.SetStatus(ctx, model.StatusUpdate{ID: model.IntID(999), Status: model.StatusAccepted})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Message not found", apiErr.Message)

	_, err = f.client.SetStatus(ctx, model.StatusUpdate{ID: model.IntID(1), Status: model.StatusPending})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid status", apiErr.Message)

	_, err = f.client.SetStatus(ctx, model.StatusUpdate{Status: model.StatusAccepted})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ID is required", apiErr.Message)

	resp, err := f.http.Client().Post(f.http.URL+api.PathStatusOfMessage, "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusOfMessage_NotifyFailureKeepsStatus(t *testing.T) {
	f := newFixture(t)
	f.notify.fail = errors.New("gmail down")
	ctx := context.Background()

	_, err := f.client.SubmitForm(ctx, valid)
	require.NoError(t, err)
	all, err := f.client.ListMessages(ctx, model.ViewAll)
	require.NoError(t, err)

	_, err = f.client.SetStatus(ctx, model.StatusUpdate{ID: all[0].ID, Status: model.StatusAccepted})
	require.NoError(t, err)

	accepted, err := f.client.ListMessages(ctx, model.ViewAccepted)
	require.NoError(t, err)
	assert.Len(t, accepted, 1)
	assert.Equal(t, 1, f.logs.FilterMessage("error sending notification").Len())
}

func TestNumericIDsOnTheWire(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.SubmitForm(context.Background(), valid)
	require.NoError(t, err)

	resp, err := f.http.Client().Get(f.http.URL + api.PathAllMessages)
	require.NoError(t, err)
	defer resp.Body.Close()
	var raw struct {
		Message []map[string]any `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	require.Len(t, raw.Message, 1)
	assert.Equal(t, float64(1), raw.Message[0]["ID"])
	assert.Equal(t, "pending", raw.Message[0]["status"])
}

func TestHealthAndMethods(t *testing.T) {
	f := newFixture(t)

	resp, err := f.http.Client().Get(f.http.URL + PathHealth)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	resp, err = f.http.Client().Get(f.http.URL + api.PathSubmitForm)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	require.NoError(t, f.store.Close())
	resp, err = f.http.Client().Get(f.http.URL + PathHealth)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
