// Package api talks to the portfolio backend: the contact form endpoint and
// the message moderation endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"folioterm/internal/model"
)

const (
	PathSubmitForm       = "/submit-form"
	PathAllMessages      = "/view-allMessages"
	PathAcceptedMessages = "/view-acceptedMessages"
	PathStatusOfMessage  = "/statusOfMessage"
)

// DefaultBaseURL is where the backend listens in development.
const DefaultBaseURL = "http://localhost:5000"

// Error is a non-2xx response. Message is the body's "message" field, when
// the body had one.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsRateLimited reports whether err is a 429 from the backend.
func IsRateLimited(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// TransportMessage returns the text of a failed round trip without the
// "Post \"http://...\":" prefix net/http adds.
func TransportMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}

type textResponse struct {
	Message string `json:"message"`
}

type listResponse struct {
	Message []model.Message `json:"message"`
}

// Client is safe for concurrent use. No timeout or retry is applied; callers
// bound requests with their context.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// SubmitForm posts a contact submission and returns the server's message.
func (c *Client) SubmitForm(ctx context.Context, sub model.ContactSubmission) (string, error) {
	var resp textResponse
	if err := c.do(ctx, http.MethodPost, PathSubmitForm, sub, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ListMessages fetches all (pending + accepted) or accepted-only messages.
func (c *Client) ListMessages(ctx context.Context, view model.ViewMode) ([]model.Message, error) {
	path := PathAllMessages
	if view == model.ViewAccepted {
		path = PathAcceptedMessages
	}
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Message, nil
}

// SetStatus accepts or rejects a message.
func (c *Client) SetStatus(ctx context.Context, upd model.StatusUpdate) (string, error) {
	var resp textResponse
	if err := c.do(ctx, http.MethodPost, PathStatusOfMessage, upd, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	c.log.Debug("api response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", res.StatusCode),
	)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &Error{StatusCode: res.StatusCode}
		var tr textResponse
		if json.Unmarshal(data, &tr) == nil {
			apiErr.Message = tr.Message
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
