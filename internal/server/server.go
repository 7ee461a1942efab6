// Package server is a development implementation of the portfolio API: the
// four contact endpoints plus a health check, backed by a MessageStore.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"folioterm/internal/api"
	"folioterm/internal/model"
	"folioterm/internal/store"
	"folioterm/internal/util"

	"go.uber.org/zap"
)

// PathHealth is served alongside the client's four endpoints.
const PathHealth = "/healthz"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Notifier is told about every accepted or rejected message. *gmail.Notifier
// implements it.
type Notifier interface {
	StatusChanged(ctx context.Context, msg model.Message) error
}

type Server struct {
	store       store.MessageStore
	notifier    Notifier
	log         *zap.Logger
	limiter     *RateLimiter
	allowOrigin string
	proxies     int
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.log = l } }

// WithNotifier enables status change notifications.
func WithNotifier(n Notifier) Option { return func(s *Server) { s.notifier = n } }

func WithAllowOrigin(origin string) Option { return func(s *Server) { s.allowOrigin = origin } }

// WithRateLimit limits submissions to max per client IP per window.
func WithRateLimit(max int, window time.Duration) Option {
	return func(s *Server) {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		s.limiter = NewRateLimiter(max, window, s.log)
	}
}

// WithTrustedProxies makes the rate limiter key clients by the X-Forwarded-For
// entry n hops from the right, as written by n trusted reverse proxies.
func WithTrustedProxies(n int) Option { return func(s *Server) { s.proxies = n } }

// New returns a Server. Call Close to stop the rate limiter.
func New(st store.MessageStore, opts ...Option) *Server {
	s := &Server{store: st, log: zap.NewNop(), allowOrigin: "*"}
	for _, o := range opts {
		o(s)
	}
	if s.limiter == nil {
		s.limiter = NewRateLimiter(5, time.Minute, s.log)
	}
	s.limiter.log = s.log
	s.limiter.trustedProxyCount = s.proxies
	return s
}

func (s *Server) Close() {
	s.limiter.Stop()
}

// Handler returns the routed API with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST "+api.PathSubmitForm, s.limiter.Middleware(http.HandlerFunc(s.SubmitForm)))
	mux.HandleFunc("GET "+api.PathAllMessages, s.AllMessages)
	mux.HandleFunc("GET "+api.PathAcceptedMessages, s.AcceptedMessages)
	mux.HandleFunc("POST "+api.PathStatusOfMessage, s.StatusOfMessage)
	mux.HandleFunc("GET "+PathHealth, s.Health)
	return RequestLogger(s.log, CORS(s.allowOrigin, mux))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// SubmitForm handles POST /submit-form. The submission is checked with the
// same rules the form applies before sending.
func (s *Server) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var sub model.ContactSubmission
	if !decodeBody(w, r, &sub) {
		return
	}
	if reason := util.ValidateSubmission(sub); reason != "" {
		writeMessage(w, http.StatusBadRequest, reason)
		return
	}

	msg := model.Message{
		Email:   sub.Email,
		Name:    sub.Name,
		Phone:   sub.Phone,
		Subject: sub.Subject,
		Message: sub.Message,
	}
	if err := s.store.Save(r.Context(), &msg); err != nil {
		s.log.Error("error saving message", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Could not save message")
		return
	}
	s.log.Info("message received", zap.Stringer("id", msg.ID), zap.String("email", msg.Email))
	writeMessage(w, http.StatusOK, "Form submitted successfully")
}

type listResponse struct {
	Message []model.Message `json:"message"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, statuses ...model.Status) {
	msgs, err := s.store.List(r.Context(), statuses...)
	if err != nil {
		s.log.Error("error listing messages", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Could not load messages")
		return
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	writeJSON(w, http.StatusOK, listResponse{Message: msgs})
}

// AllMessages handles GET /view-allMessages. Rejected messages are left out.
func (s *Server) AllMessages(w http.ResponseWriter, r *http.Request) {
	s.list(w, r, model.StatusPending, model.StatusAccepted)
}

// AcceptedMessages handles GET /view-acceptedMessages.
func (s *Server) AcceptedMessages(w http.ResponseWriter, r *http.Request) {
	s.list(w, r, model.StatusAccepted)
}

// StatusOfMessage handles POST /statusOfMessage.
func (s *Server) StatusOfMessage(w http.ResponseWriter, r *http.Request) {
	var upd model.StatusUpdate
	if !decodeBody(w, r, &upd) {
		return
	}
	if upd.ID.IsZero() {
		writeMessage(w, http.StatusBadRequest, "ID is required")
		return
	}
	if upd.Status != model.StatusAccepted && upd.Status != model.StatusRejected {
		writeMessage(w, http.StatusBadRequest, "Invalid status")
		return
	}

	msg, err := s.store.UpdateStatus(r.Context(), upd.ID, upd.Status)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Message not found")
		return
	}
	if err != nil {
		s.log.Error("error updating status", zap.Stringer("id", upd.ID), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Could not update status")
		return
	}

	if s.notifier != nil {
		if err := s.notifier.StatusChanged(r.Context(), msg); err != nil {
			// The status change stands even if the email does not go out.
			s.log.Error("error sending notification", zap.Stringer("id", msg.ID), zap.Error(err))
		}
	}

	verb := "accepted"
	if upd.Status == model.StatusRejected {
		verb = "rejected"
	}
	writeMessage(w, http.StatusOK, "Message "+verb)
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Message: "folioapi"})
}
