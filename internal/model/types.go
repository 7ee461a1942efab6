package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ContactSubmission is the body POSTed to /submit-form. It only lives for the
// duration of one submit call.
type ContactSubmission struct {
	Email   string `json:"Email"`
	Name    string `json:"Name"`
	Phone   string `json:"Phone"`
	Subject string `json:"Subject"`
	Message string `json:"Message"`
}

// Status is the moderation state of a contact message.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Label is the human form shown in the status column.
func (s Status) Label() string {
	if s == StatusAccepted {
		return "Accepted"
	}
	return "Pending"
}

// MessageID identifies a message on the server. Backends disagree on whether
// IDs are numbers or strings, so both decode and the ID re-encodes exactly as
// it arrived.
type MessageID struct {
	v   string
	num bool
}

// StringID returns an ID carried as a JSON string.
func StringID(s string) MessageID { return MessageID{v: s} }

// IntID returns an ID carried as a JSON number.
func IntID(n int64) MessageID { return MessageID{v: strconv.FormatInt(n, 10), num: true} }

func (id MessageID) String() string { return id.v }

// IsZero reports whether no ID was set.
func (id MessageID) IsZero() bool { return id.v == "" }

// IsNumber reports whether the ID travels as a JSON number.
func (id MessageID) IsNumber() bool { return id.num }

// Equal reports whether both IDs have the same text and wire form.
func (id MessageID) Equal(other MessageID) bool { return id == other }

// Int64 parses the ID as a decimal integer, whatever its wire form.
func (id MessageID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(id.v, 10, 64)
	return n, err == nil
}

func (id MessageID) MarshalJSON() ([]byte, error) {
	if id.num {
		return []byte(id.v), nil
	}
	return json.Marshal(id.v)
}

func (id *MessageID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = MessageID{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("message id: %w", err)
	}
	// Keep the literal so 1e3 or a 20 digit ID goes back untouched.
	*id = MessageID{v: string(b), num: true}
	return nil
}

// Message is the client copy of a stored contact message.
type Message struct {
	ID      MessageID `json:"ID"`
	Email   string    `json:"Email"`
	Name    string    `json:"Name"`
	Phone   string    `json:"Phone,omitempty"`
	Subject string    `json:"Subject,omitempty"`
	Message string    `json:"Message"`
	Status  Status    `json:"status"`
}

// StatusUpdate is the body POSTed to /statusOfMessage.
type StatusUpdate struct {
	ID      MessageID `json:"ID"`
	Status  Status    `json:"status"`
	Email   string    `json:"Email"`
	Name    string    `json:"Name"`
	Message string    `json:"Message"`
}

// ViewMode selects which listing endpoint the review table reads.
type ViewMode int

const (
	ViewAll ViewMode = iota
	ViewAccepted
)

func (v ViewMode) String() string {
	if v == ViewAccepted {
		return "accepted"
	}
	return "all"
}

// RemoveByID returns msgs without the entry whose ID is id. The input slice is
// not modified.
func RemoveByID(msgs []Message, id MessageID) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}
