package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"folioterm/internal/model"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// exerciseStore runs the behaviour every MessageStore must share.
func exerciseStore(t *testing.T, s MessageStore) {
	ctx := context.Background()

	in := []model.Message{
		{Email: "a@b.co", Name: "A", Phone: "9876543210", Subject: "hi", Message: "first"},
		{Email: "c@d.co", Name: "C", Phone: "9876543211", Subject: "yo", Message: "second"},
		{Email: "e@f.co", Name: "E", Phone: "9876543212", Subject: "hey", Message: "third"},
	}
	for i := range in {
		in[i].Status = model.StatusAccepted // Save must force pending
		if err := s.Save(ctx, &in[i]); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if in[i].ID.IsZero() {
			t.Fatalf("Save did not assign an ID")
		}
		if in[i].Status != model.StatusPending {
			t.Fatalf("Save status = %q, want pending", in[i].Status)
		}
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff(in, all); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}

	got, err := s.UpdateStatus(ctx, in[1].ID, model.StatusAccepted)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != model.StatusAccepted || got.Email != "c@d.co" {
		t.Fatalf("UpdateStatus returned %+v", got)
	}
	if _, err := s.UpdateStatus(ctx, in[2].ID, model.StatusRejected); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	visible, err := s.List(ctx, model.StatusPending, model.StatusAccepted)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	ids := func(msgs []model.Message) []model.MessageID {
		out := make([]model.MessageID, len(msgs))
		for i, m := range msgs {
			out[i] = m.ID
		}
		return out
	}
	if diff := cmp.Diff([]model.MessageID{in[0].ID, in[1].ID}, ids(visible)); diff != "" {
		t.Fatalf("pending+accepted mismatch (-want +got):\n%s", diff)
	}

	accepted, err := s.List(ctx, model.StatusAccepted)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]model.MessageID{in[1].ID}, ids(accepted)); diff != "" {
		t.Fatalf("accepted mismatch (-want +got):\n%s", diff)
	}

	for _, id := range []model.MessageID{model.IntID(424242), model.StringID("not-a-number")} {
		if _, err := s.UpdateStatus(ctx, id, model.StatusAccepted); !errors.Is(err, ErrNotFound) {
			t.Fatalf("UpdateStatus(%s) err = %v, want ErrNotFound", id, err)
		}
		if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get(%s) err = %v, want ErrNotFound", id, err)
		}
	}

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, testStore(t))
}

func TestSQLiteStore_EmptyListIsNotNil(t *testing.T) {
	s := testStore(t)
	msgs, err := s.List(context.Background(), model.StatusAccepted)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if msgs == nil || len(msgs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", msgs)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "folioapi.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	msg := model.Message{Email: "a@b.co", Name: "A", Message: "kept"}
	if err := s.Save(context.Background(), &msg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Close()

	s, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Get(context.Background(), msg.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(msg, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

// Set FOLIOAPI_TEST_DATABASE_URL to a disposable database to run this.
func TestPgStore(t *testing.T) {
	dsn := os.Getenv("FOLIOAPI_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("FOLIOAPI_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := NewPgStore(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPgStore: %v", err)
	}
	defer s.Close()
	if _, err := s.pool.Exec(ctx, "TRUNCATE contact_messages RESTART IDENTITY"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	exerciseStore(t, s)
}

func TestIsPostgres(t *testing.T) {
	tests := []struct {
		dsn  string
		want bool
	}{
		{"postgres://u:p@localhost/db", true},
		{"postgresql://localhost/db", true},
		{"/home/me/.config/folioterm/folioapi.db", false},
		{"folioapi.db", false},
	}
	for _, tt := range tests {
		if got := IsPostgres(tt.dsn); got != tt.want {
			t.Errorf("IsPostgres(%q) = %v, want %v", tt.dsn, got, tt.want)
		}
	}
}
