package memory

import (
	"context"
	"testing"
	"time"

	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/storage"
)

func testEvent(owner, id string, startHour int) *storage.Event {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	return &storage.Event{
		ID:      id,
		OwnerID: owner,
		Title:   "test " + id,
		Start:   day.Add(time.Duration(startHour) * time.Hour),
		End:     day.Add(time.Duration(startHour+1) * time.Hour),
	}
}

func TestStore_InsertAndFind(t *testing.T) {
	store := New()
	ctx := context.Background()

	// Test getting non-existent event
	_, err := store.FindByID(ctx, "alice", "nonexistent")
	if err == nil {
		t.Error("expected error getting non-existent event")
	} else if err.(*storage.Error).Type != storage.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	ev := testEvent("alice", "ev1", 10)
	inserted, err := store.Insert(ctx, ev)
	if err != nil {
		t.Fatalf("unexpected error inserting event: %v", err)
	}
	if inserted.Created.IsZero() || inserted.Modified.IsZero() {
		t.Error("expected Created and Modified to be set on insert")
	}

	// Test inserting duplicate event
	if _, err := store.Insert(ctx, ev); err == nil {
		t.Error("expected error inserting duplicate event")
	}

	got, err := store.FindByID(ctx, "alice", "ev1")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if got.Title != ev.Title {
		t.Errorf("got title %q, want %q", got.Title, ev.Title)
	}

	// The store must not leak events across owners.
	if _, err := store.FindByID(ctx, "bob", "ev1"); err == nil {
		t.Error("expected not found for another owner's event")
	}
}

func TestStore_FindByOwner(t *testing.T) {
	store := New()
	ctx := context.Background()

	for i, id := range []string{"b", "c", "a"} {
		if _, err := store.Insert(ctx, testEvent("alice", id, 12-i)); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	if _, err := store.Insert(ctx, testEvent("bob", "other", 9)); err != nil {
		t.Fatalf("insert bob: %v", err)
	}

	events, err := store.FindByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	// Sorted by start time ascending.
	for i := 1; i < len(events); i++ {
		if events[i].Start.Before(events[i-1].Start) {
			t.Errorf("events not sorted: %v before %v", events[i].Start, events[i-1].Start)
		}
	}
}

func TestStore_Replace(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.Replace(ctx, "missing", testEvent("alice", "missing", 10)); err == nil {
		t.Error("expected error replacing non-existent event")
	}

	inserted, err := store.Insert(ctx, testEvent("alice", "ev1", 10))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated := inserted.Clone()
	updated.Title = "renamed"
	got, err := store.Replace(ctx, "ev1", updated)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got.Title != "renamed" {
		t.Errorf("got title %q, want renamed", got.Title)
	}
	if !got.Created.Equal(inserted.Created) {
		t.Error("replace must preserve Created")
	}
}

func TestStore_Remove(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.Remove(ctx, "alice", "missing"); err == nil {
		t.Error("expected error removing non-existent event")
	}

	if _, err := store.Insert(ctx, testEvent("alice", "ev1", 10)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Remove(ctx, "alice", "ev1"); err != nil {
		t.Errorf("unexpected error removing event: %v", err)
	}
	if _, err := store.FindByID(ctx, "alice", "ev1"); err == nil {
		t.Error("expected not found after remove")
	}
}

func TestStore_CloneIsolation(t *testing.T) {
	store := New()
	ctx := context.Background()

	ev := testEvent("alice", "ev1", 10)
	ev.ExceptionDates = []time.Time{ev.Start}
	if _, err := store.Insert(ctx, ev); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, _ := store.FindByID(ctx, "alice", "ev1")
	got.Title = "mutated"
	got.ExceptionDates[0] = got.ExceptionDates[0].Add(time.Hour)

	again, _ := store.FindByID(ctx, "alice", "ev1")
	if again.Title == "mutated" {
		t.Error("store returned a shared reference, want deep copy")
	}
	if !again.ExceptionDates[0].Equal(ev.Start) {
		t.Error("exception dates shared between copies")
	}
}
