package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleCall(summary string) Call {
	return Call{
		CallerName: "Jo Smith",
		Phone:      "1234567890",
		Department: "Support",
		Priority:   PriorityHigh,
		Summary:    summary,
		Transcript: "hello, this is a test call",
		Response:   "we will call back",
	}
}

func TestInsertRoundTrip(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()

	saved, err := st.Insert(ctx, sampleCall("needs help with login"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.ID == 0 || saved.Timestamp.IsZero() {
		t.Fatalf("id/timestamp not assigned: %+v", saved)
	}

	got, err := st.GetCall(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected record")
	}
	if got.CallerName != saved.CallerName || got.Phone != saved.Phone ||
		got.Department != saved.Department || got.Priority != saved.Priority ||
		got.Summary != saved.Summary || got.Transcript != saved.Transcript ||
		got.Response != saved.Response {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, saved)
	}
}

func TestGetCallAbsent(t *testing.T) {
	st := openTest(t)
	got, err := st.GetCall(context.Background(), 999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for absent id, got %+v", got)
	}
}

func TestListNewestFirst(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()
	var ids []int64
	for _, s := range []string{"call A", "call B", "call C"} {
		saved, err := st.Insert(ctx, sampleCall(s))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		ids = append(ids, saved.ID)
	}
	calls, err := st.ListCalls(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	// timestamps collide at second resolution; id descending breaks the tie
	if calls[0].ID != ids[2] || calls[1].ID != ids[1] || calls[2].ID != ids[0] {
		t.Fatalf("wrong order: %v", []int64{calls[0].ID, calls[1].ID, calls[2].ID})
	}
}

func TestListPagination(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := st.Insert(ctx, sampleCall("call")); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	page, err := st.ListCalls(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(page))
	}
}

func TestInsertRejectsEmptySummary(t *testing.T) {
	st := openTest(t)
	call := sampleCall("")
	if _, err := st.Insert(context.Background(), call); !errors.Is(err, ErrEmptySummary) {
		t.Fatalf("expected ErrEmptySummary, got %v", err)
	}
}

func TestInsertRejectsEmptyTranscript(t *testing.T) {
	st := openTest(t)
	call := sampleCall("summary")
	call.Transcript = ""
	if _, err := st.Insert(context.Background(), call); !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("expected ErrEmptyTranscript, got %v", err)
	}
}

func TestInsertCoercesUnknownPriority(t *testing.T) {
	st := openTest(t)
	call := sampleCall("summary")
	call.Priority = "urgent"
	saved, err := st.Insert(context.Background(), call)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.Priority != PriorityMedium {
		t.Fatalf("expected Medium, got %q", saved.Priority)
	}
}

func TestSearchCalls(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()
	a := sampleCall("printer is on fire")
	a.Department = "Facilities"
	b := sampleCall("billing question")
	b.CallerName = "Pat Jones"
	for _, c := range []Call{a, b} {
		if _, err := st.Insert(ctx, c); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	hits, err := st.SearchCalls(ctx, "FACILITIES", 0, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].Department != "Facilities" {
		t.Fatalf("department search failed: %+v", hits)
	}

	hits, err = st.SearchCalls(ctx, "billing", 0, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].CallerName != "Pat Jones" {
		t.Fatalf("summary search failed: %+v", hits)
	}

	hits, err = st.SearchCalls(ctx, "nothing-matches-this", 0, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}
