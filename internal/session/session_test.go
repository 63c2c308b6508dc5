package session

import (
	"testing"

	"reception_agent/internal/extract"
)

func TestLoginLogout(t *testing.T) {
	m := NewManager("secret")

	if _, ok := m.Login("wrong"); ok {
		t.Fatal("wrong password must not authenticate")
	}
	token, ok := m.Login("secret")
	if !ok || token == "" {
		t.Fatal("correct password must authenticate")
	}
	if !m.Authenticated(token) {
		t.Fatal("token should be live")
	}
	m.Logout(token)
	if m.Authenticated(token) {
		t.Fatal("token should be gone after logout")
	}
}

func TestPendingRetainedPerSession(t *testing.T) {
	m := NewManager("secret")
	token, _ := m.Login("secret")

	if _, ok := m.Pending(token); ok {
		t.Fatal("fresh session has no pending call")
	}
	m.SetPending(token, Pending{
		Filename:   "call.mp3",
		Transcript: "hello",
		Analysis:   extract.Result{Summary: "greeting", Priority: "Low"},
	})
	p, ok := m.Pending(token)
	if !ok || p.Transcript != "hello" || p.Analysis.Summary != "greeting" {
		t.Fatalf("pending not retained: %+v", p)
	}
	m.ClearPending(token)
	if _, ok := m.Pending(token); ok {
		t.Fatal("pending should be cleared")
	}
}

func TestPendingIgnoredForUnknownToken(t *testing.T) {
	m := NewManager("secret")
	m.SetPending("bogus", Pending{Transcript: "x"})
	if _, ok := m.Pending("bogus"); ok {
		t.Fatal("unknown token must not accumulate state")
	}
}
