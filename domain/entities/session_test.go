package entities

import (
	"testing"
	"time"
)

func TestSessionCreation(t *testing.T) {
	session := NewCallSession("sess-1", "+9715550001", "ar")

	if session.ID != "sess-1" {
		t.Errorf("Expected id sess-1, got %s", session.ID)
	}
	if session.State != CallStateGreeting {
		t.Errorf("Expected state %s, got %s", CallStateGreeting, session.State)
	}
	if len(session.Turns) != 0 {
		t.Errorf("Expected empty transcript, got %d turns", len(session.Turns))
	}
	if session.Language != "ar" {
		t.Errorf("Expected language ar, got %s", session.Language)
	}
}

func TestLifecycleTransitions(t *testing.T) {
	session := NewCallSession("sess-1", "+9715550001", "ar")

	steps := []CallState{
		CallStateAwaitingSpeech,
		CallStateProcessing,
		CallStateSpeaking,
		CallStateAwaitingSpeech,
		CallStateProcessing,
		CallStateEnding,
		CallStateClosed,
	}
	for _, next := range steps {
		if err := session.Transition(next); err != nil {
			t.Fatalf("Transition to %s from %s failed: %v", next, session.State, err)
		}
	}

	if !session.IsClosed() {
		t.Error("Session should be closed at end of lifecycle")
	}
}

func TestClosedIsTerminal(t *testing.T) {
	session := NewCallSession("sess-1", "+9715550001", "en")
	session.State = CallStateClosed

	for _, next := range []CallState{
		CallStateGreeting,
		CallStateAwaitingSpeech,
		CallStateProcessing,
		CallStateSpeaking,
		CallStateEnding,
		CallStateClosed,
	} {
		if err := session.Transition(next); err == nil {
			t.Errorf("Closed session must not transition to %s", next)
		}
	}
}

func TestInvalidTransitions(t *testing.T) {
	cases := []struct {
		from CallState
		to   CallState
	}{
		{CallStateGreeting, CallStateSpeaking},
		{CallStateGreeting, CallStateClosed},
		{CallStateAwaitingSpeech, CallStateSpeaking},
		{CallStateProcessing, CallStateGreeting},
		{CallStateSpeaking, CallStateProcessing},
		{CallStateEnding, CallStateAwaitingSpeech},
	}

	for _, c := range cases {
		session := NewCallSession("sess-1", "+9715550001", "en")
		session.State = c.from
		if err := session.Transition(c.to); err != ErrInvalidTransition {
			t.Errorf("Transition %s -> %s should be rejected, got %v", c.from, c.to, err)
		}
	}
}

func TestCloseWalksDefinedEdges(t *testing.T) {
	// Direct jumps to Closed are rejected; Close must insert Ending
	session := NewCallSession("sess-1", "+9715550001", "ar")
	session.State = CallStateAwaitingSpeech
	if err := session.Transition(CallStateClosed); err != ErrInvalidTransition {
		t.Fatalf("awaiting_speech -> closed should be rejected, got %v", err)
	}

	for _, from := range []CallState{
		CallStateGreeting,
		CallStateAwaitingSpeech,
		CallStateProcessing,
		CallStateSpeaking,
		CallStateEnding,
	} {
		session := NewCallSession("sess-1", "+9715550001", "ar")
		session.State = from
		if err := session.Close(); err != nil {
			t.Errorf("Close from %s failed: %v", from, err)
		}
		if !session.IsClosed() {
			t.Errorf("Close from %s left state %s", from, session.State)
		}
	}
}

func TestCloseOnClosedSession(t *testing.T) {
	session := NewCallSession("sess-1", "+9715550001", "ar")
	session.State = CallStateClosed

	if err := session.Close(); err == nil {
		t.Error("Closing a closed session should fail")
	}
}

func TestAddTurn(t *testing.T) {
	session := NewCallSession("sess-1", "+9715550001", "ar")

	session.AddTurn(TurnRoleUser, "مرحبا")
	session.AddTurn(TurnRoleAssistant, "أهلاً وسهلاً! كيف يمكنني مساعدتك؟")

	if len(session.Turns) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(session.Turns))
	}
	if session.Turns[0].Role != TurnRoleUser {
		t.Errorf("Expected user role first, got %s", session.Turns[0].Role)
	}
	if session.Turns[1].Role != TurnRoleAssistant {
		t.Errorf("Expected assistant role second, got %s", session.Turns[1].Role)
	}
	if session.Turns[1].Timestamp.Before(session.Turns[0].Timestamp) {
		t.Error("Turns must be in insertion order")
	}
}

func TestIdleFor(t *testing.T) {
	session := NewCallSession("sess-1", "+9715550001", "en")

	if session.IdleFor(time.Minute) {
		t.Error("Fresh session should not be idle")
	}

	session.LastActivityAt = time.Now().Add(-2 * time.Minute)
	if !session.IdleFor(time.Minute) {
		t.Error("Session inactive for 2 minutes should be idle past a 1 minute bound")
	}

	session.Touch()
	if session.IdleFor(time.Minute) {
		t.Error("Touch should reset idleness")
	}
}

func TestSessionValidation(t *testing.T) {
	session := NewCallSession("sess-1", "+9715550001", "en")
	if err := session.Validate(); err != nil {
		t.Errorf("Valid session should not have validation errors, got: %v", err)
	}

	session.ID = ""
	if err := session.Validate(); err == nil {
		t.Error("Session with empty id should have validation error")
	}

	session.ID = "sess-1"
	session.State = CallState("invalid")
	if err := session.Validate(); err == nil {
		t.Error("Session with invalid state should have validation error")
	}
}

func TestConversationSnapshot(t *testing.T) {
	session := NewCallSession("sess-1", "+9715550001", "ar")
	session.AddTurn(TurnRoleUser, "موعد")
	session.AddTurn(TurnRoleAssistant, "بالتأكيد، متى يناسبك الموعد؟")

	conv := NewConversation(session)

	if conv.SessionID != session.ID || conv.CallerID != session.CallerID {
		t.Error("Conversation should carry session identity")
	}
	if len(conv.Turns) != 2 {
		t.Fatalf("Expected 2 turns in snapshot, got %d", len(conv.Turns))
	}

	// Snapshot must be detached from the live session
	session.AddTurn(TurnRoleUser, "شكرا")
	if len(conv.Turns) != 2 {
		t.Error("Snapshot turns must not alias the session transcript")
	}
}
