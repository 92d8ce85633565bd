package entities

import (
	"errors"
	"time"
)

// CallState represents the lifecycle state of a call session
type CallState string

const (
	CallStateGreeting       CallState = "greeting"
	CallStateAwaitingSpeech CallState = "awaiting_speech"
	CallStateProcessing     CallState = "processing"
	CallStateSpeaking       CallState = "speaking"
	CallStateEnding         CallState = "ending"
	CallStateClosed         CallState = "closed"
)

// TurnRole represents the speaker of a turn
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// Turn represents one utterance within a call transcript
type Turn struct {
	Role      TurnRole  `json:"role" bson:"role"`
	Text      string    `json:"text" bson:"text"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// validTransitions enumerates the allowed state machine edges.
// Closed is terminal; nothing leaves it.
var validTransitions = map[CallState][]CallState{
	CallStateGreeting:       {CallStateAwaitingSpeech, CallStateEnding},
	CallStateAwaitingSpeech: {CallStateProcessing, CallStateAwaitingSpeech, CallStateEnding},
	CallStateProcessing:     {CallStateSpeaking, CallStateEnding},
	CallStateSpeaking:       {CallStateAwaitingSpeech, CallStateEnding},
	CallStateEnding:         {CallStateClosed},
	CallStateClosed:         {},
}

// ErrInvalidTransition is returned when a state change does not follow
// the call lifecycle edges.
var ErrInvalidTransition = errors.New("invalid call state transition")

// CallSession represents one active phone call. Only the turn controller
// mutates a session; other components read it at most.
type CallSession struct {
	ID             string    `json:"id" bson:"session_id"`
	CallerID       string    `json:"caller_id" bson:"caller_id"`
	Language       string    `json:"language" bson:"language"`
	State          CallState `json:"state" bson:"state"`
	Turns          []Turn    `json:"turns" bson:"turns"`
	StartedAt      time.Time `json:"started_at" bson:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at" bson:"last_activity_at"`

	// Reprompted records whether the single no-input re-prompt has been
	// spent; a second silence ends the call.
	Reprompted bool `json:"-" bson:"-"`
}

// NewCallSession creates a session in the Greeting state
func NewCallSession(id, callerID, language string) *CallSession {
	now := time.Now()
	return &CallSession{
		ID:             id,
		CallerID:       callerID,
		Language:       language,
		State:          CallStateGreeting,
		Turns:          make([]Turn, 0),
		StartedAt:      now,
		LastActivityAt: now,
	}
}

// Transition moves the session to the given state, validating the edge
func (s *CallSession) Transition(to CallState) error {
	for _, allowed := range validTransitions[s.State] {
		if allowed == to {
			s.State = to
			s.Touch()
			return nil
		}
	}
	return ErrInvalidTransition
}

// Close drives the session to its terminal state along defined edges,
// inserting the Ending transition when the call is cut short
// mid-conversation. Closing a closed session is an error.
func (s *CallSession) Close() error {
	if s.State != CallStateEnding {
		if err := s.Transition(CallStateEnding); err != nil {
			return err
		}
	}
	return s.Transition(CallStateClosed)
}

// AddTurn appends an utterance to the transcript in arrival order
func (s *CallSession) AddTurn(role TurnRole, text string) {
	s.Turns = append(s.Turns, Turn{
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	})
	s.Touch()
}

// Touch updates the last-activity timestamp
func (s *CallSession) Touch() {
	s.LastActivityAt = time.Now()
}

// IdleFor reports whether the session has seen no activity for at least d
func (s *CallSession) IdleFor(d time.Duration) bool {
	return time.Since(s.LastActivityAt) >= d
}

// IsClosed reports whether the session reached its terminal state
func (s *CallSession) IsClosed() bool {
	return s.State == CallStateClosed
}

// Duration returns how long the call has been running
func (s *CallSession) Duration() time.Duration {
	return time.Since(s.StartedAt)
}

// Validate validates the session data
func (s *CallSession) Validate() error {
	if s.ID == "" {
		return errors.New("session id is required")
	}
	if s.CallerID == "" {
		return errors.New("caller id is required")
	}
	if _, ok := validTransitions[s.State]; !ok {
		return errors.New("invalid call state")
	}
	return nil
}
