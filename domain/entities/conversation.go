package entities

import (
	"errors"
	"time"
)

// Conversation is the persisted record of a closed call. Written once when
// a session closes; the live engine never reads it back.
type Conversation struct {
	SessionID string    `json:"session_id" bson:"session_id"`
	CallerID  string    `json:"caller_id" bson:"caller_id"`
	Language  string    `json:"language" bson:"language"`
	Turns     []Turn    `json:"turns" bson:"turns"`
	StartedAt time.Time `json:"started_at" bson:"started_at"`
	EndedAt   time.Time `json:"ended_at" bson:"ended_at"`
}

// NewConversation snapshots a closed session for persistence
func NewConversation(s *CallSession) *Conversation {
	turns := make([]Turn, len(s.Turns))
	copy(turns, s.Turns)
	return &Conversation{
		SessionID: s.ID,
		CallerID:  s.CallerID,
		Language:  s.Language,
		Turns:     turns,
		StartedAt: s.StartedAt,
		EndedAt:   time.Now(),
	}
}

// Customer represents an aggregated caller profile
type Customer struct {
	PhoneNumber       string    `json:"phone_number" bson:"phone_number"`
	FirstSeen         time.Time `json:"first_seen" bson:"first_seen"`
	LastSeen          time.Time `json:"last_seen" bson:"last_seen"`
	TotalCalls        int       `json:"total_calls" bson:"total_calls"`
	PreferredLanguage string    `json:"preferred_language" bson:"preferred_language"`
}

func (c *Customer) Validate() error {
	if c.PhoneNumber == "" {
		return errors.New("phone number is required")
	}
	return nil
}
