// Package telephony defines the abstract call-control vocabulary the engine
// hands back to the signaling gateway, plus its TwiML rendering.
package telephony

import "time"

// Action is one directive within a call-control instruction
type Action interface {
	isAction()
}

// Speak plays either inline text through the gateway's own voice or a
// previously synthesized artifact.
type Speak struct {
	Text        string
	ArtifactURL string
	Voice       string
	Language    string
}

// Gather listens for caller speech (optionally DTMF) and posts the result
// to the callback endpoint.
type Gather struct {
	Mode            GatherMode
	Language        string
	Timeout         time.Duration
	BargeIn         bool
	BargeInKeywords []string
	CallbackURL     string
	PartialURL      string
}

// GatherMode selects the inputs the gateway should accept
type GatherMode string

const (
	GatherSpeech     GatherMode = "speech"
	GatherSpeechDTMF GatherMode = "speech dtmf"
)

// Record captures raw caller audio and posts a reference to the callback
type Record struct {
	MaxLength      time.Duration
	SilenceTimeout time.Duration
	CallbackURL    string
}

// Redirect points the in-flight call at another callback endpoint
type Redirect struct {
	CallbackURL string
}

// Hangup ends the call
type Hangup struct{}

func (Speak) isAction()    {}
func (Gather) isAction()   {}
func (Record) isAction()   {}
func (Redirect) isAction() {}
func (Hangup) isAction()   {}

// Instruction is the ordered list of actions for the gateway to execute
type Instruction struct {
	Actions []Action
}

// NewInstruction builds an instruction from actions in execution order
func NewInstruction(actions ...Action) Instruction {
	return Instruction{Actions: actions}
}
