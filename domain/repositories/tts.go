package repositories

import "context"

// TextToSpeech abstracts speech synthesis services
type TextToSpeech interface {
	// Synthesize renders text (plain or speech markup) into audio bytes
	Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error)
}

// SynthesisRequest carries the reply text and voice hints
type SynthesisRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Voice    string `json:"voice"`
}

// Synthesis is the outcome of the TTS chain. When no provider produced
// audio, UseGatewayVoice tells the caller to fall back to the signaling
// gateway's built-in synthesis instead of playing an artifact.
type Synthesis struct {
	Audio           []byte `json:"-"`
	UseGatewayVoice bool   `json:"use_gateway_voice"`
}
