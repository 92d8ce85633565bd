package tts

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hatifai/hatif/domain/repositories"
)

// MockTextToSpeech is a placeholder synthesizer for local development
type MockTextToSpeech struct {
	logger *zap.Logger
}

// NewMockTextToSpeech creates a new mock text-to-speech service
func NewMockTextToSpeech(logger *zap.Logger) repositories.TextToSpeech {
	return &MockTextToSpeech{logger: logger}
}

// Synthesize implements repositories.TextToSpeech
func (m *MockTextToSpeech) Synthesize(ctx context.Context, req repositories.SynthesisRequest) ([]byte, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	m.logger.Info("Mock synthesis",
		zap.String("language", req.Language),
		zap.Int("textLength", len(req.Text)))

	// A fake payload proportional to the text, enough for flow testing
	audio := make([]byte, len(req.Text)*10)
	for i := range audio {
		audio[i] = byte(i % 251)
	}
	return audio, nil
}
