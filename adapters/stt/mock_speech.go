package stt

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hatifai/hatif/domain/repositories"
)

// MockSpeechToText is a placeholder implementation for speech recognition,
// used for local development without cloud credentials.
type MockSpeechToText struct {
	logger *zap.Logger
}

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(logger *zap.Logger) repositories.SpeechToText {
	return &MockSpeechToText{logger: logger}
}

// Transcribe implements repositories.SpeechToText
func (s *MockSpeechToText) Transcribe(ctx context.Context, req repositories.TranscribeRequest) (repositories.Transcription, error) {
	s.logger.Info("Processing mock speech-to-text",
		zap.Int("audioSize", len(req.Audio)),
		zap.String("language", req.Language))

	if len(req.Audio) == 0 {
		return repositories.Transcription{}, fmt.Errorf("no audio data received")
	}

	// Mock transcription based on audio size
	switch {
	case len(req.Audio) > 10000:
		return repositories.Transcription{Text: "أريد حجز موعد في أقرب وقت ممكن من فضلك", Confidence: 0.93}, nil
	case len(req.Audio) > 5000:
		return repositories.Transcription{Text: "كم سعر الخدمة؟", Confidence: 0.88}, nil
	case len(req.Audio) > 1000:
		return repositories.Transcription{Text: "مرحبا", Confidence: 0.8}, nil
	default:
		return repositories.Transcription{Text: "شكرا", Confidence: 0.6}, nil
	}
}
