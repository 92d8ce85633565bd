package usecase

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/hatifai/hatif/adapters/tts"
	"github.com/hatifai/hatif/domain/repositories"
	"github.com/hatifai/hatif/internal/chain"
)

func TestTTSChainWithMockSynthesizer(t *testing.T) {
	logger := zaptest.NewLogger(t)
	providers := []chain.Provider[repositories.SynthesisRequest, repositories.Synthesis]{
		TTSProvider("mock", time.Second, tts.NewMockTextToSpeech(logger)),
	}
	ttsChain := NewTTSChain(providers, logger)

	result := ttsChain.Run(context.Background(), repositories.SynthesisRequest{
		Text:     "أهلاً وسهلاً",
		Language: "ar-SA",
	})

	if result.UseGatewayVoice {
		t.Fatal("Mock synthesis should produce audio, not degrade to gateway voice")
	}
	if len(result.Audio) == 0 {
		t.Error("Expected non-empty synthesized payload")
	}
}

func TestTTSChainEmptyTextDegradesToGatewayVoice(t *testing.T) {
	logger := zaptest.NewLogger(t)
	providers := []chain.Provider[repositories.SynthesisRequest, repositories.Synthesis]{
		TTSProvider("mock", time.Second, tts.NewMockTextToSpeech(logger)),
	}
	ttsChain := NewTTSChain(providers, logger)

	result := ttsChain.Run(context.Background(), repositories.SynthesisRequest{Language: "ar-SA"})

	if !result.UseGatewayVoice {
		t.Error("Synthesis failure must flag the gateway voice fallback")
	}
	if len(result.Audio) != 0 {
		t.Error("Degraded result must carry no audio")
	}
}

func TestSTTChainPlaceholderOnExhaustion(t *testing.T) {
	logger := zaptest.NewLogger(t)
	providers := []chain.Provider[repositories.TranscribeRequest, repositories.Transcription]{{
		Name:    "noisy",
		Timeout: time.Second,
		Invoke: func(ctx context.Context, req repositories.TranscribeRequest) (repositories.Transcription, error) {
			return repositories.Transcription{Text: "غير واضح", Confidence: 0.1}, nil
		},
	}}
	sttChain := NewSTTChain(providers, 0.6, PlaceholderFor("ar"), logger)

	result := sttChain.Run(context.Background(), repositories.TranscribeRequest{Language: "ar-SA"})

	if result.Text != PlaceholderFor("ar") {
		t.Errorf("Expected placeholder on exhaustion, got %q", result.Text)
	}
	if result.Confidence != 0 {
		t.Errorf("Placeholder must carry zero confidence, got %f", result.Confidence)
	}
}

func TestSTTChainRelaxedRetrySetsFlag(t *testing.T) {
	logger := zaptest.NewLogger(t)
	var sawRelaxed bool
	providers := []chain.Provider[repositories.TranscribeRequest, repositories.Transcription]{{
		Name:    "flaky",
		Timeout: time.Second,
		Invoke: func(ctx context.Context, req repositories.TranscribeRequest) (repositories.Transcription, error) {
			if req.Relaxed {
				sawRelaxed = true
				return repositories.Transcription{Text: "مرحبا", Confidence: 0.9}, nil
			}
			return repositories.Transcription{Text: "مرحبا", Confidence: 0.3}, nil
		},
	}}
	sttChain := NewSTTChain(providers, 0.6, "placeholder", logger)

	result := sttChain.Run(context.Background(), repositories.TranscribeRequest{Language: "ar-SA"})

	if !sawRelaxed {
		t.Error("Low confidence should trigger the relaxed retry")
	}
	if result.Confidence != 0.9 {
		t.Errorf("Expected the relaxed result, got confidence %f", result.Confidence)
	}
}
