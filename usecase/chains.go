package usecase

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hatifai/hatif/domain/repositories"
	"github.com/hatifai/hatif/internal/chain"
)

// Chain aliases keep the generic types readable at the wiring sites
type (
	STTChain   = chain.Chain[repositories.TranscribeRequest, repositories.Transcription]
	ReplyChain = chain.Chain[repositories.ReplyRequest, string]
	TTSChain   = chain.Chain[repositories.SynthesisRequest, repositories.Synthesis]
)

// STTProvider wraps a speech recognition service as a chain entry
func STTProvider(name string, timeout time.Duration, svc repositories.SpeechToText) chain.Provider[repositories.TranscribeRequest, repositories.Transcription] {
	return chain.Provider[repositories.TranscribeRequest, repositories.Transcription]{
		Name:    name,
		Timeout: timeout,
		Invoke:  svc.Transcribe,
	}
}

// ReplyProvider wraps a reply generator as a chain entry
func ReplyProvider(name string, timeout time.Duration, svc repositories.ReplyGenerator) chain.Provider[repositories.ReplyRequest, string] {
	return chain.Provider[repositories.ReplyRequest, string]{
		Name:    name,
		Timeout: timeout,
		Invoke:  svc.GenerateReply,
	}
}

// TTSProvider wraps a synthesis service as a chain entry
func TTSProvider(name string, timeout time.Duration, svc repositories.TextToSpeech) chain.Provider[repositories.SynthesisRequest, repositories.Synthesis] {
	return chain.Provider[repositories.SynthesisRequest, repositories.Synthesis]{
		Name:    name,
		Timeout: timeout,
		Invoke: func(ctx context.Context, req repositories.SynthesisRequest) (repositories.Synthesis, error) {
			audio, err := svc.Synthesize(ctx, req)
			if err != nil {
				return repositories.Synthesis{}, err
			}
			return repositories.Synthesis{Audio: audio}, nil
		},
	}
}

// NewSTTChain builds the recognition fallback chain. Results below the
// confidence floor trigger one relaxed retry on the same provider; when the
// whole chain comes up empty the caller gets a fixed placeholder so the
// conversation loop keeps turning.
func NewSTTChain(
	providers []chain.Provider[repositories.TranscribeRequest, repositories.Transcription],
	minConfidence float64,
	placeholder string,
	logger *zap.Logger,
) *STTChain {
	accept := func(t repositories.Transcription) bool {
		return strings.TrimSpace(t.Text) != "" && t.Confidence >= minConfidence
	}
	fallback := func() repositories.Transcription {
		return repositories.Transcription{Text: placeholder, Confidence: 0}
	}
	relax := func(req repositories.TranscribeRequest) (repositories.TranscribeRequest, bool) {
		if req.Relaxed {
			return req, false
		}
		req.Relaxed = true
		return req, true
	}
	return chain.New("stt", providers, accept, fallback, logger,
		chain.WithRelaxedRetry[repositories.TranscribeRequest, repositories.Transcription](relax))
}

// NewReplyChain builds the reply-generation fallback chain. Exhaustion
// rotates through a small set of generic conversation movers instead of
// repeating one canned line.
func NewReplyChain(
	providers []chain.Provider[repositories.ReplyRequest, string],
	logger *zap.Logger,
) *ReplyChain {
	var rotation atomic.Uint64
	accept := func(reply string) bool {
		return strings.TrimSpace(reply) != ""
	}
	fallback := func() string {
		idx := rotation.Add(1) - 1
		return genericReplies[idx%uint64(len(genericReplies))]
	}
	return chain.New("reply", providers, accept, fallback, logger)
}

// NewTTSChain builds the synthesis fallback chain. The default carries no
// audio and flags the gateway's own voice as the degraded path.
func NewTTSChain(
	providers []chain.Provider[repositories.SynthesisRequest, repositories.Synthesis],
	logger *zap.Logger,
) *TTSChain {
	accept := func(s repositories.Synthesis) bool {
		return len(s.Audio) > 0
	}
	fallback := func() repositories.Synthesis {
		return repositories.Synthesis{UseGatewayVoice: true}
	}
	return chain.New("tts", providers, accept, fallback, logger)
}
