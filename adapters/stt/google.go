package stt

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/hatifai/hatif/domain/repositories"
)

// GoogleSpeechToText implements SpeechToText for Google Cloud
type GoogleSpeechToText struct {
	logger *zap.Logger
}

// Ensure GoogleSpeechToText implements the SpeechToText interface
var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// NewGoogleSpeechToText creates a Google Cloud speech recognition adapter
func NewGoogleSpeechToText(logger *zap.Logger) *GoogleSpeechToText {
	return &GoogleSpeechToText{logger: logger}
}

// Transcribe converts audio data to text using Google Cloud Speech-to-Text.
// The relaxed flag trades the telephony-tuned model for the general one and
// widens the alternative list, which helps on noisy recordings.
func (g *GoogleSpeechToText) Transcribe(ctx context.Context, req repositories.TranscribeRequest) (repositories.Transcription, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return repositories.Transcription{}, fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	encoding, err := getAudioEncoding(req.Encoding)
	if err != nil {
		return repositories.Transcription{}, err
	}

	config := &speechpb.RecognitionConfig{
		Encoding:        encoding,
		SampleRateHertz: int32(req.SampleRate),
		LanguageCode:    req.Language,
		Model:           "phone_call",
		UseEnhanced:     true,
		MaxAlternatives: 1,
	}
	if req.Relaxed {
		config.Model = "default"
		config.UseEnhanced = false
		config.MaxAlternatives = 3
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: config,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: req.Audio},
		},
	})
	if err != nil {
		return repositories.Transcription{}, fmt.Errorf("recognition failed: %w", err)
	}

	best := repositories.Transcription{}
	for _, result := range resp.Results {
		for _, alt := range result.Alternatives {
			if best.Text == "" || float64(alt.Confidence) > best.Confidence {
				best = repositories.Transcription{
					Text:       alt.Transcript,
					Confidence: float64(alt.Confidence),
				}
			}
		}
	}
	if best.Text == "" {
		return repositories.Transcription{}, fmt.Errorf("no speech detected in audio")
	}

	g.logger.Info("Transcription completed",
		zap.String("language", req.Language),
		zap.Float64("confidence", best.Confidence),
		zap.Bool("relaxed", req.Relaxed))

	return best, nil
}

// getAudioEncoding converts string encoding to Google Speech API enum
func getAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "AMR":
		return speechpb.RecognitionConfig_AMR, nil
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "SPEEX_WITH_HEADER_BYTE":
		return speechpb.RecognitionConfig_SPEEX_WITH_HEADER_BYTE, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
