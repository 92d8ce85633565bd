package repositories

import "context"

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// Transcribe converts captured audio into text with a confidence score
	Transcribe(ctx context.Context, req TranscribeRequest) (Transcription, error)
}

// TranscribeRequest carries a captured audio buffer and recognition hints
type TranscribeRequest struct {
	Audio      []byte `json:"-"`
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`

	// Relaxed asks the provider to loosen its recognition settings; set on
	// the single same-provider retry after a low-confidence result.
	Relaxed bool `json:"relaxed"`
}

// Transcription is a recognition result with the provider's confidence
type Transcription struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}
