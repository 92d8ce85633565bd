package tts

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/hatifai/hatif/domain/repositories"
)

func TestNewElevenLabsTTS(t *testing.T) {
	logger := zaptest.NewLogger(t)

	// Test without API key
	os.Unsetenv("ELEVEN_LABS_API_KEY")
	config := NewElevenLabsConfigFromEnv()
	_, err := NewElevenLabsTTS(config, logger)
	if err == nil {
		t.Error("Expected error when API key is not set")
	}

	// Test with API key
	os.Setenv("ELEVEN_LABS_API_KEY", "test-api-key")
	defer os.Unsetenv("ELEVEN_LABS_API_KEY")

	config = NewElevenLabsConfigFromEnv()
	tts, err := NewElevenLabsTTS(config, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if tts.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", tts.apiKey)
	}
	if tts.voiceID != defaultVoiceID {
		t.Errorf("Expected default voice ID '%s', got '%s'", defaultVoiceID, tts.voiceID)
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key"}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	ctx := context.Background()
	if _, err := tts.Synthesize(ctx, repositories.SynthesisRequest{Text: ""}); err == nil {
		t.Error("Expected error for empty text")
	}
	if _, err := tts.Synthesize(ctx, repositories.SynthesisRequest{Text: "   "}); err == nil {
		t.Error("Expected error for whitespace-only text")
	}
}

func TestSynthesizeAgainstStub(t *testing.T) {
	logger := zaptest.NewLogger(t)
	wantAudio := []byte("mp3-bytes-here")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "test-api-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(wantAudio)
	}))
	defer srv.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "test-api-key",
		APIBaseURL: srv.URL,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	audio, err := tts.Synthesize(context.Background(), repositories.SynthesisRequest{
		Text:     "مرحبا بك",
		Language: "ar-SA",
	})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if !bytes.Equal(audio, wantAudio) {
		t.Error("Expected stubbed audio payload back")
	}
}

func TestSynthesizeAPIError(t *testing.T) {
	logger := zaptest.NewLogger(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"detail":"rate limited"}`))
	}))
	defer srv.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "test-api-key",
		APIBaseURL: srv.URL,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if _, err := tts.Synthesize(context.Background(), repositories.SynthesisRequest{Text: "hi"}); err == nil {
		t.Error("Expected error from non-200 API response")
	}
}

func TestShortLanguageCode(t *testing.T) {
	cases := map[string]string{
		"ar-SA": "ar",
		"en-US": "en",
		"ar":    "ar",
		"":      "",
	}
	for in, want := range cases {
		if got := shortLanguageCode(in); got != want {
			t.Errorf("shortLanguageCode(%q) = %q, want %q", in, got, want)
		}
	}
}
