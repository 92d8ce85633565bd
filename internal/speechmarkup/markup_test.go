package speechmarkup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newBuilder(enrichers ...Enricher) *Builder {
	return NewBuilder(Config{}, enrichers, zap.NewNop())
}

func TestBuildWrapsSentences(t *testing.T) {
	b := newBuilder()

	out := b.Build("Hello there. How are you?", "en-US")

	if !strings.HasPrefix(out, `<speak xml:lang="en-US">`) {
		t.Errorf("Expected speak root with language, got %s", out)
	}
	if strings.Count(out, "<prosody") != 2 {
		t.Errorf("Expected one prosody block per sentence, got %s", out)
	}
	if !strings.Contains(out, `<break time="300ms"/>`) {
		t.Errorf("Expected pause between sentences, got %s", out)
	}
}

func TestProsodyContours(t *testing.T) {
	b := newBuilder()

	interrogativeOut := b.Build("هل تريد موعداً؟", "ar-SA")
	if !strings.Contains(interrogativeOut, `pitch="+10%"`) {
		t.Errorf("Question should raise pitch, got %s", interrogativeOut)
	}

	exclamatoryOut := b.Build("رائع!", "ar-SA")
	if !strings.Contains(exclamatoryOut, `volume="loud"`) {
		t.Errorf("Exclamation should raise volume, got %s", exclamatoryOut)
	}

	declarativeOut := b.Build("سأساعدك.", "ar-SA")
	if !strings.Contains(declarativeOut, `volume="medium"`) {
		t.Errorf("Declarative should keep defaults, got %s", declarativeOut)
	}
}

func TestEmphasis(t *testing.T) {
	b := NewBuilder(Config{EmphasisWords: []string{"important"}}, nil, zap.NewNop())

	out := b.Build("This is important today.", "en-US")
	if !strings.Contains(out, `<emphasis level="strong">important</emphasis>`) {
		t.Errorf("Expected emphasis on flagged word, got %s", out)
	}
}

func TestBuildEscapesMetacharacters(t *testing.T) {
	b := newBuilder()

	out := b.Build("Our R&D team says 2 < 3.", "en-US")

	if !strings.Contains(out, "R&amp;D") {
		t.Errorf("Ampersand must be escaped, got %s", out)
	}
	if !strings.Contains(out, "2 &lt; 3") {
		t.Errorf("Angle bracket must be escaped, got %s", out)
	}
	if strings.Contains(out, "R&D") {
		t.Errorf("Raw ampersand leaked into markup: %s", out)
	}
}

func TestStaticEnricher(t *testing.T) {
	out, err := StaticEnricher{}.Enrich(context.Background(), "مرحبا كيف حالك")
	if err != nil {
		t.Fatalf("StaticEnricher must not fail: %v", err)
	}
	if out != "مَرْحَباً كَيْفَ حَالُكَ" {
		t.Errorf("Expected diacritized phrase, got %s", out)
	}
}

func TestMishkalEnricher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/diacritize" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"text":"مَرْحَباً","confidence":0.9,"service":"Mishkal"}`))
	}))
	defer srv.Close()

	e := NewMishkalEnricher(srv.URL)
	out, err := e.Enrich(context.Background(), "مرحبا")
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if out != "مَرْحَباً" {
		t.Errorf("Expected service text, got %s", out)
	}
}

func TestMishkalEnricherServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"boom"}`))
	}))
	defer srv.Close()

	e := NewMishkalEnricher(srv.URL)
	if _, err := e.Enrich(context.Background(), "مرحبا"); err == nil {
		t.Error("Expected error from failing service")
	}
}

type failingEnricher struct{}

func (failingEnricher) Name() string { return "failing" }
func (failingEnricher) Enrich(ctx context.Context, text string) (string, error) {
	return "", errors.New("enrichment down")
}

func TestBuildEnrichedFallsThroughChain(t *testing.T) {
	b := newBuilder(failingEnricher{}, StaticEnricher{})

	out := b.BuildEnriched(context.Background(), "مرحبا", "ar")
	if !strings.Contains(out, "مَرْحَباً") {
		t.Errorf("Expected static enrichment after failing enricher, got %s", out)
	}
}

func TestBuildEnrichedDegradesToPlainMarkup(t *testing.T) {
	b := newBuilder(failingEnricher{})

	out := b.BuildEnriched(context.Background(), "مرحبا", "ar")
	if !strings.Contains(out, "مرحبا") {
		t.Errorf("Expected original text when every enricher fails, got %s", out)
	}
}

func TestBuildEnrichedSkipsNonArabic(t *testing.T) {
	b := newBuilder(StaticEnricher{})

	out := b.BuildEnriched(context.Background(), "hello", "en-US")
	if !strings.Contains(out, "hello") {
		t.Errorf("Non-Arabic text should pass through, got %s", out)
	}
}
