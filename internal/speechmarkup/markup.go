// Package speechmarkup turns reply text into a structured speech document
// before synthesis: prosody per sentence kind, pauses between sentences,
// emphasis on flagged words, and optional Arabic diacritics enrichment.
package speechmarkup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config shapes the generated markup
type Config struct {
	Rate          string        // default speaking rate, e.g. "medium"
	Pitch         string        // default pitch, e.g. "default"
	Volume        string        // default volume, e.g. "medium"
	SentencePause time.Duration // break inserted between sentences
	EmphasisWords []string      // words wrapped in <emphasis>
	EnrichTimeout time.Duration // budget per enrichment call
}

// Builder is a pure text-to-markup transform with no state beyond config
type Builder struct {
	config    Config
	enrichers []Enricher
	logger    *zap.Logger
}

// NewBuilder creates a markup builder. Enrichers are tried in order for
// Arabic text; all of them failing just means plain markup.
func NewBuilder(config Config, enrichers []Enricher, logger *zap.Logger) *Builder {
	if config.Rate == "" {
		config.Rate = "medium"
	}
	if config.SentencePause <= 0 {
		config.SentencePause = 300 * time.Millisecond
	}
	if config.EnrichTimeout <= 0 {
		config.EnrichTimeout = 3 * time.Second
	}
	return &Builder{config: config, enrichers: enrichers, logger: logger}
}

// markupEscaper neutralizes XML metacharacters in reply text before it is
// wrapped in markup elements. Model output is not trusted to be XML-clean.
var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

type sentenceKind int

const (
	declarative sentenceKind = iota
	interrogative
	exclamatory
)

// Build wraps text in speech markup with per-sentence prosody contours
func (b *Builder) Build(text, language string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return fmt.Sprintf(`<speak xml:lang=%q></speak>`, language)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<speak xml:lang=%q>`, language))
	for i, sentence := range sentences {
		if i > 0 {
			sb.WriteString(fmt.Sprintf(`<break time="%dms"/>`, b.config.SentencePause.Milliseconds()))
		}
		rate, pitch, volume := b.contour(kindOf(sentence))
		sb.WriteString(fmt.Sprintf(`<prosody rate=%q pitch=%q volume=%q>`, rate, pitch, volume))
		sb.WriteString(b.emphasize(markupEscaper.Replace(sentence)))
		sb.WriteString(`</prosody>`)
	}
	sb.WriteString(`</speak>`)
	return sb.String()
}

// BuildEnriched runs the enrichment chain before markup generation. Any
// enrichment failure degrades to plain markup over the original text.
func (b *Builder) BuildEnriched(ctx context.Context, text, language string) string {
	if strings.HasPrefix(language, "ar") && len(b.enrichers) > 0 {
		if enriched, ok := b.enrich(ctx, text); ok {
			text = enriched
		}
	}
	return b.Build(text, language)
}

func (b *Builder) enrich(ctx context.Context, text string) (string, bool) {
	for _, e := range b.enrichers {
		callCtx, cancel := context.WithTimeout(ctx, b.config.EnrichTimeout)
		enriched, err := e.Enrich(callCtx, text)
		cancel()
		if err != nil {
			b.logger.Warn("Diacritics enrichment failed, falling through",
				zap.String("enricher", e.Name()),
				zap.Error(err))
			continue
		}
		if enriched != "" {
			return enriched, true
		}
	}
	return "", false
}

// contour picks the prosody for a sentence kind
func (b *Builder) contour(kind sentenceKind) (rate, pitch, volume string) {
	rate, pitch, volume = b.config.Rate, b.config.Pitch, b.config.Volume
	if pitch == "" {
		pitch = "default"
	}
	if volume == "" {
		volume = "medium"
	}
	switch kind {
	case interrogative:
		pitch = "+10%"
		rate = "95%"
	case exclamatory:
		volume = "loud"
		rate = "105%"
	}
	return rate, pitch, volume
}

func (b *Builder) emphasize(sentence string) string {
	if len(b.config.EmphasisWords) == 0 {
		return sentence
	}
	words := strings.Fields(sentence)
	for i, w := range words {
		for _, target := range b.config.EmphasisWords {
			if strings.EqualFold(strings.Trim(w, ".,!?؟"), target) {
				words[i] = `<emphasis level="strong">` + w + `</emphasis>`
				break
			}
		}
	}
	return strings.Join(words, " ")
}

// splitSentences cuts text on terminal punctuation, keeping the terminator
// attached to its sentence. The Arabic question mark counts.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '؟' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func kindOf(sentence string) sentenceKind {
	switch {
	case strings.HasSuffix(sentence, "?") || strings.HasSuffix(sentence, "؟"):
		return interrogative
	case strings.HasSuffix(sentence, "!"):
		return exclamatory
	default:
		return declarative
	}
}
