package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const diacriticsPrompt = "أضف التشكيل الكامل للنص العربي التالي وأعد النص المشكل فقط دون أي شرح:\n\n"

// GeminiDiacriticsEnricher annotates Arabic text with diacritics through the
// Gemini API. It sits behind the Mishkal service in the enrichment chain.
type GeminiDiacriticsEnricher struct {
	client *genai.Client
	model  string
}

// NewGeminiDiacriticsEnricher reuses a reply generator's client for enrichment
func NewGeminiDiacriticsEnricher(gen *GeminiReplyGenerator) *GeminiDiacriticsEnricher {
	return &GeminiDiacriticsEnricher{
		client: gen.client,
		model:  gen.model,
	}
}

func (e *GeminiDiacriticsEnricher) Name() string { return "gemini-diacritics" }

// Enrich returns the diacritized form of text
func (e *GeminiDiacriticsEnricher) Enrich(ctx context.Context, text string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(diacriticsPrompt+text, genai.RoleUser),
	}
	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("diacritics enrichment failed: %w", err)
	}

	enriched := strings.TrimSpace(resp.Text())
	if enriched == "" {
		return "", fmt.Errorf("enrichment returned empty text")
	}
	return enriched, nil
}
