package speechmarkup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Enricher annotates text with pronunciation hints (Arabic diacritics)
type Enricher interface {
	Name() string
	Enrich(ctx context.Context, text string) (string, error)
}

// MishkalEnricher calls a Mishkal diacritization service over HTTP
type MishkalEnricher struct {
	baseURL string
	client  *http.Client
}

// NewMishkalEnricher creates a client for the given Mishkal base URL
func NewMishkalEnricher(baseURL string) *MishkalEnricher {
	return &MishkalEnricher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *MishkalEnricher) Name() string { return "mishkal" }

type mishkalRequest struct {
	Text string `json:"text"`
}

type mishkalResponse struct {
	Success    bool    `json:"success"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error"`
}

// Enrich posts the text to /diacritize and returns the diacritized form
func (m *MishkalEnricher) Enrich(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(mishkalRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.baseURL+"/diacritize", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("diacritization request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("diacritization service returned %d: %s", resp.StatusCode, string(errBody))
	}

	var parsed mishkalResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if !parsed.Success || parsed.Text == "" {
		return "", fmt.Errorf("diacritization unsuccessful: %s", parsed.Error)
	}
	return parsed.Text, nil
}

// staticDiacritics maps common phrases to their diacritized forms
var staticDiacritics = map[string]string{
	"مرحبا":      "مَرْحَباً",
	"كيف حالك":   "كَيْفَ حَالُكَ",
	"شكرا":       "شُكْراً",
	"أهلا وسهلا": "أَهْلاً وَسَهْلاً",
	"مع السلامة": "مَعَ السَّلامَة",
	"صباح الخير": "صَبَاحُ الخَيْر",
	"مساء الخير": "مَسَاءُ الخَيْر",
	"موعد":       "مَوْعِد",
	"من فضلك":    "مِنْ فَضْلِكَ",
	"عفوا":       "عَفْواً",
}

// StaticEnricher substitutes known phrases from a fixed table. It never
// fails, which makes it the terminal entry of the enrichment chain.
type StaticEnricher struct{}

func (StaticEnricher) Name() string { return "static-table" }

func (StaticEnricher) Enrich(ctx context.Context, text string) (string, error) {
	for plain, diacritized := range staticDiacritics {
		text = strings.ReplaceAll(text, plain, diacritized)
	}
	return text, nil
}
