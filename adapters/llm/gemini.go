package llm

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/hatifai/hatif/domain/repositories"
)

const (
	defaultModel       = "gemini-2.0-flash"
	defaultTemperature = 0.7
	defaultMaxTokens   = 256
)

const systemPrompt = "أنت مساعد هاتفي ودود لشركة خدمات. أجب بإيجاز وبجمل قصيرة مناسبة " +
	"للقراءة الصوتية، وبنفس لغة المتصل. لا تستخدم قوائم أو رموزاً."

// GeminiConfig holds configuration for the Gemini adapter
type GeminiConfig struct {
	APIKey          string  // Required: Google AI API key
	Model           string  // Optional: model id
	Temperature     float32 // Optional: sampling temperature between 0 and 1
	MaxOutputTokens int     // Optional: reply length cap
}

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("Google AI API key is required")
	}
	if config.Temperature != 0 && (config.Temperature < 0 || config.Temperature > 1) {
		return fmt.Errorf("temperature must be between 0 and 1, got %f", config.Temperature)
	}
	if config.MaxOutputTokens < 0 {
		return fmt.Errorf("maxOutputTokens must be positive, got %d", config.MaxOutputTokens)
	}
	return nil
}

// NewGeminiConfigFromEnv reads the adapter configuration from environment
func NewGeminiConfigFromEnv() GeminiConfig {
	return GeminiConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
	}
}

// GeminiReplyGenerator implements ReplyGenerator using Google's Gemini API
type GeminiReplyGenerator struct {
	client          *genai.Client
	logger          *zap.Logger
	model           string
	temperature     float32
	maxOutputTokens int
}

// Ensure GeminiReplyGenerator implements the ReplyGenerator interface
var _ repositories.ReplyGenerator = (*GeminiReplyGenerator)(nil)

// NewGeminiReplyGenerator creates a new Gemini reply generator
func NewGeminiReplyGenerator(config GeminiConfig, logger *zap.Logger) (*GeminiReplyGenerator, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultModel
		logger.Info("Using default model", zap.String("model", model))
	}
	temperature := config.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = defaultMaxTokens
	}

	return &GeminiReplyGenerator{
		client:          client,
		logger:          logger,
		model:           model,
		temperature:     temperature,
		maxOutputTokens: maxOutputTokens,
	}, nil
}

// GenerateReply produces the assistant's next utterance from the caller's
// utterance and the conversation so far.
func (g *GeminiReplyGenerator) GenerateReply(ctx context.Context, req repositories.ReplyRequest) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	contents = append(contents, historyToContents(req.History)...)
	contents = append(contents, genai.NewContentFromText(req.Utterance, genai.RoleUser))

	temperature := g.temperature
	maxTokens := int32(g.maxOutputTokens)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty reply")
	}

	g.logger.Info("Reply generated",
		zap.String("language", req.Language),
		zap.Int("history_length", len(req.History)))

	return text, nil
}

// historyToContents converts repository messages to Gemini format
func historyToContents(messages []repositories.ChatMessage) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range messages {
		var role genai.Role = genai.RoleUser
		if msg.Role == repositories.AssistantRole {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}
