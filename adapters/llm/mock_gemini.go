package llm

import (
	"context"
	"fmt"

	"github.com/hatifai/hatif/domain/repositories"
)

// MockReplyGenerator is a placeholder implementation for local development
type MockReplyGenerator struct{}

// NewMockReplyGenerator creates a new mock reply generator
func NewMockReplyGenerator() repositories.ReplyGenerator {
	return &MockReplyGenerator{}
}

// GenerateReply implements repositories.ReplyGenerator
func (g *MockReplyGenerator) GenerateReply(ctx context.Context, req repositories.ReplyRequest) (string, error) {
	if req.Utterance == "" {
		return "كيف يمكنني مساعدتك؟", nil
	}
	return fmt.Sprintf("فهمت أنك قلت: %s. كيف يمكنني مساعدتك أكثر؟", req.Utterance), nil
}
