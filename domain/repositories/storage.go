package repositories

import (
	"context"

	"github.com/hatifai/hatif/domain/entities"
)

// ConversationRepository persists closed conversations for analytics.
// The write path is append-only; the live engine never reads it.
type ConversationRepository interface {
	Save(ctx context.Context, conversation *entities.Conversation) error
	ListByCaller(ctx context.Context, phoneNumber string, limit int) ([]*entities.Conversation, error)
	Count(ctx context.Context) (int64, error)
}

// CustomerRepository maintains aggregated caller profiles
type CustomerRepository interface {
	// RecordCall upserts the caller profile, bumping call counters
	RecordCall(ctx context.Context, phoneNumber, language string) (*entities.Customer, error)
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (*entities.Customer, error)
	Count(ctx context.Context) (int64, error)
}
