package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hatifai/hatif/domain/entities"
	"github.com/hatifai/hatif/domain/repositories"
)

// ConversationRepository persists closed conversations in MongoDB
type ConversationRepository struct {
	collection *mongo.Collection
}

// NewConversationRepository creates a new MongoDB conversation repository
func NewConversationRepository(db *mongo.Database) repositories.ConversationRepository {
	return &ConversationRepository{
		collection: db.Collection("conversations"),
	}
}

// Save implements repositories.ConversationRepository. Append-only: each
// closed session is inserted once and never updated.
func (r *ConversationRepository) Save(ctx context.Context, conversation *entities.Conversation) error {
	if conversation == nil {
		return errors.New("conversation cannot be nil")
	}

	if _, err := r.collection.InsertOne(ctx, conversation); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// ListByCaller implements repositories.ConversationRepository
func (r *ConversationRepository) ListByCaller(ctx context.Context, phoneNumber string, limit int) ([]*entities.Conversation, error) {
	if phoneNumber == "" {
		return nil, errors.New("phone number cannot be empty")
	}
	if limit <= 0 {
		limit = 10
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"caller_id": phoneNumber}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var conversations []*entities.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	return conversations, nil
}

// Count implements repositories.ConversationRepository
func (r *ConversationRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return count, nil
}
