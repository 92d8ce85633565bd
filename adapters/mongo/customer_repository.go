package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hatifai/hatif/domain/entities"
	"github.com/hatifai/hatif/domain/repositories"
)

// CustomerRepository maintains caller profiles in MongoDB
type CustomerRepository struct {
	collection *mongo.Collection
}

// NewCustomerRepository creates a new MongoDB customer repository
func NewCustomerRepository(db *mongo.Database) repositories.CustomerRepository {
	return &CustomerRepository{
		collection: db.Collection("customers"),
	}
}

// RecordCall implements repositories.CustomerRepository. First call from a
// number creates the profile; subsequent calls bump counters and refresh
// last-seen.
func (r *CustomerRepository) RecordCall(ctx context.Context, phoneNumber, language string) (*entities.Customer, error) {
	if phoneNumber == "" {
		return nil, errors.New("phone number cannot be empty")
	}

	now := time.Now()
	update := bson.M{
		"$inc": bson.M{"total_calls": 1},
		"$set": bson.M{
			"last_seen":          now,
			"preferred_language": language,
		},
		"$setOnInsert": bson.M{
			"phone_number": phoneNumber,
			"first_seen":   now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var customer entities.Customer
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"phone_number": phoneNumber}, update, opts).Decode(&customer)
	if err != nil {
		return nil, fmt.Errorf("failed to record call: %w", err)
	}
	return &customer, nil
}

// GetByPhoneNumber implements repositories.CustomerRepository
func (r *CustomerRepository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*entities.Customer, error) {
	if phoneNumber == "" {
		return nil, errors.New("phone number cannot be empty")
	}

	var customer entities.Customer
	err := r.collection.FindOne(ctx, bson.M{"phone_number": phoneNumber}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}

// Count implements repositories.CustomerRepository
func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}
