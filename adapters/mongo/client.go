// Package mongo persists closed conversations and caller profiles. All
// writes run detached from webhook handlers, so the connection is tuned for
// short background bursts rather than sustained request traffic.
package mongo

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ClientConfig holds the connection settings
type ClientConfig struct {
	URI      string
	Database string

	// ConnectTimeout bounds the startup connect+ping; the engine runs
	// without persistence when it elapses
	ConnectTimeout time.Duration
}

// NewClientConfigFromEnv reads the connection settings from environment
func NewClientConfigFromEnv() ClientConfig {
	cfg := ClientConfig{
		URI:            os.Getenv("MONGODB_URI"),
		Database:       os.Getenv("MONGODB_DATABASE"),
		ConnectTimeout: 5 * time.Second,
	}
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "hatif"
	}
	if v := os.Getenv("MONGODB_CONNECT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ConnectTimeout = d
		}
	}
	return cfg
}

// Client wraps the MongoDB client and database
type Client struct {
	*mongo.Client
	Database *mongo.Database
	logger   *zap.Logger
}

// NewClient connects and verifies reachability. Persistence writes are
// fire-and-forget with per-write deadlines, so the pool stays small and
// idle connections are recycled quickly.
func NewClient(logger *zap.Logger) (*Client, error) {
	cfg := NewClientConfigFromEnv()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(4).
		SetMaxConnIdleTime(time.Minute).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetRetryWrites(true)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Call persistence connected",
		zap.String("database", cfg.Database))

	return &Client{
		Client:   client,
		Database: client.Database(cfg.Database),
		logger:   logger,
	}, nil
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if err := c.Client.Disconnect(ctx); err != nil {
		c.logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
		return err
	}
	c.logger.Info("Call persistence disconnected")
	return nil
}
