package mongo

import (
	"context"
	"fmt"
	"time"

	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/fastygo/restaurant/internal/config"
	"github.com/fastygo/restaurant/internal/infrastructure/retry"
)

// NewClient connects to the review store and verifies the primary is reachable.
func NewClient(ctx context.Context, cfg config.MongoConfig, policy retry.Policy, logger *zap.Logger) (*mongodrv.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := mongodrv.Connect(options.Client().
		ApplyURI(cfg.URI).
		SetAppName("restaurant-api").
		SetServerSelectionTimeout(5 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	err = retry.Do(ctx, policy, "mongodb", logger, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return client.Ping(pingCtx, readpref.Primary())
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("connected to mongodb", zap.String("database", cfg.Database))
	return client, nil
}

// Close disconnects the client within ctx.
func Close(ctx context.Context, client *mongodrv.Client, logger *zap.Logger) error {
	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return err
	}
	if logger != nil {
		logger.Info("mongodb client disconnected")
	}
	return nil
}
