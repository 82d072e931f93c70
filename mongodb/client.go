package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

// Connect opens an instrumented client and verifies it against the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	log.Info().Msg("Initializing MongoDB client")

	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetMonitor(otelmongo.NewMonitor())

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB primary: %w", err)
	}

	log.Info().Msg("MongoDB client initialized successfully.")

	return client, nil
}

// Disconnect closes the client, logging rather than returning failures so
// it can run in shutdown paths.
func Disconnect(ctx context.Context, client *mongo.Client) {
	if client == nil {
		return
	}

	log.Info().Msg("Closing MongoDB connection.")
	if err := client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("Error closing MongoDB connection")
	}
}
