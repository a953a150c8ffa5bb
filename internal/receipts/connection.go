package receipts

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMaxPoolSize    = 50
	defaultConnectTimeout = 10 * time.Second
)

// MongoOptions describes the receipts database. Zero values fall back to
// the package defaults.
type MongoOptions struct {
	URI            string
	Database       string
	MaxPoolSize    int
	ConnectTimeout time.Duration
}

func (o MongoOptions) clientOptions() *options.ClientOptions {
	pool := o.MaxPoolSize
	if pool <= 0 {
		pool = defaultMaxPoolSize
	}
	timeout := o.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	// server selection gets half the connect budget so a dead cluster fails fast
	return options.Client().
		ApplyURI(o.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout / 2).
		SetMaxPoolSize(uint64(pool)).
		SetAppName("storefront-receipts")
}

// ConnectMongoDB connects, pings and returns the receipts database. The
// client is disconnected again when the ping fails.
func ConnectMongoDB(ctx context.Context, opts MongoOptions) (*mongo.Database, error) {
	if opts.Database == "" {
		return nil, fmt.Errorf("mongo database name is empty")
	}

	client, err := mongo.Connect(ctx, opts.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("connect receipts store: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping receipts store: %w", err)
	}

	return client.Database(opts.Database), nil
}
