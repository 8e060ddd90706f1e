// internal/output/mongodb.go - MongoDB document store
package output

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valpere/ProductScrapexter/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var mongoLogger = utils.NewComponentLogger("mongodb-output")

const defaultMongoTimeout = 10 * time.Second

// MongoDBOptions defines the connection target.
type MongoDBOptions struct {
	ConnectionString string
	Database         string
	Timeout          time.Duration
	RetryWrites      bool
}

// MongoClient is a connected client shared by the per-collection stores.
type MongoClient struct {
	client   *mongo.Client
	database *mongo.Database
	timeout  time.Duration
}

// ConnectMongoDB connects and pings the server.
func ConnectMongoDB(ctx context.Context, opts MongoDBOptions) (*MongoClient, error) {
	if opts.ConnectionString == "" {
		return nil, fmt.Errorf("MongoDB connection string is required")
	}
	if opts.Database == "" {
		return nil, fmt.Errorf("MongoDB database name is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultMongoTimeout
	}

	clientOptions := options.Client().
		ApplyURI(opts.ConnectionString).
		SetServerSelectionTimeout(opts.Timeout).
		SetConnectTimeout(opts.Timeout).
		SetRetryWrites(opts.RetryWrites)

	connectCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	mongoLogger.Infof("Connected to MongoDB database %s", opts.Database)
	return &MongoClient{
		client:   client,
		database: client.Database(opts.Database),
		timeout:  opts.Timeout,
	}, nil
}

// Collection returns a store bound to one collection.
func (mc *MongoClient) Collection(name string) *MongoStore {
	return &MongoStore{
		collection: mc.database.Collection(name),
		name:       name,
		timeout:    mc.timeout,
	}
}

// Close closes the MongoDB connection.
func (mc *MongoClient) Close(ctx context.Context) error {
	if mc == nil || mc.client == nil {
		return nil
	}
	if err := mc.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}

// MongoStore implements DocumentStore over a collection.
type MongoStore struct {
	collection *mongo.Collection
	name       string
	timeout    time.Duration
}

func (ms *MongoStore) Name() string { return ms.name }

// Upsert replaces the document matching {field: value}, inserting when absent.
func (ms *MongoStore) Upsert(ctx context.Context, field string, value interface{}, doc bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, ms.timeout)
	defer cancel()

	result, err := ms.collection.ReplaceOne(ctx,
		bson.D{{Key: field, Value: value}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return result.UpsertedID != nil, nil
}

// EnsureIndexes creates a single-field ascending index per field.
func (ms *MongoStore) EnsureIndexes(ctx context.Context, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, ms.timeout)
	defer cancel()

	models := make([]mongo.IndexModel, 0, len(fields))
	for _, f := range fields {
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: f, Value: 1}},
			Options: options.Index().SetName(indexName(ms.name, f)),
		})
	}
	names, err := ms.collection.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	mongoLogger.Debugf("Ensured indexes on %s: %s", ms.name, strings.Join(names, ", "))
	return nil
}

// Count returns the number of documents in the collection.
func (ms *MongoStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, ms.timeout)
	defer cancel()
	return ms.collection.CountDocuments(ctx, bson.D{})
}

// indexName builds a stable identifier-safe index name like "idx_products_product_url".
func indexName(collection, field string) string {
	var b strings.Builder
	b.WriteString("idx_")
	for _, part := range []string{collection, "_", field} {
		for _, r := range strings.ToLower(part) {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				b.WriteRune(r)
			default:
				b.WriteRune('_')
			}
		}
	}
	return b.String()
}
