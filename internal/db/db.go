// Package db manages the MongoDB connection and the movie database collections.
package db

import (
	"context" // For connection timeout/cancellation
	"fmt"     // Error formatting
	"time"    // Duration for timeouts

	"go.mongodb.org/mongo-driver/v2/mongo"                     // MongoDB driver
	"go.mongodb.org/mongo-driver/v2/mongo/options"             // MongoDB options
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"            // MongoDB read preference
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring" // URI parsing
)

// DefaultDatabase is used when neither the URI nor the configuration names a database.
const DefaultDatabase = "test"

// Collection names.
const (
	UsersCollectionName    = "users"
	MoviesCollectionName   = "movies"
	CommentsCollectionName = "comments"
)

// Client wraps mongo.Client and exposes collections.
type Client struct {
	// client is the underlying MongoDB connection (thread-safe, can be reused)
	client *mongo.Client

	// db is the database holding the users, movies and comments collections
	db *mongo.Database
}

// DatabaseFromURI returns the database named in the path of a MongoDB
// connection string, or "" when the URI does not name one.
func DatabaseFromURI(uri string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return cs.Database, nil
}

// New connects to MongoDB and returns a Client bound to database.
// An empty database falls back to the one in the URI, then to DefaultDatabase.
func New(ctx context.Context, mongoURI, database string, connectTimeout time.Duration) (*Client, error) {
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}

	if database == "" {
		name, err := DatabaseFromURI(mongoURI)
		if err != nil {
			return nil, err
		}
		database = name
	}
	if database == "" {
		database = DefaultDatabase
	}

	// SetConnectTimeout: fail fast if MongoDB is unreachable
	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(connectTimeout)

	// This doesn't actually connect yet, just creates the client
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	// Ping is the actual connection test
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database(database),
	}, nil
}

// Name returns the database name the client is bound to.
func (c *Client) Name() string {
	return c.db.Name()
}

// UsersCollection returns the users collection.
func (c *Client) UsersCollection() *mongo.Collection {
	return c.db.Collection(UsersCollectionName)
}

// MoviesCollection returns the movies collection.
func (c *Client) MoviesCollection() *mongo.Collection {
	return c.db.Collection(MoviesCollectionName)
}

// CommentsCollection returns the comments collection.
func (c *Client) CommentsCollection() *mongo.Collection {
	return c.db.Collection(CommentsCollectionName)
}

// Drop removes the users, movies and comments collections.
func (c *Client) Drop(ctx context.Context) error {
	for _, coll := range []*mongo.Collection{c.UsersCollection(), c.MoviesCollection(), c.CommentsCollection()} {
		if err := coll.Drop(ctx); err != nil {
			return fmt.Errorf("failed to drop %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	// ctx can have timeout if you want to force shutdown after N seconds
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates the indexes backing the movie and comment lookups.
func (c *Client) CreateIndexes(ctx context.Context) error {
	// ===== MOVIES COLLECTION INDEXES =====
	// None are unique: the same title may be stored more than once
	movieIndexes := []mongo.IndexModel{
		// Used by: the "The Matrix" updates and the comment cleanup lookup
		{Keys: map[string]int{"title": 1}},
		// Used by: director equality reads and the per-director aggregation
		{Keys: map[string]int{"director": 1}},
		// Used by: the 1997 genre update and the per-year aggregation
		{Keys: map[string]int{"year": 1}},
		// Multikey index over the genres array
		{Keys: map[string]int{"genres": 1}},
	}

	_, err := c.MoviesCollection().Indexes().CreateMany(ctx, movieIndexes)
	if err != nil {
		return fmt.Errorf("failed to create movie indexes: %w", err)
	}

	// ===== COMMENTS COLLECTION INDEX =====
	// Back-reference to the owning movie, used when deleting a movie's comments
	commentsIndexModel := mongo.IndexModel{
		Keys: map[string]int{"movie": 1},
	}

	_, err = c.CommentsCollection().Indexes().CreateOne(ctx, commentsIndexModel)
	if err != nil {
		return fmt.Errorf("failed to create comments index: %w", err)
	}

	return nil
}
