package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cacheCollection = "metadata_cache"

// Cache stores provider responses in a TTL-indexed mongo collection so
// repeated searches don't burn the provider quota.
type Cache struct {
	col *mongo.Collection
	ttl time.Duration
}

type cacheDoc struct {
	Key       string    `bson:"key"`
	Payload   []byte    `bson:"payload"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// ConnectCache dials MONGODB_URI and prepares the cache collection
// with its TTL index.
func ConnectCache(ttl time.Duration) (*Cache, context.CancelFunc, error) {
	mongoURI := os.Getenv("MONGODB_URI")

	uri, err := url.Parse(mongoURI)
	if err != nil {
		return nil, nil, err
	}
	dbName := strings.TrimPrefix(uri.Path, "/")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		cancel()
		return nil, nil, err
	}

	col := client.Database(dbName).Collection(cacheCollection)

	// TTL index on expires_at; mongo expires each doc at the stored time
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"expires_at": 1},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	if _, err := col.Indexes().CreateOne(ctx, indexModel); err != nil {
		cancel()
		return nil, nil, err
	}

	return &Cache{col: col, ttl: ttl}, cancel, nil
}

// Get unmarshals the cached payload for key into out, reporting
// whether a live entry existed.
func (c *Cache) Get(ctx context.Context, key string, out any) (bool, error) {
	var doc cacheDoc
	err := c.col.FindOne(ctx, bson.M{"key": key, "expires_at": bson.M{"$gt": time.Now()}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(doc.Payload, out); err != nil {
		return false, err
	}
	return true, nil
}

// Set upserts the payload for key with the cache TTL.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = c.col.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": cacheDoc{Key: key, Payload: payload, ExpiresAt: time.Now().Add(c.ttl)}},
		options.Update().SetUpsert(true),
	)
	return err
}
