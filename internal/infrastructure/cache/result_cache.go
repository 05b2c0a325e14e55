package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ywang1110/SentimentSense/internal/domain/entity"
)

// ResultCache caches classification results keyed by model and input text.
// Inference is deterministic for a frozen model, so a cached result is
// interchangeable with a fresh one. A nil *ResultCache is a no-op.
type ResultCache struct {
	client    *redis.Client
	modelName string
	ttl       time.Duration
}

// NewResultCache creates a ResultCache on top of an existing redis client
func NewResultCache(client *redis.Client, modelName string, ttl time.Duration) *ResultCache {
	return &ResultCache{
		client:    client,
		modelName: modelName,
		ttl:       ttl,
	}
}

// Key derives the cache key for a text under the configured model
func (c *ResultCache) Key(text string) string {
	sum := sha256.Sum256([]byte(c.modelName + "\x00" + text))
	return "sentiment:" + hex.EncodeToString(sum[:])
}

// Get returns the cached result for text, or (nil, false) on miss or error
func (c *ResultCache) Get(ctx context.Context, text string) (*entity.AnalysisResult, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	// any cache failure is a miss
	raw, err := c.client.Get(ctx, c.Key(text)).Bytes()
	if err != nil {
		return nil, false
	}

	var result entity.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false
	}

	return &result, true
}

// Set stores a result; failures are ignored since the cache is best-effort
func (c *ResultCache) Set(ctx context.Context, result *entity.AnalysisResult) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}

	_ = c.client.Set(ctx, c.Key(result.Text), raw, c.ttl).Err()
}
