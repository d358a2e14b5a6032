package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shopstack/customer-service/internal/api/metrics"
	"github.com/shopstack/customer-service/internal/core/domain"
)

const tokenKeyPrefix = "accessToken:"

// TokenCache stores signed access tokens in Redis, one entry per customer
// id. Key format: accessToken:<customer_id>. The TTL is supplied by the
// caller and equals the token's own lifetime.
type TokenCache struct {
	client *redis.Client
}

// NewTokenCache creates a TokenCache wrapping the given Redis client.
func NewTokenCache(client *redis.Client) *TokenCache {
	return &TokenCache{client: client}
}

// Get returns the cached token for customerID, or "" when no live entry
// exists.
func (c *TokenCache) Get(ctx context.Context, customerID string) (string, error) {
	token, err := c.client.Get(ctx, c.key(customerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.TokenCacheTotal.WithLabelValues("miss").Inc()
			return "", nil
		}
		return "", fmt.Errorf("token cache get: %v: %w", err, domain.ErrDependencyUnavailable)
	}
	metrics.TokenCacheTotal.WithLabelValues("hit").Inc()
	return token, nil
}

// Set stores the token under the customer-id key, expiring after ttl.
func (c *TokenCache) Set(ctx context.Context, customerID, token string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(customerID), token, ttl).Err(); err != nil {
		return fmt.Errorf("token cache set: %v: %w", err, domain.ErrDependencyUnavailable)
	}
	return nil
}

// Delete removes the cached token. Deleting an absent key succeeds, which
// makes logout idempotent.
func (c *TokenCache) Delete(ctx context.Context, customerID string) error {
	if err := c.client.Del(ctx, c.key(customerID)).Err(); err != nil {
		return fmt.Errorf("token cache delete: %v: %w", err, domain.ErrDependencyUnavailable)
	}
	return nil
}

func (c *TokenCache) key(customerID string) string {
	return tokenKeyPrefix + customerID
}
