package ports

import (
	"context"
	"time"
)

// TokenCache stores the signed access token for a customer id, with a TTL
// kept equal to the token's own expiry. It is an optimization layer: losing
// an entry only forces a new sign.
type TokenCache interface {
	// Get returns the cached token for customerID, or "" on a cache miss.
	Get(ctx context.Context, customerID string) (string, error)
	Set(ctx context.Context, customerID, token string, ttl time.Duration) error
	// Delete removes the cached token. Deleting an absent key is a no-op.
	Delete(ctx context.Context, customerID string) error
}
