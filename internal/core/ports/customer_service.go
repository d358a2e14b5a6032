package ports

import (
	"context"

	"github.com/shopstack/customer-service/internal/core/domain"
)

// RegisterInput carries all data needed to create a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateProfileInput carries the optional profile changes. Password, when
// set, is the raw secret and is hashed by the service before storage.
type UpdateProfileInput struct {
	Name     *string
	Email    *string
	Password *string
}

// CustomerService defines the account and session lifecycle use cases.
type CustomerService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Customer, error)
	// Authenticate exchanges credentials for a signed bearer token. Repeated
	// logins within the token TTL return the same cached token.
	Authenticate(ctx context.Context, email, password string) (string, error)
	GetProfile(ctx context.Context, customerID string) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]*domain.Customer, int64, error)
	UpdateProfile(ctx context.Context, customerID string, input UpdateProfileInput) (*domain.Customer, error)
	Logout(ctx context.Context, customerID string) error
	Delete(ctx context.Context, customerID string) error
}
