package ports

import (
	"context"

	"github.com/shopstack/customer-service/internal/core/domain"
)

// CustomerUpdate carries the mutable profile fields. Nil pointers mean
// "leave unchanged". PasswordHash, when set, is already hashed by the
// service layer.
type CustomerUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// CustomerRepository defines the interface for customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	Update(ctx context.Context, id string, update CustomerUpdate) (*domain.Customer, error)
	// Delete removes the customer record. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
	// List returns all customers and the total count. The count is taken by a
	// separate query running concurrently with the listing, so the pair may
	// transiently disagree under concurrent writes.
	List(ctx context.Context) ([]*domain.Customer, int64, error)
}
