package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopstack/customer-service/internal/core/domain"
	"github.com/shopstack/customer-service/internal/core/ports"
)

// CustomerService implements the account and session lifecycle. It owns
// password verification, token minting, and the token cache discipline; the
// repository is the source of truth, the cache an optimization layer.
type CustomerService struct {
	repo      ports.CustomerRepository
	cache     ports.TokenCache
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time // injectable for expiry tests
}

func NewCustomerService(repo ports.CustomerRepository, cache ports.TokenCache, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *CustomerService {
	if tokenTTL <= 0 {
		tokenTTL = 15 * time.Minute
	}
	return &CustomerService{
		repo:      repo,
		cache:     cache,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Register hashes the password and persists a new customer. Upstream
// validation already guarantees well-formed input; the checks here are
// defensive only.
func (s *CustomerService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Customer, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	if !domain.ValidRole(input.Role) {
		return nil, domain.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	customer := &domain.Customer{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         input.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("customer_id", created.ID).Str("role", created.Role).Msg("customer registered")
	return created, nil
}

// Authenticate maps (email, password) to a signed bearer token. A lookup
// miss and a password mismatch are reported as the same error kind so a
// caller cannot probe which emails are registered. The cache is consulted
// only after the password check passes.
func (s *CustomerService) Authenticate(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	customer, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)) != nil {
		return "", domain.ErrInvalidCredentials
	}

	cached, err := s.cache.Get(ctx, customer.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("customer_id", customer.ID).Msg("token cache read failed, minting fresh token")
	} else if cached != "" {
		return cached, nil
	}

	token, err := s.signToken(customer)
	if err != nil {
		return "", err
	}

	// Cache TTL equals the token lifetime so the entry and the signed expiry
	// stay in lock-step. A failed write only loses the reuse optimization;
	// the token is valid by signature, not by cache presence.
	if err := s.cache.Set(ctx, customer.ID, token, s.tokenTTL); err != nil {
		s.logger.Warn().Err(err).Str("customer_id", customer.ID).Msg("token cache write failed")
	}

	return token, nil
}

// GetProfile is a pure read-through to the repository. The store and the
// cache are not transactionally linked, so a miss on an authenticated id is
// a hard error, not an empty profile.
func (s *CustomerService) GetProfile(ctx context.Context, customerID string) (*domain.Customer, error) {
	if customerID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.repo.FindByID(ctx, customerID)
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]*domain.Customer, int64, error) {
	return s.repo.List(ctx)
}

// UpdateProfile applies partial changes; a supplied raw password is hashed
// before storage. Any currently cached token is left untouched: a password
// change takes effect for future authentications only, and an already
// issued token stays valid until its own expiry.
func (s *CustomerService) UpdateProfile(ctx context.Context, customerID string, input ports.UpdateProfileInput) (*domain.Customer, error) {
	if customerID == "" {
		return nil, domain.ErrInvalidInput
	}

	update := ports.CustomerUpdate{
		Name:  input.Name,
		Email: input.Email,
	}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, domain.ErrInvalidInput
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashed := string(hash)
		update.PasswordHash = &hashed
	}

	updated, err := s.repo.Update(ctx, customerID, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("customer_id", customerID).Msg("profile updated")
	return updated, nil
}

// Logout removes the cached token. A cache miss is a no-op, so repeated
// logouts succeed.
func (s *CustomerService) Logout(ctx context.Context, customerID string) error {
	if customerID == "" {
		return domain.ErrInvalidInput
	}
	return s.cache.Delete(ctx, customerID)
}

// Delete removes the cached token first, then the store record. The order
// matters: a store failure must not leave an orphaned cached token that
// keeps authenticating a deleted identity until its TTL runs out.
func (s *CustomerService) Delete(ctx context.Context, customerID string) error {
	if customerID == "" {
		return domain.ErrInvalidInput
	}

	if err := s.cache.Delete(ctx, customerID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, customerID); err != nil {
		return err
	}

	s.logger.Info().Str("customer_id", customerID).Msg("customer deleted")
	return nil
}

func (s *CustomerService) signToken(customer *domain.Customer) (string, error) {
	claims := jwt.MapClaims{
		"sub":  customer.ID,
		"role": customer.Role,
		"exp":  s.now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
