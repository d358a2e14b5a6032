package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopstack/customer-service/internal/core/domain"
	"github.com/shopstack/customer-service/internal/core/ports"
)

type stubCustomerService struct {
	registerFn      func(ctx context.Context, input ports.RegisterInput) (*domain.Customer, error)
	authenticateFn  func(ctx context.Context, email, password string) (string, error)
	getProfileFn    func(ctx context.Context, customerID string) (*domain.Customer, error)
	listFn          func(ctx context.Context) ([]*domain.Customer, int64, error)
	updateProfileFn func(ctx context.Context, customerID string, input ports.UpdateProfileInput) (*domain.Customer, error)
	logoutFn        func(ctx context.Context, customerID string) error
	deleteFn        func(ctx context.Context, customerID string) error
}

func (s *stubCustomerService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Customer, error) {
	return s.registerFn(ctx, input)
}

func (s *stubCustomerService) Authenticate(ctx context.Context, email, password string) (string, error) {
	return s.authenticateFn(ctx, email, password)
}

func (s *stubCustomerService) GetProfile(ctx context.Context, customerID string) (*domain.Customer, error) {
	return s.getProfileFn(ctx, customerID)
}

func (s *stubCustomerService) ListCustomers(ctx context.Context) ([]*domain.Customer, int64, error) {
	return s.listFn(ctx)
}

func (s *stubCustomerService) UpdateProfile(ctx context.Context, customerID string, input ports.UpdateProfileInput) (*domain.Customer, error) {
	return s.updateProfileFn(ctx, customerID, input)
}

func (s *stubCustomerService) Logout(ctx context.Context, customerID string) error {
	return s.logoutFn(ctx, customerID)
}

func (s *stubCustomerService) Delete(ctx context.Context, customerID string) error {
	return s.deleteFn(ctx, customerID)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCustomerHandler_Register_Success(t *testing.T) {
	stub := &stubCustomerService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*domain.Customer, error) {
			if input.Name != "Ana" || input.Email != "ana@x.com" || input.Role != "user" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.Customer{ID: "cust_1", Name: input.Name, Email: input.Email, Role: input.Role}, nil
		},
	}
	h := NewCustomerHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/customers/register",
		`{"name":"Ana","email":"ana@x.com","password":"p1","role":"user"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "Registration successful" {
		t.Fatalf("unexpected message: %q", resp["message"])
	}
}

func TestCustomerHandler_Register_InvalidRole(t *testing.T) {
	stub := &stubCustomerService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*domain.Customer, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewCustomerHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/customers/register",
		`{"name":"Ana","email":"ana@x.com","password":"p1","role":"root"}`)

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid role, got %v", err)
	}
}

func TestCustomerHandler_Register_MalformedEmail(t *testing.T) {
	stub := &stubCustomerService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*domain.Customer, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewCustomerHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/customers/register",
		`{"name":"Ana","email":"not-an-email","password":"p1","role":"user"}`)

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed email, got %v", err)
	}
}

func TestCustomerHandler_Login_Success(t *testing.T) {
	stub := &stubCustomerService{
		authenticateFn: func(ctx context.Context, email, password string) (string, error) {
			if email != "ana@x.com" || password != "p1" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return "token123", nil
		},
	}
	h := NewCustomerHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/customers/login",
		`{"email":"ana@x.com","password":"p1"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["access_token"] != "token123" {
		t.Fatalf("expected access_token, got %v", resp)
	}
}

func TestCustomerHandler_Login_InvalidCredentialsPropagate(t *testing.T) {
	stub := &stubCustomerService{
		authenticateFn: func(ctx context.Context, email, password string) (string, error) {
			return "", domain.ErrInvalidCredentials
		},
	}
	h := NewCustomerHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/customers/login",
		`{"email":"ana@x.com","password":"bad"}`)

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials to propagate, got %v", err)
	}
}

func TestCustomerHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubCustomerService{
		authenticateFn: func(ctx context.Context, email, password string) (string, error) {
			t.Fatalf("should not be called")
			return "", nil
		},
	}
	h := NewCustomerHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/customers/login", "{")

	err := h.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed payload, got %v", err)
	}
}

func TestCustomerHandler_GetProfile_Success(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	stub := &stubCustomerService{
		getProfileFn: func(ctx context.Context, customerID string) (*domain.Customer, error) {
			if customerID != "cust_1" {
				t.Fatalf("unexpected id: %s", customerID)
			}
			return &domain.Customer{
				ID: "cust_1", Name: "Ana", Email: "ana@x.com", Role: "user",
				CreatedAt: now, UpdatedAt: now,
			}, nil
		},
	}
	h := NewCustomerHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/customers/profile", "")
	c.Set("customer_id", "cust_1")

	if err := h.GetProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	customer := resp["customer"]
	if customer["id"] != "cust_1" || customer["email"] != "ana@x.com" {
		t.Fatalf("unexpected customer payload: %+v", customer)
	}
	if _, leaked := customer["password_hash"]; leaked {
		t.Fatalf("password hash must never appear in responses")
	}
}

func TestCustomerHandler_GetProfile_MissingClaims(t *testing.T) {
	stub := &stubCustomerService{
		getProfileFn: func(ctx context.Context, customerID string) (*domain.Customer, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewCustomerHandler(stub)

	c, _ := newTestContext(t, http.MethodGet, "/customers/profile", "")

	err := h.GetProfile(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth claims, got %v", err)
	}
}

func TestCustomerHandler_UpdateProfile_Success(t *testing.T) {
	stub := &stubCustomerService{
		updateProfileFn: func(ctx context.Context, customerID string, input ports.UpdateProfileInput) (*domain.Customer, error) {
			if customerID != "cust_1" {
				t.Fatalf("unexpected id: %s", customerID)
			}
			if input.Email == nil || *input.Email != "new@x.com" {
				t.Fatalf("expected email change, got %+v", input)
			}
			if input.Name != nil || input.Password != nil {
				t.Fatalf("unset fields must stay nil: %+v", input)
			}
			return &domain.Customer{ID: customerID, Email: *input.Email}, nil
		},
	}
	h := NewCustomerHandler(stub)

	c, rec := newTestContext(t, http.MethodPatch, "/customers/profile", `{"email":"new@x.com"}`)
	c.Set("customer_id", "cust_1")

	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCustomerHandler_Logout_Success(t *testing.T) {
	loggedOut := ""
	stub := &stubCustomerService{
		logoutFn: func(ctx context.Context, customerID string) error {
			loggedOut = customerID
			return nil
		},
	}
	h := NewCustomerHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/customers/logout", "")
	c.Set("customer_id", "cust_1")

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if loggedOut != "cust_1" {
		t.Fatalf("expected logout for cust_1, got %q", loggedOut)
	}
}

func TestCustomerHandler_Delete_Success(t *testing.T) {
	deleted := ""
	stub := &stubCustomerService{
		deleteFn: func(ctx context.Context, customerID string) error {
			deleted = customerID
			return nil
		},
	}
	h := NewCustomerHandler(stub)

	c, rec := newTestContext(t, http.MethodDelete, "/customers/cust_2", "")
	c.SetParamNames("customer_id")
	c.SetParamValues("cust_2")
	c.Set("customer_id", "cust_1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deleted != "cust_2" {
		t.Fatalf("expected delete for cust_2, got %q", deleted)
	}
}

func TestCustomerHandler_List_Success(t *testing.T) {
	stub := &stubCustomerService{
		listFn: func(ctx context.Context) ([]*domain.Customer, int64, error) {
			return []*domain.Customer{
				{ID: "cust_1", Name: "Ana", Email: "ana@x.com", Role: "user"},
				{ID: "cust_2", Name: "Bob", Email: "bob@x.com", Role: "admin"},
			}, 2, nil
		},
	}
	h := NewCustomerHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/customers", "")
	c.Set("customer_id", "cust_1")

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Customers []map[string]any `json:"customers"`
		Total     int64            `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Customers) != 2 || resp.Total != 2 {
		t.Fatalf("unexpected list payload: %+v", resp)
	}
}
