package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopstack/customer-service/internal/api/metrics"
	"github.com/shopstack/customer-service/internal/core/ports"
)

// CustomerHandler handles HTTP requests for account and session operations.
// Errors from the service propagate to the central HTTP error handler,
// which owns the domain-error-to-status mapping.
type CustomerHandler struct {
	service ports.CustomerService
}

func NewCustomerHandler(service ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// Register creates a new customer account.
//
// @Summary      Register a new customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /customers/register [post]
func (h *CustomerHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(created.Role).Inc()
	return c.JSON(http.StatusCreated, messageResponse{Message: "Registration successful"})
}

// Login authenticates a customer and returns a bearer token.
//
// @Summary      Login
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /customers/login [post]
func (h *CustomerHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	token, err := h.service.Authenticate(c.Request().Context(), req.Email, req.Password)
	metrics.LoginDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{AccessToken: token})
}

// GetProfile returns the authenticated customer's record.
//
// @Summary      Get own profile
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  customerEnvelope
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /customers/profile [get]
func (h *CustomerHandler) GetProfile(c echo.Context) error {
	customerID, err := ctxCustomerID(c)
	if err != nil {
		return err
	}

	customer, err := h.service.GetProfile(c.Request().Context(), customerID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, customerEnvelope{Customer: toCustomerResponse(customer)})
}

// UpdateProfile applies partial changes to the authenticated customer.
//
// @Summary      Update own profile
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /customers/profile [patch]
func (h *CustomerHandler) UpdateProfile(c echo.Context) error {
	customerID, err := ctxCustomerID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.service.UpdateProfile(c.Request().Context(), customerID, ports.UpdateProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Profile updated successfully"})
}

// Logout erases the cached session token for the authenticated customer.
// Logging out with no live token is a successful no-op.
//
// @Summary      Logout
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /customers/logout [post]
func (h *CustomerHandler) Logout(c echo.Context) error {
	customerID, err := ctxCustomerID(c)
	if err != nil {
		return err
	}

	if err := h.service.Logout(c.Request().Context(), customerID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
}

// Delete removes a customer account and its cached session.
//
// @Summary      Delete a customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id  path      string  true  "Customer id"
// @Success      200          {object}  messageResponse
// @Failure      401          {object}  errorResponse
// @Router       /customers/{customer_id} [delete]
func (h *CustomerHandler) Delete(c echo.Context) error {
	if _, err := ctxCustomerID(c); err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("customer_id")); err != nil {
		return err
	}

	metrics.DeletionsTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Customer deleted successfully"})
}

// List returns all customers plus the total count. The count is produced by
// a query concurrent with the listing, so the two may briefly disagree
// under concurrent writes.
//
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listCustomersResponse
// @Failure      401  {object}  errorResponse
// @Router       /customers [get]
func (h *CustomerHandler) List(c echo.Context) error {
	if _, err := ctxCustomerID(c); err != nil {
		return err
	}

	customers, total, err := h.service.ListCustomers(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]customerResponse, len(customers))
	for i, customer := range customers {
		out[i] = toCustomerResponse(customer)
	}
	return c.JSON(http.StatusOK, listCustomersResponse{Customers: out, Total: total})
}

// GetByID returns a single customer record by id.
//
// @Summary      Get a customer by id
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id  path      string  true  "Customer id"
// @Success      200          {object}  customerEnvelope
// @Failure      404          {object}  errorResponse
// @Router       /customers/{customer_id} [get]
func (h *CustomerHandler) GetByID(c echo.Context) error {
	if _, err := ctxCustomerID(c); err != nil {
		return err
	}

	customer, err := h.service.GetProfile(c.Request().Context(), c.Param("customer_id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, customerEnvelope{Customer: toCustomerResponse(customer)})
}
