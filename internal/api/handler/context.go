package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxCustomerID extracts the trusted customer id injected by the Auth
// middleware and fast-fails before any service call. Presence of a
// non-empty id proves the middleware ran and verified the token.
func ctxCustomerID(c echo.Context) (string, error) {
	id, _ := c.Get("customer_id").(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
