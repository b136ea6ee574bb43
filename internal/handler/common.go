// Package handler implements the HTTP endpoints.  All handlers assume JWT
// authentication and role validation were performed by middleware and read
// the authenticated identity from the echo context.
package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dvornik/appointment-booking/internal/model"
)

// getUserID extracts the user_id stored by the JWT middleware and converts
// it to uint64.  JWT numeric claims decode as float64, so several source
// types are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// isAdmin reports whether the current request carries the ADMIN role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleAdmin
}
