package rest

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// pageParams reads ?page= and ?limit= with sane clamping.
func pageParams(c echo.Context) (page, limit int) {
	page = defaultPage
	limit = defaultLimit

	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return page, limit
}

// callerID returns the authenticated user's id, zero if anonymous.
func callerID(c echo.Context) uint {
	if id, ok := c.Get("user_id").(uint); ok {
		return id
	}
	return 0
}

func callerIsAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin" || role == "ADMIN"
}
