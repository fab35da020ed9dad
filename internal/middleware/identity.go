package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the id stored by Session, or 0 for anonymous requests.
func UserID(c echo.Context) uint64 {
	id, _ := c.Get(ContextUserID).(uint64)
	return id
}

// userKey identifies the caller in rate limit keys. Anonymous callers
// share the "guest" key and are told apart by IP.
func userKey(c echo.Context) string {
	if id := UserID(c); id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "guest"
}
