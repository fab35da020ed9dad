package middleware // reusable HTTP middleware: sessions, rate limiting, caching, logging

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/05Ashutosh/food-recipe/internal/apperror"
	"github.com/05Ashutosh/food-recipe/internal/model"
)

// Context keys set by Session.
const (
	ContextUser   = "user"
	ContextUserID = "user_id"

	// AccessCookie is the cookie carrying the access token.
	AccessCookie = "accessToken"
)

// TokenValidator checks an access token and returns the user id it names.
type TokenValidator interface {
	ValidateAccess(token string) (uint64, error)
}

// UserLoader loads the session user.
type UserLoader interface {
	Current(ctx context.Context, userID uint64) (model.User, error)
}

var errUnauthorized = apperror.Auth("Unauthorized request")

// Session authenticates the request from the accessToken cookie, falling
// back to an Authorization: Bearer header. On success the user is stored
// under ContextUser and its id under ContextUserID; any failure is a 401.
// Session never refreshes tokens.
func Session(tokens TokenValidator, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authenticate(c, tokens, users); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// OptionalSession attaches the session user when the request carries a
// valid token and lets anonymous requests through.
func OptionalSession(tokens TokenValidator, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if bearerOrCookie(c) != "" {
				_ = authenticate(c, tokens, users)
			}
			return next(c)
		}
	}
}

func authenticate(c echo.Context, tokens TokenValidator, users UserLoader) error {
	raw := bearerOrCookie(c)
	if raw == "" {
		return errUnauthorized
	}
	id, err := tokens.ValidateAccess(raw)
	if err != nil {
		return apperror.Auth("Invalid access token", err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	u, err := users.Current(ctx, id)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			return err
		}
		return apperror.Auth("Invalid access token", err)
	}
	c.Set(ContextUser, u)
	c.Set(ContextUserID, u.ID)
	return nil
}

func bearerOrCookie(c echo.Context) string {
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// CurrentUser returns the user stored by Session.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(ContextUser).(model.User)
	return u, ok
}
