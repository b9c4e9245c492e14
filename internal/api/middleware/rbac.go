package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-system/internal/core/domain"
)

// RequireAuthority lets the request through only when its principal holds at
// least one of the given authorities (e.g. "ROLE_ADMIN"). Anonymous requests
// and principals lacking every authority fail with domain.ErrAccessDenied.
func RequireAuthority(authorities ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := domain.CurrentPrincipal(c.Request().Context())
			if !ok {
				return domain.ErrAccessDenied
			}
			for _, a := range authorities {
				if principal.HasAuthority(a) {
					return next(c)
				}
			}
			return domain.ErrAccessDenied
		}
	}
}

// RequireAuthenticated rejects anonymous requests with domain.ErrAccessDenied.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := domain.CurrentPrincipal(c.Request().Context()); !ok {
				return domain.ErrAccessDenied
			}
			return next(c)
		}
	}
}
