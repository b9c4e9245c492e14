package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-system/internal/core/domain"
	"github.com/99minutos/identity-system/internal/core/ports"
	"github.com/99minutos/identity-system/internal/pkg/metrics"
)

const bearerPrefix = "Bearer"

// Authenticate gives every request a security context and, when a valid
// bearer token is present, installs the principal it carries. It never
// rejects a request: a missing, foreign or invalid credential leaves the
// request anonymous and authorization is decided further down the chain.
func Authenticate(codec ports.TokenCodec, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := domain.WithSecurityContext(req.Context())
			c.SetRequest(req.WithContext(ctx))

			header := req.Header.Get(echo.HeaderAuthorization)
			if header == "" || !strings.HasPrefix(header, bearerPrefix) {
				return next(c)
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			if !codec.Verify(token) {
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return next(c)
			}

			principal, err := codec.ToPrincipal(token)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("malformed").Inc()
				log.Debug().Err(err).Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).Msg("verified token carries malformed claims")
				return next(c)
			}

			domain.SetSecurityContext(ctx, domain.Authenticated{Principal: principal})
			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()

			return next(c)
		}
	}
}
