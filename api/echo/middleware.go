package echo

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	oauthErrors "go.pilab.hu/shadow-oidc/errors"
	"golang.org/x/time/rate"
)

// SecurityHeadersMiddleware adds common security headers to responses.
// Handlers may override the Content-Security-Policy.
func SecurityHeadersMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'; base-uri 'none'")
			h.Set(echo.HeaderStrictTransportSecurity, "max-age=31536000; includeSubDomains")
			h.Set(echo.HeaderXContentTypeOptions, "nosniff")
			h.Set(echo.HeaderXFrameOptions, "DENY")
			h.Set("Referrer-Policy", "no-referrer")

			return next(c)
		}
	}
}

// ContextLoggerMiddleware stores a request scoped logger in the request
// context and continues any trace propagated by the caller.
func ContextLoggerMiddleware(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))

			l := logger.With().
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Logger()
			c.SetRequest(req.WithContext(l.WithContext(ctx)))

			return next(c)
		}
	}
}

// RequestLoggerMiddleware writes one access log line per request.
func RequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURIPath:   true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			event := zerolog.Ctx(ctx).Info()
			if v.Status >= http.StatusInternalServerError {
				event = zerolog.Ctx(ctx).Error().Err(v.Error)
			}

			event.Ctx(ctx).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("user_agent", v.UserAgent).
				Msg("request")

			return nil
		},
	})
}

// TokenRateLimiter limits /token per client IP. perSecond <= 0 disables it.
func TokenRateLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, oauthErrors.NewInvalidRequest("unable to identify client"))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			c.Response().Header().Set(echo.HeaderRetryAfter, "1")
			return c.JSON(http.StatusTooManyRequests, &oauthErrors.OAuth2Error{
				Code:        oauthErrors.SlowDown,
				Description: "too many token requests",
			})
		},
	})
}

// HTTPErrorHandler renders routing and framework errors as OAuth2 errors.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := oauthErrors.NewServerError("internal server error")

	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if status < http.StatusInternalServerError {
			body = oauthErrors.NewInvalidRequest(http.StatusText(status))
		}
	} else {
		status, body = oauthErrors.FromError(err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		zerolog.Ctx(c.Request().Context()).Error().Err(writeErr).Msg("failed to write error response")
	}
}
