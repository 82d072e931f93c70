package echo

import (
	"net"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ServerOptions configures NewServer.
type ServerOptions struct {
	Logger         zerolog.Logger
	TokenRateLimit float64
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// TrustedProxies lists the networks whose X-Forwarded-For is honored.
	// When empty the socket peer address is the client IP.
	TrustedProxies []*net.IPNet
}

// NewServer builds the echo instance with the middleware chain and all
// routes registered.
func NewServer(api *OAuth2API, opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = NewTemplateRenderer()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.IPExtractor = ipExtractor(opts.TrustedProxies)

	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 10 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.Use(middleware.RequestID())
	e.Use(ContextLoggerMiddleware(opts.Logger))
	e.Use(RequestLoggerMiddleware())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64K"))
	e.Use(SecurityHeadersMiddleware())

	api.RegisterRoutes(e, TokenRateLimiter(opts.TokenRateLimit))

	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	return e
}

func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}

	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, ipNet := range trusted {
		opts = append(opts, echo.TrustIPRange(ipNet))
	}

	return echo.ExtractIPFromXFFHeader(opts...)
}
