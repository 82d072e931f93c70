//nolint:varnamelen
package echo

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	soidc "go.pilab.hu/shadow-oidc"
	oauthErrors "go.pilab.hu/shadow-oidc/errors"
	"go.pilab.hu/shadow-oidc/parameter"
)

// OAuth2API serves the provider endpoints.
type OAuth2API struct {
	service   *soidc.OAuthService
	discovery *soidc.OpenIDConfiguration
}

// NewOAuth2API initializes the OAuth2 API.
func NewOAuth2API(service *soidc.OAuthService, discovery *soidc.OpenIDConfiguration) *OAuth2API {
	return &OAuth2API{
		service:   service,
		discovery: discovery,
	}
}

// RegisterRoutes registers the OIDC routes. tokenMiddleware wraps /token
// only, typically with a rate limiter.
func (oa *OAuth2API) RegisterRoutes(e *echo.Echo, tokenMiddleware ...echo.MiddlewareFunc) {
	e.GET("/authorize", oa.AuthorizeHandler)
	e.POST("/token", oa.TokenHandler, tokenMiddleware...)
	e.GET("/userinfo", oa.UserInfoHandler)
	e.POST("/userinfo", oa.UserInfoHandler)
	e.GET("/health", oa.HealthHandler)

	e.GET("/.well-known/openid-configuration", oa.OpenIDConfigurationHandler)
}

// AuthorizeHandler validates the authorization request, records the session
// and answers with a page that posts code and state to the redirect_uri.
func (oa *OAuth2API) AuthorizeHandler(c echo.Context) error {
	ctx := c.Request().Context()

	params, err := parameter.ParseAuthorizeParams(c.QueryParams())
	if err != nil {
		return writeError(c, err)
	}

	resp, err := oa.service.Authorize(ctx, params)
	if err != nil {
		return writeError(c, err)
	}

	nonce := uuid.NewString()
	target := resp.RedirectURI.URL()

	h := c.Response().Header()
	h.Set("Cache-Control", "no-cache, no-store")
	h.Set("Pragma", "no-cache")
	h.Set(echo.HeaderContentSecurityPolicy, fmt.Sprintf(
		"default-src 'none'; script-src 'nonce-%s'; form-action %s://%s; frame-ancestors 'none'; base-uri 'none'",
		nonce, target.Scheme, target.Host,
	))

	return c.Render(http.StatusOK, formPostTemplate, formPostData{
		RedirectURI: target.String(),
		Code:        resp.Code.String(),
		State:       resp.State.String(),
		Nonce:       nonce,
	})
}

// TokenHandler redeems an authorization code for an access and ID token.
func (oa *OAuth2API) TokenHandler(c echo.Context) error {
	ctx := c.Request().Context()

	req := c.Request()
	if err := req.ParseForm(); err != nil {
		return writeError(c, oauthErrors.NewInvalidRequest("malformed form body"))
	}

	// Query parameters never count at the token endpoint.
	params, err := parameter.ParseTokenParams(req.PostForm)
	if err != nil {
		return writeError(c, err)
	}

	resp, err := oa.service.Exchange(ctx, params)
	if err != nil {
		return writeError(c, err)
	}

	h := c.Response().Header()
	h.Set("Cache-Control", "no-store")
	h.Set("Pragma", "no-cache")

	zerolog.Ctx(ctx).Info().Ctx(ctx).
		Str("scope", resp.Scope).
		Int64("expires_in", resp.ExpiresIn).
		Msg("Token generated")

	return c.JSON(http.StatusOK, resp)
}

// UserInfoHandler returns the profile behind a bearer access token.
func (oa *OAuth2API) UserInfoHandler(c echo.Context) error {
	token, ok := bearerToken(c.Request())
	if !ok {
		return writeError(c, oauthErrors.NewInvalidToken("missing bearer token"))
	}

	user, err := oa.service.UserInfo(c.Request().Context(), token)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set("Cache-Control", "no-store")

	return c.JSON(http.StatusOK, user)
}

func (oa *OAuth2API) OpenIDConfigurationHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, oa.discovery)
}

func (oa *OAuth2API) HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// writeError renders err as an OAuth2 error body. 401 and 403 responses carry
// a WWW-Authenticate challenge.
func writeError(c echo.Context, err error) error {
	ctx := c.Request().Context()
	status, body := oauthErrors.FromError(err)

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, fmt.Sprintf(`Bearer error="%s"`, body.Code))
	}

	logger := zerolog.Ctx(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error().Ctx(ctx).Err(err).Int("status", status).Msg("Request failed")
	} else {
		logger.Info().Ctx(ctx).Err(err).Int("status", status).Str("error_code", body.Code).Msg("Request rejected")
	}

	return c.JSON(status, body)
}
