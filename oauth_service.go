package soidc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.pilab.hu/shadow-oidc/internal/audit"
	"go.pilab.hu/shadow-oidc/internal/metrics"
	"go.pilab.hu/shadow-oidc/parameter"
	"go.pilab.hu/shadow-oidc/tracing"
)

// AuthorizeResponse carries what the form_post page sends back to the
// client.
type AuthorizeResponse struct {
	Code        parameter.Code
	State       parameter.State
	RedirectURI parameter.RedirectURI
}

// OAuthService runs the authorization code flow against a session store.
type OAuthService struct {
	sessions SessionStore
	tokens   *TokenService
	users    UserRepository
	random   *RandomGenerator
	audit    *audit.Logger
	now      func() time.Time
}

type OAuthServiceOption func(*OAuthService)

// WithAuditLogger sends grant lifecycle events to l.
func WithAuditLogger(l *audit.Logger) OAuthServiceOption {
	return func(s *OAuthService) {
		s.audit = l
	}
}

func NewOAuthService(
	sessions SessionStore,
	tokens *TokenService,
	users UserRepository,
	random *RandomGenerator,
	opts ...OAuthServiceOption,
) *OAuthService {
	s := &OAuthService{
		sessions: sessions,
		tokens:   tokens,
		users:    users,
		random:   random,
		audit:    audit.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authorize records a new auth session and returns the code bound to it.
func (s *OAuthService) Authorize(ctx context.Context, params *parameter.AuthorizeParams) (*AuthorizeResponse, error) {
	ctx, span := tracing.Start(ctx, "OAuthService.Authorize")
	defer span.End()

	span.SetAttributes(attribute.String("oauth.client_id", params.ClientID.String()))

	code, err := s.random.Code()
	if err != nil {
		return nil, recordError(span, err)
	}

	subject, err := s.random.Subject()
	if err != nil {
		return nil, recordError(span, err)
	}

	session := &AuthSession{
		ClientID:      params.ClientID,
		CodeChallenge: params.CodeChallenge,
		RedirectURI:   params.RedirectURI,
		Scope:         params.Scope,
		Subject:       subject,
		AuthTime:      s.now().UTC().Truncate(time.Second),
	}

	if err := s.sessions.Put(ctx, code, session); err != nil {
		return nil, recordError(span, fmt.Errorf("failed to store auth session: %w", err))
	}

	metrics.CodesIssuedTotal.Inc()
	s.audit.Record(ctx, audit.Event{
		Action:   audit.ActionCodeIssued,
		ClientID: params.ClientID.String(),
		Subject:  subject.String(),
		Scope:    params.Scope.String(),
	})
	zerolog.Ctx(ctx).Info().Ctx(ctx).
		Str("client_id", params.ClientID.String()).
		Str("code", redact(code.String())).
		Str("scope", params.Scope.String()).
		Msg("authorization code issued")

	return &AuthorizeResponse{
		Code:        code,
		State:       params.State,
		RedirectURI: params.RedirectURI,
	}, nil
}

// Exchange redeems a code. The session is consumed by the lookup, so a
// failed exchange still burns the code.
func (s *OAuthService) Exchange(ctx context.Context, params *parameter.TokenParams) (*TokenResponse, error) {
	ctx, span := tracing.Start(ctx, "OAuthService.Exchange")
	defer span.End()

	session, err := s.sessions.Take(ctx, params.Code)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			err = &InvalidCodeError{Code: params.Code}
		}
		reason := failureReason(err)
		metrics.ExchangeFailuresTotal.WithLabelValues(reason).Inc()
		s.audit.Record(ctx, audit.Event{
			Action:   audit.ActionCodeRejected,
			ClientID: params.ClientID.String(),
			Reason:   reason,
			Err:      err,
		})
		return nil, recordError(span, err)
	}

	span.SetAttributes(attribute.String("oauth.client_id", session.ClientID.String()))

	resp, err := s.tokens.Issue(ctx, session, params)
	if err != nil {
		reason := failureReason(err)
		metrics.ExchangeFailuresTotal.WithLabelValues(reason).Inc()
		s.audit.Record(ctx, audit.Event{
			Action:   audit.ActionCodeRejected,
			ClientID: session.ClientID.String(),
			Subject:  session.Subject.String(),
			Reason:   reason,
			Err:      err,
		})
		zerolog.Ctx(ctx).Warn().Ctx(ctx).Err(err).
			Str("client_id", session.ClientID.String()).
			Msg("token exchange rejected")
		return nil, recordError(span, err)
	}

	metrics.TokensIssuedTotal.Inc()
	s.audit.Record(ctx, audit.Event{
		Action:   audit.ActionCodeRedeemed,
		ClientID: session.ClientID.String(),
		Subject:  session.Subject.String(),
		Scope:    resp.Scope,
	})

	return resp, nil
}

// UserInfo validates a bearer token and returns the subject's profile.
func (s *OAuthService) UserInfo(ctx context.Context, accessToken string) (*User, error) {
	ctx, span := tracing.Start(ctx, "OAuthService.UserInfo")
	defer span.End()

	claims, err := s.tokens.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		metrics.UserInfoRequestsTotal.WithLabelValues("rejected").Inc()
		s.audit.Record(ctx, audit.Event{Action: audit.ActionUserInfoDenied, Err: err})
		return nil, recordError(span, err)
	}

	user, err := s.users.GetUserBySubject(ctx, claims.UserID)
	if err != nil {
		metrics.UserInfoRequestsTotal.WithLabelValues("error").Inc()
		return nil, recordError(span, fmt.Errorf("failed to load user: %w", err))
	}

	metrics.UserInfoRequestsTotal.WithLabelValues("ok").Inc()
	s.audit.Record(ctx, audit.Event{
		Action:   audit.ActionUserInfoServed,
		ClientID: claims.ClientID.String(),
		Subject:  claims.Subject,
	})

	return user, nil
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func failureReason(err error) string {
	var (
		codeErr     *InvalidCodeError
		grantErr    *InvalidGrantError
		redirectErr *InvalidRedirectURIError
	)

	switch {
	case errors.As(err, &codeErr):
		return "invalid_code"
	case errors.As(err, &grantErr):
		return "invalid_grant"
	case errors.As(err, &redirectErr):
		return "invalid_redirect_uri"
	case errors.Is(err, ErrInvalidClientSecret):
		return "invalid_client_secret"
	default:
		return "internal"
	}
}
