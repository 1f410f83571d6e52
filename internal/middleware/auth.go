package middleware

import (
	"context"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/restaurant/domain"
	"github.com/fastygo/restaurant/pkg/httpcontext"
	appLogger "github.com/fastygo/restaurant/pkg/logger"
	"github.com/fastygo/restaurant/pkg/token"
)

// TokenCookie is the cookie carrying the session token.
const TokenCookie = "jwt"

const userValueKey = "current_user"

type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Authenticator resolves the session token on a request to an active user.
type Authenticator struct {
	tokens  TokenVerifier
	users   UserFinder
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func NewAuthenticator(tokens TokenVerifier, users UserFinder, adapter *httpcontext.Adapter, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{tokens: tokens, users: users, adapter: adapter, logger: logger}
}

// Authenticate requires a valid token for an active user whose password has not
// changed since the token was issued, and stores that user on the request.
func (a *Authenticator) Authenticate(ctx *fasthttp.RequestCtx) error {
	raw := extractToken(ctx)
	if raw == "" {
		return domain.ErrUnauthorized
	}

	claims, err := a.tokens.Verify(raw)
	if err != nil {
		return domain.WrapError(domain.ErrCodeUnauthorized, "invalid or expired token", err)
	}

	reqCtx, cancel := a.adapter.Attach(ctx)
	defer cancel()

	user, err := a.users.GetByID(reqCtx, claims.UserID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.ErrUserInactive
		}
		return err
	}
	if !user.IsActive() {
		return domain.ErrUserInactive
	}
	if user.ChangedPasswordAfter(claims.IssuedAt()) {
		appLogger.WithRequestID(reqCtx, a.logger).Debug("token predates password change", zap.String("user_id", user.ID))
		return domain.ErrPasswordChanged
	}

	ctx.SetUserValue(userValueKey, user)
	return nil
}

// RestrictTo admits only users holding one of roles. It must run after Authenticate.
func RestrictTo(roles ...domain.Role) Step {
	return func(ctx *fasthttp.RequestCtx) error {
		user, ok := CurrentUser(ctx)
		if !ok {
			return domain.ErrUnauthorized
		}
		if !user.HasAnyRole(roles...) {
			return domain.ErrForbidden
		}
		return nil
	}
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(ctx *fasthttp.RequestCtx) (*domain.User, bool) {
	user, ok := ctx.UserValue(userValueKey).(*domain.User)
	return user, ok && user != nil
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)))
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return string(ctx.Request.Header.Cookie(TokenCookie))
}
