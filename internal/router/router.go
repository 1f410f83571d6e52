package router

import (
	"fmt"
	"net/http"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"github.com/valyala/fasthttp/pprofhandler"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/restaurant/api/handler"
	"github.com/fastygo/restaurant/api/transport"
	"github.com/fastygo/restaurant/domain"
	"github.com/fastygo/restaurant/internal/middleware"
)

type Handlers struct {
	User   *apiHandler.UserHandler
	Health *apiHandler.HealthHandler
}

// Options carries the cross-cutting pieces shared by every route.
type Options struct {
	APIVersion string
	Auth       *middleware.Authenticator
	OnError    middleware.ErrorHandler
	// Limiter throttles the unauthenticated credential routes. Nil disables it.
	Limiter *middleware.RateLimiter
	// Metrics instruments every request. Nil disables it.
	Metrics        *middleware.Metrics
	MetricsHandler http.Handler
	EnablePprof    bool
	Logger         *zap.Logger
}

// New builds the request handler: access log, metrics and panic recovery
// around the route table.
func New(handlers Handlers, opts Options) fasthttp.RequestHandler {
	if opts.APIVersion == "" {
		opts.APIVersion = "v1"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.OnError == nil {
		opts.OnError = apiHandler.NewErrorHandler(opts.Logger)
	}

	r := router.New()
	r.SaveMatchedRoutePath = true
	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		opts.OnError(ctx, domain.NewError(domain.ErrCodeNotFound, fmt.Sprintf("can't find %s on this server", ctx.Path())))
	}
	r.MethodNotAllowed = func(ctx *fasthttp.RequestCtx) {
		opts.OnError(ctx, domain.NewError(domain.ErrCodeNotFound, fmt.Sprintf("can't find %s %s on this server", ctx.Method(), ctx.Path())))
	}

	r.GET("/health", handlers.Health.Check)
	if opts.MetricsHandler != nil {
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(opts.MetricsHandler))
	}
	if opts.EnablePprof {
		r.GET("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}

	registerUserRoutes(r, handlers.User, opts)

	wrappers := []middleware.Wrapper{middleware.AccessLog(opts.Logger)}
	if opts.Metrics != nil {
		wrappers = append(wrappers, opts.Metrics.Instrument)
	}
	wrappers = append(wrappers, middleware.Recover(opts.OnError, opts.Logger))
	return middleware.Wrap(r.Handler, wrappers...)
}

func registerUserRoutes(r *router.Router, h *apiHandler.UserHandler, opts Options) {
	base := "/api/" + opts.APIVersion + "/users"
	pipe := func(steps ...middleware.Step) fasthttp.RequestHandler {
		return middleware.Pipeline(opts.OnError, steps...)
	}
	authenticate := opts.Auth.Authenticate
	admin := middleware.RestrictTo(domain.RoleAdmin)
	limit := func(ctx *fasthttp.RequestCtx) error { return nil }
	if opts.Limiter != nil {
		limit = opts.Limiter.Limit
	}

	r.GET(base, pipe(authenticate, h.GetCurrentUser))
	r.PATCH(base, pipe(
		authenticate,
		middleware.Validate[transport.UpdateUserRequest](),
		middleware.Update[transport.UpdateUserRequest](),
		h.UpdateCurrentUser,
	))
	r.DELETE(base, pipe(authenticate, h.DeactivateCurrentUser))

	r.POST(base+"/register", pipe(limit, middleware.Validate[transport.RegisterRequest](), h.Register))
	r.POST(base+"/login", pipe(limit, middleware.Validate[transport.LoginRequest](), h.Login))
	r.POST(base+"/forgot-password", pipe(limit, middleware.Validate[transport.ForgotPasswordRequest](), h.ForgotPassword))
	r.PATCH(base+"/reset-password/{token}", pipe(limit, middleware.Validate[transport.ResetPasswordRequest](), h.ResetPassword))
	r.PATCH(base+"/update-password", pipe(
		authenticate,
		middleware.Validate[transport.UpdatePasswordRequest](),
		h.UpdatePassword,
	))

	r.GET(base+"/reviews", pipe(authenticate, middleware.Filter, middleware.Fields, h.GetCurrentUserReviews))
	r.GET(base+"/{id}", pipe(authenticate, admin, middleware.Fields, h.GetUser))
	r.DELETE(base+"/{id}", pipe(authenticate, admin, h.DeleteUser))
	r.GET(base+"/{id}/reviews", pipe(middleware.Filter, middleware.Fields, h.GetUserReviews))
}
