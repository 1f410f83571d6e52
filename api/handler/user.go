package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/restaurant/api/transport"
	"github.com/fastygo/restaurant/domain"
	"github.com/fastygo/restaurant/internal/middleware"
	"github.com/fastygo/restaurant/pkg/httpcontext"
	userUC "github.com/fastygo/restaurant/usecase/user"
)

const resetSentMessage = "Token has been sent to the specified email!"

// CookieConfig controls the session cookie set alongside issued tokens.
type CookieConfig struct {
	TTL    time.Duration
	Secure bool
}

type UserHandler struct {
	baseHandler
	uc         *userUC.UseCase
	apiVersion string
	cookie     CookieConfig
	now        func() time.Time
}

func NewUserHandler(uc *userUC.UseCase, apiVersion string, cookie CookieConfig, adapter *httpcontext.Adapter, logger *zap.Logger) *UserHandler {
	if cookie.TTL <= 0 {
		cookie.TTL = 90 * 24 * time.Hour
	}
	return &UserHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		apiVersion:  apiVersion,
		cookie:      cookie,
		now:         time.Now,
	}
}

// @Summary Register a new user
// @Tags users
// @Accept json
// @Router /api/{version}/users/register [post]
func (h *UserHandler) Register(ctx *fasthttp.RequestCtx) error {
	req, err := middleware.Body[transport.RegisterRequest](ctx)
	if err != nil {
		return err
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	token, err := h.uc.Register(stdCtx, userUC.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Login:           req.Login,
		Email:           req.Email,
		Password:        req.Password,
		Addresses:       transport.ToAddresses(req.Addresses),
		Roles:           []domain.Role{domain.RoleUser},
		DefaultCurrency: domain.Currency(req.DefaultCurrency),
	})
	if err != nil {
		return err
	}
	h.sendToken(ctx, token)
	return nil
}

// @Summary Log in with email and password
// @Tags users
// @Router /api/{version}/users/login [post]
func (h *UserHandler) Login(ctx *fasthttp.RequestCtx) error {
	req, err := middleware.Body[transport.LoginRequest](ctx)
	if err != nil {
		return err
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	token, err := h.uc.Login(stdCtx, req.Email, req.Password)
	if err != nil {
		return err
	}
	h.sendToken(ctx, token)
	return nil
}

// @Summary Current user
// @Tags users
// @Router /api/{version}/users [get]
func (h *UserHandler) GetCurrentUser(ctx *fasthttp.RequestCtx) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	h.respondSuccess(ctx, http.StatusOK, user)
	return nil
}

// @Summary Update current user
// @Tags users
// @Router /api/{version}/users [patch]
func (h *UserHandler) UpdateCurrentUser(ctx *fasthttp.RequestCtx) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	patch, err := middleware.UserPatch(ctx)
	if err != nil {
		return err
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateUser(stdCtx, user.ID, patch)
	if err != nil {
		return err
	}
	h.respondSuccess(ctx, http.StatusCreated, updated)
	return nil
}

// @Summary Deactivate current user
// @Tags users
// @Router /api/{version}/users [delete]
func (h *UserHandler) DeactivateCurrentUser(ctx *fasthttp.RequestCtx) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeactivateUser(stdCtx, user.ID); err != nil {
		return err
	}
	h.respondNoContent(ctx)
	return nil
}

// @Summary Request a password reset email
// @Tags users
// @Router /api/{version}/users/forgot-password [post]
func (h *UserHandler) ForgotPassword(ctx *fasthttp.RequestCtx) error {
	req, err := middleware.Body[transport.ForgotPasswordRequest](ctx)
	if err != nil {
		return err
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.ForgotPassword(stdCtx, h.resetURL(ctx), req.Email); err != nil {
		return err
	}
	h.respondSuccess(ctx, http.StatusOK, transport.MessageResponse{Message: resetSentMessage})
	return nil
}

// @Summary Reset password with an emailed token
// @Tags users
// @Router /api/{version}/users/reset-password/{token} [patch]
func (h *UserHandler) ResetPassword(ctx *fasthttp.RequestCtx) error {
	req, err := middleware.Body[transport.ResetPasswordRequest](ctx)
	if err != nil {
		return err
	}
	resetToken, _ := ctx.UserValue("token").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	token, err := h.uc.ResetPassword(stdCtx, resetToken, req.NewPassword)
	if err != nil {
		return err
	}
	h.sendToken(ctx, token)
	return nil
}

// @Summary Change password of the current user
// @Tags users
// @Router /api/{version}/users/update-password [patch]
func (h *UserHandler) UpdatePassword(ctx *fasthttp.RequestCtx) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	req, err := middleware.Body[transport.UpdatePasswordRequest](ctx)
	if err != nil {
		return err
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	token, err := h.uc.UpdatePassword(stdCtx, user.ID, req.CurrPassword, req.NewPassword)
	if err != nil {
		return err
	}
	h.sendToken(ctx, token)
	return nil
}

// @Summary Reviews written by the current user
// @Tags users
// @Router /api/{version}/users/reviews [get]
func (h *UserHandler) GetCurrentUserReviews(ctx *fasthttp.RequestCtx) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	return h.listReviews(ctx, user.ID)
}

// @Summary Reviews written by a user
// @Tags users
// @Router /api/{version}/users/{id}/reviews [get]
func (h *UserHandler) GetUserReviews(ctx *fasthttp.RequestCtx) error {
	id, _ := ctx.UserValue("id").(string)
	return h.listReviews(ctx, id)
}

// @Summary Get a user (admin)
// @Tags users
// @Router /api/{version}/users/{id} [get]
func (h *UserHandler) GetUser(ctx *fasthttp.RequestCtx) error {
	id, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.GetUser(stdCtx, id)
	if err != nil {
		return err
	}
	projected, err := transport.SelectFields(user, middleware.SelectedFields(ctx))
	if err != nil {
		return err
	}
	h.respondSuccess(ctx, http.StatusOK, projected)
	return nil
}

// @Summary Delete a user (admin)
// @Tags users
// @Router /api/{version}/users/{id} [delete]
func (h *UserHandler) DeleteUser(ctx *fasthttp.RequestCtx) error {
	id, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteUser(stdCtx, id); err != nil {
		return err
	}
	h.respondNoContent(ctx)
	return nil
}

func (h *UserHandler) listReviews(ctx *fasthttp.RequestCtx, userID string) error {
	page := middleware.Paginate(ctx.QueryArgs())
	fields := middleware.SelectedFields(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	reviews, err := h.uc.GetUserReviews(stdCtx, userID, middleware.Filters(ctx), fields, page)
	if err != nil {
		return err
	}

	data := make([]any, 0, len(reviews))
	for _, r := range reviews {
		projected, err := transport.SelectFields(r, fields)
		if err != nil {
			return err
		}
		data = append(data, projected)
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(data, transport.ListMeta{
		Results: len(data),
		Page:    page.Skip/page.Limit + 1,
		Limit:   page.Limit,
	}))
	return nil
}

func (h *UserHandler) sendToken(ctx *fasthttp.RequestCtx, token string) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey(middleware.TokenCookie)
	cookie.SetValue(token)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(h.cookie.Secure)
	cookie.SetExpire(h.now().Add(h.cookie.TTL))
	ctx.Response.Header.SetCookie(cookie)

	h.respondSuccess(ctx, http.StatusOK, transport.TokenResponse{Token: token})
}

func (h *UserHandler) resetURL(ctx *fasthttp.RequestCtx) string {
	scheme := "http"
	if ctx.IsTLS() || strings.EqualFold(string(ctx.Request.Header.Peek("X-Forwarded-Proto")), "https") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/api/%s/users/reset-password", scheme, ctx.Host(), h.apiVersion)
}
