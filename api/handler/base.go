package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/restaurant/api/transport"
	"github.com/fastygo/restaurant/domain"
	"github.com/fastygo/restaurant/internal/middleware"
	"github.com/fastygo/restaurant/pkg/httpcontext"
)

const internalErrorMessage = "something went wrong"

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data any) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondNoContent(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(http.StatusNoContent)
	ctx.ResetBody()
}

// NewErrorHandler returns the terminal handler for errors raised by pipeline steps.
// Internal errors are logged with the request ID and replaced by a generic message.
func NewErrorHandler(logger *zap.Logger) middleware.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx *fasthttp.RequestCtx, err error) {
		status, code := mapError(err)
		message := internalErrorMessage
		if status == http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("request_id", httpcontext.RequestID(ctx)),
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Error(err))
		} else {
			message = publicMessage(err)
			logger.Debug("request rejected",
				zap.String("request_id", httpcontext.RequestID(ctx)),
				zap.String("code", code),
				zap.Error(err))
		}

		ctx.Response.Header.SetContentType("application/json")
		ctx.SetStatusCode(status)
		body, _ := json.Marshal(transport.NewError(code, message, nil))
		ctx.SetBody(body)
	}
}

func mapError(err error) (int, string) {
	switch domain.Code(err) {
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.ErrCodeForbidden:
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.ErrCodeInvalid:
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.ErrCodeConflict:
		return http.StatusConflict, string(domain.ErrCodeConflict)
	case domain.ErrCodeRateLimited:
		return http.StatusTooManyRequests, string(domain.ErrCodeRateLimited)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

func publicMessage(err error) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		return dErr.Message
	}
	return err.Error()
}
