package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fastygo/restaurant/domain"
	"github.com/fastygo/restaurant/pkg/httpcontext"
)

// AccessLog logs one line per request once the response status is known.
func AccessLog(logger *zap.Logger) Wrapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			requestID := httpcontext.RequestID(ctx)

			next(ctx)

			status := ctx.Response.StatusCode()
			level := zapcore.InfoLevel
			switch {
			case status >= fasthttp.StatusInternalServerError:
				level = zapcore.ErrorLevel
			case status >= fasthttp.StatusBadRequest:
				level = zapcore.WarnLevel
			}
			if ce := logger.Check(level, "http request"); ce != nil {
				ce.Write(
					zap.String("request_id", requestID),
					zap.ByteString("method", ctx.Method()),
					zap.ByteString("path", ctx.Path()),
					zap.Int("status", status),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote_ip", ctx.RemoteIP().String()),
				)
			}
		}
	}
}

// Recover turns a panic in the handler into an internal error response.
func Recover(onError ErrorHandler, logger *zap.Logger) Wrapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.String("request_id", httpcontext.RequestID(ctx)),
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()))
					ctx.Response.Reset()
					onError(ctx, domain.WrapError(domain.ErrCodeInternal, "internal server error", fmt.Errorf("panic: %v", rec)))
				}
			}()
			next(ctx)
		}
	}
}
