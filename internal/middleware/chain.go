package middleware

import (
	"github.com/valyala/fasthttp"
)

// Step is one stage of a route pipeline. Returning a non-nil error ends the request.
type Step func(ctx *fasthttp.RequestCtx) error

// ErrorHandler writes the response for an error returned by a step.
type ErrorHandler func(ctx *fasthttp.RequestCtx, err error)

// Pipeline runs steps in order and hands the first error to onError.
func Pipeline(onError ErrorHandler, steps ...Step) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		for _, step := range steps {
			if err := step(ctx); err != nil {
				onError(ctx, err)
				return
			}
		}
	}
}

// Wrapper decorates a whole handler, for concerns that must see every request.
type Wrapper func(fasthttp.RequestHandler) fasthttp.RequestHandler

// Wrap applies wrappers so the first one listed is the outermost.
func Wrap(h fasthttp.RequestHandler, wrappers ...Wrapper) fasthttp.RequestHandler {
	for i := len(wrappers) - 1; i >= 0; i-- {
		h = wrappers[i](h)
	}
	return h
}
