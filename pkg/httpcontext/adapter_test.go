package httpcontext

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/restaurant/pkg/logger"
)

func newCtx(requestID string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.SetRequestURI("/api/v1/users")
	req.Header.SetUserAgent("curl/8.5")
	if requestID != "" {
		req.Header.Set(HeaderRequestID, requestID)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, &net.TCPAddr{IP: net.ParseIP("10.1.2.3"), Port: 4321}, nil)
	return ctx
}

func TestAttach(t *testing.T) {
	ctx := newCtx("req-1")

	stdCtx, cancel := NewAdapter(time.Minute).Attach(ctx)
	defer cancel()

	deadline, ok := stdCtx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)
	assert.Equal(t, "req-1", appLogger.RequestID(stdCtx))
	assert.Equal(t, "10.1.2.3:4321", RemoteAddr(stdCtx))
	assert.Equal(t, "curl/8.5", UserAgent(stdCtx))
}

func TestAttach_NilAdapterUsesDefault(t *testing.T) {
	var a *Adapter
	stdCtx, cancel := a.Attach(newCtx(""))
	defer cancel()

	_, ok := stdCtx.Deadline()
	assert.True(t, ok)
	assert.Empty(t, RemoteAddr(context.Background()))
}

func TestRequestID_GeneratedOnceAndEchoed(t *testing.T) {
	ctx := newCtx("")

	id := RequestID(ctx)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, RequestID(ctx))
	assert.Equal(t, id, string(ctx.Response.Header.Peek(HeaderRequestID)))

	assert.Equal(t, "incoming", RequestID(newCtx("  incoming ")))
}
