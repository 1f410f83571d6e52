package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/restaurant/api/transport"
	"github.com/fastygo/restaurant/internal/infrastructure/monitor"
	"github.com/fastygo/restaurant/pkg/httpcontext"
)

// StatusSource reports the latest dependency probe.
type StatusSource interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
}

func NewHealthHandler(mon StatusSource, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]any{
		"timestamp":  time.Now().UTC(),
		"last_check": status.LastCheck,
		"services": map[string]any{
			"postgresql": status.PostgreSQL,
			"redis":      status.Redis,
			"mongodb":    status.MongoDB,
			"outbox": map[string]any{
				"online": status.Outbox,
				"size":   status.OutboxSize,
			},
		},
	}

	if status.Healthy() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", payload))
}
