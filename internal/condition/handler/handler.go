package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coverscope/internal/condition"
	"coverscope/pkg/domain"
	"coverscope/pkg/platform/httputil"
	"coverscope/pkg/requestcontext"
)

// Service defines the condition comparison the handler depends on.
type Service interface {
	Compare(ctx context.Context, code domain.CoverageCode, insurers []domain.Insurer, aspects []condition.Aspect) (*condition.ConditionComparison, error)
}

// Handler wires the conditions endpoint to the condition engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a conditions handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts condition endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/compare/conditions", h.HandleConditions)
}

// HandleConditions handles POST /compare/conditions requests.
func (h *Handler) HandleConditions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ConditionsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.service.Compare(ctx, req.ParsedCode(), req.ParsedInsurers(), req.ParsedAspects())
	if err != nil {
		h.logger.InfoContext(ctx, "conditions request failed",
			"request_id", requestID,
			"coverage_code", req.CanonicalCoverageCode,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "condition comparison served",
		"request_id", requestID,
		"coverage_code", c.CoverageCode,
		"insurers", len(c.Insurers),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromComparison(c))
}
