package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coverscope/internal/compare"
	"coverscope/internal/explain"
	"coverscope/pkg/domain"
	"coverscope/pkg/platform/httputil"
	"coverscope/pkg/requestcontext"
)

// Service defines the comparison operations the handler depends on.
type Service interface {
	Compare(ctx context.Context, code domain.CoverageCode, insurers []domain.Insurer) (*compare.Comparison, error)
}

// Handler wires the compare endpoints to the aggregator.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a compare handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts compare endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/compare", h.HandleCompare)
	r.Post("/compare/explain", h.HandleExplain)
}

// HandleCompare handles POST /compare requests.
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CompareRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.service.Compare(ctx, req.ParsedCode(), req.ParsedInsurers())
	if err != nil {
		h.logger.InfoContext(ctx, "compare request failed",
			"request_id", requestID,
			"coverage_code", req.CanonicalCoverageCode,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "comparison served",
		"request_id", requestID,
		"coverage_code", c.CoverageCode,
		"insurers", len(c.Insurers),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromComparison(c))
}

// HandleExplain handles POST /compare/explain requests. It runs the
// same comparison and attaches per-insurer presentation views projected
// from the binding results.
func (h *Handler) HandleExplain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CompareRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.service.Compare(ctx, req.ParsedCode(), req.ParsedInsurers())
	if err != nil {
		h.logger.InfoContext(ctx, "explain request failed",
			"request_id", requestID,
			"coverage_code", req.CanonicalCoverageCode,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := &ExplainResponse{
		CompareResponse: FromComparison(c),
		Views:           explain.ProjectAll(c),
	}

	h.logger.InfoContext(ctx, "explanation served",
		"request_id", requestID,
		"coverage_code", c.CoverageCode,
		"views", len(resp.Views),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, resp)
}
