package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coverscope/internal/catalog/models"
	"coverscope/pkg/domain"
	audit "coverscope/pkg/platform/audit"
	"coverscope/pkg/platform/httputil"
	"coverscope/pkg/requestcontext"
)

// Resolver defines the resolution operations the handler depends on.
type Resolver interface {
	Resolve(ctx context.Context, expression string, insurer domain.Insurer) (*models.ResolveResult, error)
}

// AuditTrail receives one operations event per successful resolution.
type AuditTrail interface {
	Emit(ctx context.Context, event audit.Event)
}

// Handler wires the resolve endpoint to the catalog resolver.
type Handler struct {
	resolver Resolver
	trail    AuditTrail
	logger   *slog.Logger
}

// New constructs a catalog handler with its dependencies. A nil trail
// disables resolution auditing.
func New(resolver Resolver, trail AuditTrail, logger *slog.Logger) *Handler {
	return &Handler{resolver: resolver, trail: trail, logger: logger}
}

// Register mounts catalog endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/resolve", h.HandleResolve)
}

// HandleResolve handles POST /resolve requests.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ResolveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.resolver.Resolve(ctx, req.Expression, req.ParsedInsurer())
	if err != nil {
		h.logger.InfoContext(ctx, "resolve request failed",
			"request_id", requestID,
			"insurer", req.Insurer,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if h.trail != nil {
		h.trail.Emit(ctx, audit.Event{
			Action:       audit.ActionAliasResolved,
			CoverageCode: result.CanonicalCode,
			Insurer:      req.ParsedInsurer(),
			Status:       string(result.Scope),
			RequestID:    requestID,
			ClientIP:     requestcontext.ClientIP(ctx),
			UserAgent:    requestcontext.UserAgent(ctx),
			ClientName:   requestcontext.ClientName(ctx),
		})
	}

	h.logger.InfoContext(ctx, "expression resolved",
		"request_id", requestID,
		"canonical_code", result.CanonicalCode,
		"scope", result.Scope,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}
