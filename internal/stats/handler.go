package stats

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"hirewire/listing-service/internal/identity"
)

// Handler serves GET /stats for the caller's organization.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the stats route on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/stats", h.orgStats)
}

func (h *Handler) orgStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "reason": "method not allowed"})
		return
	}

	actor := identity.FromRequest(r)
	if actor.OrgID == "" {
		writeJSON(w, http.StatusForbidden, map[string]any{"ok": false, "reason": "no active organization"})
		return
	}

	st, err := h.svc.OrgStats(r.Context(), actor.OrgID)
	if err != nil {
		h.logger.Error("org stats failed", zap.String("orgId", actor.OrgID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "reason": "database error"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
