// HTTP handlers for the listing service.
//
// All routes expect identity headers forwarded by the Gateway (see the
// identity package).
//
// Routes:
//
//	GET    /listings                       → search published listings
//	POST   /listings                       → create draft listing
//	GET    /listings/{id}                  → fetch one published listing
//	PUT    /listings/{id}                  → edit listing details
//	DELETE /listings/{id}                  → delete listing (cascades)
//	POST   /listings/{id}/advance-status   → toggle to next lifecycle state
//	POST   /listings/{id}/feature          → set/clear the featured flag
package listing

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"hirewire/listing-service/internal/identity"
)

// Handler holds shared dependencies for the listing routes.
type Handler struct {
	svc      *Service
	validate *validator.Validate
	logger   *zap.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// RegisterRoutes mounts all listing routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/listings", h.handleListings)
	mux.HandleFunc("/listings/", h.handleListingByID)
}

// ─── Request types ───────────────────────────────────────────────────────────

// listingRequest is the create/update payload.
type listingRequest struct {
	Title               string   `json:"title" validate:"required,max=150"`
	Description         string   `json:"description" validate:"required"`
	Skills              []string `json:"skills"`
	Wage                *int     `json:"wage" validate:"omitempty,gt=0"`
	WageInterval        *string  `json:"wageInterval" validate:"required_with=Wage,omitempty,oneof=hourly monthly yearly"`
	City                *string  `json:"city"`
	StateCode           *string  `json:"stateCode" validate:"omitempty,len=2"`
	LocationRequirement string   `json:"locationRequirement" validate:"required,oneof=on-site hybrid remote"`
	ExperienceLevel     string   `json:"experienceLevel" validate:"required,oneof=junior mid-level senior"`
	Type                string   `json:"type" validate:"required,oneof=internship part-time full-time"`
}

func (r listingRequest) details() Details {
	d := Details{
		Title:               r.Title,
		Description:         r.Description,
		Skills:              r.Skills,
		Wage:                r.Wage,
		City:                r.City,
		StateCode:           r.StateCode,
		LocationRequirement: LocationRequirement(r.LocationRequirement),
		ExperienceLevel:     ExperienceLevel(r.ExperienceLevel),
		Type:                JobType(r.Type),
	}
	if r.WageInterval != nil {
		wi := WageInterval(*r.WageInterval)
		d.WageInterval = &wi
	}
	return d
}

// ─── Route dispatch ───────────────────────────────────────────────────────────

// handleListings handles GET/POST /listings.
func (h *Handler) handleListings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.search(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		jsonReject(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListingByID handles /listings/{id} and /listings/{id}/{action}.
func (h *Handler) handleListingByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 2:
		id := parts[1]
		switch r.Method {
		case http.MethodGet:
			h.getOne(w, r, id)
		case http.MethodPut:
			h.update(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			jsonReject(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 3 && r.Method == http.MethodPost:
		id, action := parts[1], parts[2]
		switch action {
		case "advance-status":
			h.advanceStatus(w, r, id)
		case "feature":
			h.setFeatured(w, r, id)
		default:
			jsonReject(w, "unknown action", http.StatusNotFound)
		}
	default:
		jsonReject(w, "invalid path", http.StatusNotFound)
	}
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	f := ParseFilter(r.URL.Query())
	pinnedID := r.URL.Query().Get("pinnedId")

	results, err := h.svc.Search(r.Context(), f, pinnedID)
	if err != nil {
		h.logger.Error("search failed", zap.Error(err))
		jsonReject(w, "database error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, results)
}

func (h *Handler) getOne(w http.ResponseWriter, r *http.Request, id string) {
	// The single fetch is the pinned-id path: published-only, no filters.
	results, err := h.svc.Search(r.Context(), Filter{IDs: []string{id}}, id)
	if err != nil {
		h.logger.Error("get listing failed", zap.String("id", id), zap.Error(err))
		jsonReject(w, "database error", http.StatusInternalServerError)
		return
	}
	if len(results) == 0 {
		jsonReject(w, "listing not found", http.StatusNotFound)
		return
	}
	jsonOK(w, results[0])
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var body listingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonReject(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(body); err != nil {
		h.writeServiceError(w, &ValidationError{Msg: err.Error()}, "create")
		return
	}

	l, err := h.svc.Create(r.Context(), identity.FromRequest(r), body.details())
	if err != nil {
		h.writeServiceError(w, err, "create")
		return
	}
	jsonResult(w, l)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, id string) {
	var body listingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonReject(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(body); err != nil {
		h.writeServiceError(w, &ValidationError{Msg: err.Error()}, "update")
		return
	}

	l, err := h.svc.Update(r.Context(), identity.FromRequest(r), id, body.details())
	if err != nil {
		h.writeServiceError(w, err, "update")
		return
	}
	jsonResult(w, l)
}

func (h *Handler) advanceStatus(w http.ResponseWriter, r *http.Request, id string) {
	l, err := h.svc.AdvanceStatus(r.Context(), identity.FromRequest(r), id)
	if err != nil {
		h.writeServiceError(w, err, "advanceStatus")
		return
	}
	jsonResult(w, l)
}

func (h *Handler) setFeatured(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Featured *bool `json:"featured"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Featured == nil {
		jsonReject(w, "body must contain featured", http.StatusBadRequest)
		return
	}

	l, err := h.svc.SetFeatured(r.Context(), identity.FromRequest(r), id, *body.Featured)
	if err != nil {
		h.writeServiceError(w, err, "setFeatured")
		return
	}
	jsonResult(w, l)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.Delete(r.Context(), identity.FromRequest(r), id); err != nil {
		h.writeServiceError(w, err, "delete")
		return
	}
	jsonResult(w, nil)
}

// writeServiceError maps domain errors onto the {ok:false, reason} contract.
// Rejections stay non-fatal; only storage errors surface as 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, op string) {
	var planErr *PlanLimitError
	var valErr *ValidationError
	switch {
	case errors.Is(err, ErrPermission):
		jsonReject(w, ErrPermission.Error(), http.StatusForbidden)
	case errors.As(err, &planErr):
		jsonReject(w, planErr.Msg, http.StatusUnprocessableEntity)
	case errors.As(err, &valErr):
		jsonReject(w, valErr.Msg, http.StatusBadRequest)
	default:
		h.logger.Error("listing mutation failed", zap.String("op", op), zap.Error(err))
		jsonReject(w, "database error", http.StatusInternalServerError)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

// jsonResult writes the mutation contract: {ok:true, listing?}.
func jsonResult(w http.ResponseWriter, l *Listing) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "listing": l})
}

// jsonReject writes the rejection contract: {ok:false, reason}.
func jsonReject(w http.ResponseWriter, reason string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"ok": false, "reason": reason})
}
