// Package identity models the caller's identity and authorization context.
//
// The service trusts the Gateway as a synchronous oracle: it authenticates the
// user against the identity provider and forwards the resolved context via
// request headers, the same way it forwards x-user-id for every service.
package identity

import (
	"net/http"
	"strings"
)

// Capabilities gating listing mutations. Granted per org member by the
// identity provider's role configuration.
const (
	CapListingCreate       = "job_listings:create"
	CapListingUpdate       = "job_listings:update"
	CapListingChangeStatus = "job_listings:change_status"
	CapListingFeature      = "job_listings:feature"
	CapListingDelete       = "job_listings:delete"
)

// Actor is the resolved identity for one request. OrgID is empty when the
// caller has no active organization.
type Actor struct {
	UserID string
	OrgID  string

	capabilities map[string]bool
	planFeatures map[string]bool
}

// NewActor builds an Actor from explicit grants. Used directly by tests; the
// HTTP path goes through FromRequest.
func NewActor(userID, orgID string, capabilities, planFeatures []string) Actor {
	return Actor{
		UserID:       userID,
		OrgID:        orgID,
		capabilities: toSet(capabilities),
		planFeatures: toSet(planFeatures),
	}
}

// FromRequest extracts the forwarded identity context:
//
//	x-user-id           — authenticated user (required upstream)
//	x-org-id            — active organization, empty if none
//	x-org-capabilities  — comma-separated capability grants
//	x-plan-features     — comma-separated plan feature grants
func FromRequest(r *http.Request) Actor {
	return NewActor(
		r.Header.Get("x-user-id"),
		r.Header.Get("x-org-id"),
		splitHeader(r.Header.Get("x-org-capabilities")),
		splitHeader(r.Header.Get("x-plan-features")),
	)
}

// HasCapability reports whether the actor holds the given capability in its
// active organization.
func (a Actor) HasCapability(capability string) bool {
	return a.capabilities[capability]
}

// HasPlanFeature reports whether the actor's organization plan grants the
// given feature.
func (a Actor) HasPlanFeature(feature string) bool {
	return a.planFeatures[feature]
}

func toSet(vals []string) map[string]bool {
	set := make(map[string]bool, len(vals))
	for _, v := range vals {
		if v != "" {
			set[v] = true
		}
	}
	return set
}

func splitHeader(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
