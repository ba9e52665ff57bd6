package listing

import (
	"fmt"
	"time"
)

// ─── Enums ───────────────────────────────────────────────────────────────────

// ExperienceLevel values mirror the job_listing_experience_level enum.
type ExperienceLevel string

const (
	ExperienceJunior ExperienceLevel = "junior"
	ExperienceMid    ExperienceLevel = "mid-level"
	ExperienceSenior ExperienceLevel = "senior"
)

// JobType values mirror the job_listing_type enum.
type JobType string

const (
	TypeInternship JobType = "internship"
	TypePartTime   JobType = "part-time"
	TypeFullTime   JobType = "full-time"
)

// LocationRequirement values mirror the job_listing_location_requirement enum.
type LocationRequirement string

const (
	LocationOnSite LocationRequirement = "on-site"
	LocationHybrid LocationRequirement = "hybrid"
	LocationRemote LocationRequirement = "remote"
)

// ParseExperienceLevel converts a raw string, erroring on unknown values.
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	el := ExperienceLevel(s)
	switch el {
	case ExperienceJunior, ExperienceMid, ExperienceSenior:
		return el, nil
	}
	return "", fmt.Errorf("unknown experience level %q", s)
}

// ParseJobType converts a raw string, erroring on unknown values.
func ParseJobType(s string) (JobType, error) {
	jt := JobType(s)
	switch jt {
	case TypeInternship, TypePartTime, TypeFullTime:
		return jt, nil
	}
	return "", fmt.Errorf("unknown job type %q", s)
}

// ParseLocationRequirement converts a raw string, erroring on unknown values.
func ParseLocationRequirement(s string) (LocationRequirement, error) {
	lr := LocationRequirement(s)
	switch lr {
	case LocationOnSite, LocationHybrid, LocationRemote:
		return lr, nil
	}
	return "", fmt.Errorf("unknown location requirement %q", s)
}

// ─── Models ──────────────────────────────────────────────────────────────────

// Organization carries only the owning org's public fields — the full tenant
// record lives with the identity provider, not here.
type Organization struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"imageUrl"`
}

// Listing is the JSON shape returned to the Gateway / web clients.
type Listing struct {
	ID                  string              `json:"id"`
	OrganizationID      string              `json:"organizationId"`
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	Skills              []string            `json:"skills"`
	Wage                *int                `json:"wage"`
	WageInterval        *WageInterval       `json:"wageInterval"`
	City                *string             `json:"city"`
	StateCode           *string             `json:"stateCode"`
	LocationRequirement LocationRequirement `json:"locationRequirement"`
	ExperienceLevel     ExperienceLevel     `json:"experienceLevel"`
	Type                JobType             `json:"type"`
	Status              Status              `json:"status"`
	IsFeatured          bool                `json:"isFeatured"`
	PostedAt            *time.Time          `json:"postedAt"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`

	Organization *Organization `json:"organization,omitempty"`
}
