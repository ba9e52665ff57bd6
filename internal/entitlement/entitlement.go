// Package entitlement evaluates subscription plan limits.
//
// A plan grants zero or more independent tier features. Grants can overlap
// (e.g. mid-upgrade an org may hold post_1_job_listing AND
// post_15_job_listings); the most permissive grant applies.
package entitlement

// FeatureOracle answers plan feature grants for the current request. The
// identity context (identity.Actor) satisfies it.
type FeatureOracle interface {
	HasPlanFeature(feature string) bool
}

// Unlimited marks a tier with no numeric cap.
const Unlimited = -1

// Tier is one plan feature granting a cap on concurrently published or
// featured listings.
type Tier struct {
	Feature string
	Max     int
}

// Tier features as named by the billing provider.
var (
	publishedTiers = []Tier{
		{Feature: "post_1_job_listing", Max: 1},
		{Feature: "post_3_job_listings", Max: 3},
		{Feature: "post_15_job_listings", Max: 15},
	}

	featuredTiers = []Tier{
		{Feature: "1_featured_job_listing", Max: 1},
		{Feature: "unlimited_featured_job_listings", Max: Unlimited},
	}
)

// HasReachedMaxPublished reports whether an org with publishedCount currently
// published listings may not publish another. The caller supplies the count
// from within its own transaction so check and write commit atomically.
func HasReachedMaxPublished(oracle FeatureOracle, orgID string, publishedCount int) bool {
	return hasReachedMax(oracle, orgID, publishedCount, publishedTiers)
}

// HasReachedMaxFeatured reports whether an org with featuredCount currently
// featured listings may not feature another.
func HasReachedMaxFeatured(oracle FeatureOracle, orgID string, featuredCount int) bool {
	return hasReachedMax(oracle, orgID, featuredCount, featuredTiers)
}

// hasReachedMax is the OR across granted tiers: the org is under its limit if
// any single grant still has headroom. No org context fails closed.
func hasReachedMax(oracle FeatureOracle, orgID string, count int, tiers []Tier) bool {
	if orgID == "" {
		return true
	}
	for _, t := range tiers {
		if !oracle.HasPlanFeature(t.Feature) {
			continue
		}
		if t.Max == Unlimited || count < t.Max {
			return false
		}
	}
	return true
}
