package listing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"hirewire/listing-service/internal/identity"
	"hirewire/listing-service/internal/listing"
)

// ── Test doubles ───────────────────────────────────────────────────────────

// fakeStore is an in-memory Store that mirrors the SQL side-effect semantics
// of the pgx implementation.
type fakeStore struct {
	listings map[string]*listing.Listing
	now      time.Time
}

func newFakeStore(now time.Time, seed ...*listing.Listing) *fakeStore {
	s := &fakeStore{listings: make(map[string]*listing.Listing), now: now}
	for _, l := range seed {
		cp := *l
		s.listings[l.ID] = &cp
	}
	return s
}

func (s *fakeStore) Search(context.Context, listing.Filter, string) ([]listing.Listing, error) {
	return nil, nil
}

func (s *fakeStore) GetForOrg(_ context.Context, id, orgID string) (*listing.Listing, error) {
	l, ok := s.listings[id]
	if !ok || l.OrganizationID != orgID {
		return nil, listing.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *fakeStore) Create(_ context.Context, l *listing.Listing) error {
	l.CreatedAt = s.now
	l.UpdatedAt = s.now
	cp := *l
	s.listings[l.ID] = &cp
	return nil
}

func (s *fakeStore) UpdateDetails(_ context.Context, id, orgID string, d listing.Details) (*listing.Listing, error) {
	l, ok := s.listings[id]
	if !ok || l.OrganizationID != orgID {
		return nil, listing.ErrNotFound
	}
	l.Title, l.Description, l.Skills = d.Title, d.Description, d.Skills
	l.Wage, l.WageInterval = d.Wage, d.WageInterval
	l.City, l.StateCode = d.City, d.StateCode
	l.LocationRequirement, l.ExperienceLevel, l.Type = d.LocationRequirement, d.ExperienceLevel, d.Type
	l.UpdatedAt = s.now
	cp := *l
	return &cp, nil
}

func (s *fakeStore) CountPublished(_ context.Context, orgID string) (int, error) {
	n := 0
	for _, l := range s.listings {
		if l.OrganizationID == orgID && l.Status == listing.StatusPublished {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) CountFeatured(_ context.Context, orgID string) (int, error) {
	n := 0
	for _, l := range s.listings {
		if l.OrganizationID == orgID && l.IsFeatured {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) SetStatus(_ context.Context, id string, next listing.Status) (*listing.Listing, error) {
	l, ok := s.listings[id]
	if !ok {
		return nil, listing.ErrNotFound
	}
	l.Status = next
	if next == listing.StatusPublished {
		if l.PostedAt == nil {
			at := s.now
			l.PostedAt = &at
		}
	} else {
		l.IsFeatured = false
	}
	l.UpdatedAt = s.now
	cp := *l
	return &cp, nil
}

func (s *fakeStore) SetFeatured(_ context.Context, id string, featured bool) (*listing.Listing, error) {
	l, ok := s.listings[id]
	if !ok {
		return nil, listing.ErrNotFound
	}
	l.IsFeatured = featured
	l.UpdatedAt = s.now
	cp := *l
	return &cp, nil
}

func (s *fakeStore) Delete(_ context.Context, id, orgID string) error {
	l, ok := s.listings[id]
	if !ok || l.OrganizationID != orgID {
		return listing.ErrNotFound
	}
	delete(s.listings, id)
	return nil
}

func (s *fakeStore) WithOrgLock(_ context.Context, _ string, fn func(listing.Store) error) error {
	return fn(s)
}

// fakeEvents records published events.
type fakeEvents struct{ events []listing.Event }

func (f *fakeEvents) Publish(_ context.Context, e listing.Event) error {
	f.events = append(f.events, e)
	return nil
}

// ── Helpers ────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

const orgID = "org-1"

func draftListing(id string) *listing.Listing {
	return &listing.Listing{
		ID:                  id,
		OrganizationID:      orgID,
		Title:               "Backend Engineer",
		Status:              listing.StatusDraft,
		LocationRequirement: listing.LocationRemote,
		ExperienceLevel:     listing.ExperienceMid,
		Type:                listing.TypeFullTime,
	}
}

func fullActor(features ...string) identity.Actor {
	return identity.NewActor("user-1", orgID,
		[]string{
			identity.CapListingCreate,
			identity.CapListingUpdate,
			identity.CapListingChangeStatus,
			identity.CapListingFeature,
			identity.CapListingDelete,
		},
		features)
}

func newService(store listing.Store, events listing.EventPublisher) *listing.Service {
	return listing.NewService(store, events, zap.NewNop())
}

// ── AdvanceStatus — transition side effects ────────────────────────────────

func TestAdvanceStatus_FullCycle(t *testing.T) {
	store := newFakeStore(testNow, draftListing("l1"))
	events := &fakeEvents{}
	svc := newService(store, events)
	actor := fullActor("post_3_job_listings")
	ctx := context.Background()

	// draft → published: postedAt stamped.
	l, err := svc.AdvanceStatus(ctx, actor, "l1")
	if err != nil {
		t.Fatalf("first advance: %v", err)
	}
	if l.Status != listing.StatusPublished {
		t.Errorf("first advance status = %s, want published", l.Status)
	}
	if l.PostedAt == nil || !l.PostedAt.Equal(testNow) {
		t.Errorf("first publish must stamp postedAt, got %v", l.PostedAt)
	}
	firstPostedAt := *l.PostedAt

	// Feature it so delisting can prove the flag gets cleared.
	if _, err := svc.SetFeatured(ctx, fullActor("1_featured_job_listing"), "l1", true); err != nil {
		t.Fatalf("feature: %v", err)
	}

	// published → delisted: featured cleared, postedAt untouched.
	l, err = svc.AdvanceStatus(ctx, actor, "l1")
	if err != nil {
		t.Fatalf("second advance: %v", err)
	}
	if l.Status != listing.StatusDelisted {
		t.Errorf("second advance status = %s, want delisted", l.Status)
	}
	if l.IsFeatured {
		t.Error("leaving published must clear isFeatured")
	}
	if l.PostedAt == nil || !l.PostedAt.Equal(firstPostedAt) {
		t.Errorf("delisting must not touch postedAt, got %v", l.PostedAt)
	}

	// delisted → published: postedAt NOT reset.
	l, err = svc.AdvanceStatus(ctx, actor, "l1")
	if err != nil {
		t.Fatalf("third advance: %v", err)
	}
	if l.Status != listing.StatusPublished {
		t.Errorf("third advance status = %s, want published", l.Status)
	}
	if l.PostedAt == nil || !l.PostedAt.Equal(firstPostedAt) {
		t.Errorf("republish must not reset postedAt, got %v", l.PostedAt)
	}
}

func TestAdvanceStatus_PublishesEvent(t *testing.T) {
	store := newFakeStore(testNow, draftListing("l1"))
	events := &fakeEvents{}
	svc := newService(store, events)

	if _, err := svc.AdvanceStatus(context.Background(), fullActor("post_1_job_listing"), "l1"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(events.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events.events))
	}
	e := events.events[0]
	if e.Type != listing.EventStatusChanged || e.ListingID != "l1" || e.Status != listing.StatusPublished {
		t.Errorf("unexpected event %+v", e)
	}
}

// ── AdvanceStatus — permission gate ────────────────────────────────────────

// Every permission-shaped failure must collapse into the same error so callers
// cannot distinguish "wrong org" from "no such listing" from "no capability".
func TestAdvanceStatus_PermissionFailuresIndistinguishable(t *testing.T) {
	store := newFakeStore(testNow, draftListing("l1"))
	svc := newService(store, &fakeEvents{})
	ctx := context.Background()

	cases := []struct {
		name  string
		actor identity.Actor
		id    string
	}{
		{"no org context", identity.NewActor("user-1", "", []string{identity.CapListingChangeStatus}, nil), "l1"},
		{"listing of another org", identity.NewActor("user-2", "org-2", []string{identity.CapListingChangeStatus}, nil), "l1"},
		{"listing does not exist", fullActor(), "ghost"},
		{"missing capability", identity.NewActor("user-1", orgID, nil, nil), "l1"},
	}
	for _, c := range cases {
		_, err := svc.AdvanceStatus(ctx, c.actor, c.id)
		if !errors.Is(err, listing.ErrPermission) {
			t.Errorf("%s: err = %v, want ErrPermission", c.name, err)
		}
	}

	// The listing must be untouched by any of the failed attempts.
	l, _ := store.GetForOrg(ctx, "l1", orgID)
	if l.Status != listing.StatusDraft {
		t.Errorf("failed attempts must not mutate: status = %s", l.Status)
	}
}

// ── AdvanceStatus — plan limit ─────────────────────────────────────────────

func TestAdvanceStatus_PlanLimitBlocksPublish(t *testing.T) {
	published := draftListing("l1")
	published.Status = listing.StatusPublished
	store := newFakeStore(testNow, published, draftListing("l2"))
	svc := newService(store, &fakeEvents{})
	ctx := context.Background()

	_, err := svc.AdvanceStatus(ctx, fullActor("post_1_job_listing"), "l2")
	var planErr *listing.PlanLimitError
	if !errors.As(err, &planErr) {
		t.Fatalf("err = %v, want PlanLimitError", err)
	}

	l, _ := store.GetForOrg(ctx, "l2", orgID)
	if l.Status != listing.StatusDraft {
		t.Errorf("rejected publish must leave status unchanged, got %s", l.Status)
	}
}

// Overlapping tier grants: the most permissive applies.
func TestAdvanceStatus_OverlappingTiers(t *testing.T) {
	seed := []*listing.Listing{draftListing("l0")}
	for _, id := range []string{"p1", "p2", "p3"} {
		p := draftListing(id)
		p.Status = listing.StatusPublished
		seed = append(seed, p)
	}
	store := newFakeStore(testNow, seed...)
	svc := newService(store, &fakeEvents{})

	actor := fullActor("post_1_job_listing", "post_15_job_listings")
	if _, err := svc.AdvanceStatus(context.Background(), actor, "l0"); err != nil {
		t.Errorf("publish under the wider tier should succeed, got %v", err)
	}
}

// Delisting never consults the plan: only transitions INTO published are
// limit-gated.
func TestAdvanceStatus_DelistIgnoresPlan(t *testing.T) {
	published := draftListing("l1")
	published.Status = listing.StatusPublished
	store := newFakeStore(testNow, published)
	svc := newService(store, &fakeEvents{})

	// Actor with no plan features at all.
	if _, err := svc.AdvanceStatus(context.Background(), fullActor(), "l1"); err != nil {
		t.Errorf("delisting should not require plan headroom, got %v", err)
	}
}

// ── SetFeatured ────────────────────────────────────────────────────────────

func TestSetFeatured_LimitBlocksOnlySettingTrue(t *testing.T) {
	featured := draftListing("f1")
	featured.Status = listing.StatusPublished
	featured.IsFeatured = true
	other := draftListing("f2")
	other.Status = listing.StatusPublished
	store := newFakeStore(testNow, featured, other)
	svc := newService(store, &fakeEvents{})
	ctx := context.Background()
	actor := fullActor("1_featured_job_listing")

	_, err := svc.SetFeatured(ctx, actor, "f2", true)
	var planErr *listing.PlanLimitError
	if !errors.As(err, &planErr) {
		t.Fatalf("featuring at the limit: err = %v, want PlanLimitError", err)
	}

	// Clearing the flag is always allowed, even at the limit.
	l, err := svc.SetFeatured(ctx, actor, "f1", false)
	if err != nil {
		t.Fatalf("unfeature: %v", err)
	}
	if l.IsFeatured {
		t.Error("unfeature must clear the flag")
	}
}

func TestSetFeatured_UnlimitedTier(t *testing.T) {
	seed := []*listing.Listing{}
	for _, id := range []string{"a", "b", "c", "d"} {
		l := draftListing(id)
		l.Status = listing.StatusPublished
		l.IsFeatured = id != "d"
		seed = append(seed, l)
	}
	store := newFakeStore(testNow, seed...)
	svc := newService(store, &fakeEvents{})

	actor := fullActor("unlimited_featured_job_listings")
	if _, err := svc.SetFeatured(context.Background(), actor, "d", true); err != nil {
		t.Errorf("unlimited tier should never hit the limit, got %v", err)
	}
}

// The data layer permits featuring a draft; search never surfaces it, and
// SetStatus clears the flag when the listing later leaves published.
func TestSetFeatured_DraftPermittedAtDataLayer(t *testing.T) {
	store := newFakeStore(testNow, draftListing("l1"))
	svc := newService(store, &fakeEvents{})

	l, err := svc.SetFeatured(context.Background(), fullActor("1_featured_job_listing"), "l1", true)
	if err != nil {
		t.Fatalf("featuring a draft: %v", err)
	}
	if !l.IsFeatured {
		t.Error("flag should be set")
	}
}

func TestSetFeatured_PermissionGate(t *testing.T) {
	store := newFakeStore(testNow, draftListing("l1"))
	svc := newService(store, &fakeEvents{})

	noCap := identity.NewActor("user-1", orgID, []string{identity.CapListingChangeStatus}, nil)
	if _, err := svc.SetFeatured(context.Background(), noCap, "l1", true); !errors.Is(err, listing.ErrPermission) {
		t.Errorf("missing feature capability: err = %v, want ErrPermission", err)
	}
}

// ── Create / Update / Delete ───────────────────────────────────────────────

func TestCreate_StartsAsDraftOwnedByActorOrg(t *testing.T) {
	store := newFakeStore(testNow)
	svc := newService(store, &fakeEvents{})

	l, err := svc.Create(context.Background(), fullActor(), listing.Details{
		Title:               "Platform Engineer",
		Description:         "Build the platform.",
		LocationRequirement: listing.LocationHybrid,
		ExperienceLevel:     listing.ExperienceSenior,
		Type:                listing.TypeFullTime,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.Status != listing.StatusDraft {
		t.Errorf("new listing status = %s, want draft", l.Status)
	}
	if l.OrganizationID != orgID {
		t.Errorf("new listing org = %s, want %s", l.OrganizationID, orgID)
	}
	if l.ID == "" {
		t.Error("new listing must get an id")
	}
	if l.PostedAt != nil {
		t.Error("new listing must not have postedAt until first publish")
	}
}

func TestUpdate_DoesNotTouchLifecycleFields(t *testing.T) {
	published := draftListing("l1")
	published.Status = listing.StatusPublished
	at := testNow.Add(-24 * time.Hour)
	published.PostedAt = &at
	published.IsFeatured = true
	store := newFakeStore(testNow, published)
	svc := newService(store, &fakeEvents{})

	l, err := svc.Update(context.Background(), fullActor(), "l1", listing.Details{
		Title:               "Retitled",
		Description:         "Updated.",
		LocationRequirement: listing.LocationOnSite,
		ExperienceLevel:     listing.ExperienceJunior,
		Type:                listing.TypePartTime,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if l.Status != listing.StatusPublished || !l.IsFeatured || l.PostedAt == nil {
		t.Errorf("update must not touch status/featured/postedAt, got %+v", l)
	}
	if l.Title != "Retitled" {
		t.Errorf("title = %q, want Retitled", l.Title)
	}
}

func TestDelete_GateAndEvent(t *testing.T) {
	store := newFakeStore(testNow, draftListing("l1"))
	events := &fakeEvents{}
	svc := newService(store, events)
	ctx := context.Background()

	noCap := identity.NewActor("user-1", orgID, nil, nil)
	if err := svc.Delete(ctx, noCap, "l1"); !errors.Is(err, listing.ErrPermission) {
		t.Errorf("delete without capability: err = %v, want ErrPermission", err)
	}

	if err := svc.Delete(ctx, fullActor(), "l1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetForOrg(ctx, "l1", orgID); !errors.Is(err, listing.ErrNotFound) {
		t.Error("listing should be gone after delete")
	}
	if len(events.events) != 1 || events.events[0].Type != listing.EventDeleted {
		t.Errorf("expected a single delete event, got %+v", events.events)
	}
}
