package listing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hirewire/listing-service/internal/entitlement"
	"hirewire/listing-service/internal/identity"
)

// Details carries the caller-editable listing fields. Status, posted_at and
// is_featured are excluded deliberately — they change only through
// AdvanceStatus and SetFeatured.
type Details struct {
	Title               string
	Description         string
	Skills              []string
	Wage                *int
	WageInterval        *WageInterval
	City                *string
	StateCode           *string
	LocationRequirement LocationRequirement
	ExperienceLevel     ExperienceLevel
	Type                JobType
}

// Service encapsulates listing business logic.
type Service struct {
	store  Store
	events EventPublisher
	logger *zap.Logger
}

// NewService returns a configured Service.
func NewService(store Store, events EventPublisher, logger *zap.Logger) *Service {
	return &Service{store: store, events: events, logger: logger}
}

// ─── Search ──────────────────────────────────────────────────────────────────

// Search returns published listings matching the filter, plus the pinned
// listing when it is itself published. Malformed filter fields were already
// dropped during parsing, so this never fails on caller input — only on
// storage errors.
func (s *Service) Search(ctx context.Context, f Filter, pinnedID string) ([]Listing, error) {
	return s.store.Search(ctx, f, pinnedID)
}

// ─── Mutations ───────────────────────────────────────────────────────────────

// Create inserts a new draft listing owned by the actor's org.
func (s *Service) Create(ctx context.Context, actor identity.Actor, d Details) (*Listing, error) {
	if actor.OrgID == "" || !actor.HasCapability(identity.CapListingCreate) {
		return nil, ErrPermission
	}

	l := &Listing{
		ID:                  uuid.NewString(),
		OrganizationID:      actor.OrgID,
		Title:               d.Title,
		Description:         d.Description,
		Skills:              d.Skills,
		Wage:                d.Wage,
		WageInterval:        d.WageInterval,
		City:                d.City,
		StateCode:           d.StateCode,
		LocationRequirement: d.LocationRequirement,
		ExperienceLevel:     d.ExperienceLevel,
		Type:                d.Type,
		Status:              StatusDraft,
	}
	if err := s.store.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Update rewrites the editable fields of a listing the actor's org owns.
func (s *Service) Update(ctx context.Context, actor identity.Actor, id string, d Details) (*Listing, error) {
	if actor.OrgID == "" || !actor.HasCapability(identity.CapListingUpdate) {
		return nil, ErrPermission
	}

	l, err := s.store.UpdateDetails(ctx, id, actor.OrgID, d)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrPermission
	}
	return l, err
}

// AdvanceStatus toggles the listing to its next lifecycle state
// (draft → published → delisted → published). The gates run in a fixed order —
// org context, ownership, capability, plan limit — inside one org-locked
// transaction so the limit count and the write commit atomically.
func (s *Service) AdvanceStatus(ctx context.Context, actor identity.Actor, id string) (*Listing, error) {
	if actor.OrgID == "" {
		return nil, ErrPermission
	}

	var updated *Listing
	err := s.store.WithOrgLock(ctx, actor.OrgID, func(tx Store) error {
		current, err := tx.GetForOrg(ctx, id, actor.OrgID)
		if errors.Is(err, ErrNotFound) {
			return ErrPermission
		}
		if err != nil {
			return err
		}
		if !actor.HasCapability(identity.CapListingChangeStatus) {
			return ErrPermission
		}

		next, err := NextStatus(current.Status)
		if err != nil {
			return err
		}

		if next == StatusPublished {
			published, err := tx.CountPublished(ctx, actor.OrgID)
			if err != nil {
				return err
			}
			if entitlement.HasReachedMaxPublished(actor, actor.OrgID, published) {
				return &PlanLimitError{Msg: "you have reached your plan's published listing limit — upgrade your plan to publish more"}
			}
		}

		updated, err = tx.SetStatus(ctx, id, next)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{
		Type:           EventStatusChanged,
		ListingID:      updated.ID,
		OrganizationID: updated.OrganizationID,
		Status:         updated.Status,
		IsFeatured:     updated.IsFeatured,
	})
	return updated, nil
}

// SetFeatured toggles the featured flag. Setting true is blocked at the plan's
// featured limit; setting false is always allowed. The data layer does not
// guard against featuring a non-published listing — search never surfaces it
// anyway, and SetStatus clears the flag on the way out of published.
func (s *Service) SetFeatured(ctx context.Context, actor identity.Actor, id string, featured bool) (*Listing, error) {
	if actor.OrgID == "" {
		return nil, ErrPermission
	}

	var updated *Listing
	err := s.store.WithOrgLock(ctx, actor.OrgID, func(tx Store) error {
		current, err := tx.GetForOrg(ctx, id, actor.OrgID)
		if errors.Is(err, ErrNotFound) {
			return ErrPermission
		}
		if err != nil {
			return err
		}
		if !actor.HasCapability(identity.CapListingFeature) {
			return ErrPermission
		}

		if featured && !current.IsFeatured {
			count, err := tx.CountFeatured(ctx, actor.OrgID)
			if err != nil {
				return err
			}
			if entitlement.HasReachedMaxFeatured(actor, actor.OrgID, count) {
				return &PlanLimitError{Msg: "you have reached your plan's featured listing limit — upgrade your plan to feature more"}
			}
		}

		updated, err = tx.SetFeatured(ctx, id, featured)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{
		Type:           EventFeaturedChanged,
		ListingID:      updated.ID,
		OrganizationID: updated.OrganizationID,
		Status:         updated.Status,
		IsFeatured:     updated.IsFeatured,
	})
	return updated, nil
}

// Delete permanently removes a listing the actor's org owns. Terminal and
// outside the status machine; cascades to applications, bookmarks and
// analytics rows.
func (s *Service) Delete(ctx context.Context, actor identity.Actor, id string) error {
	if actor.OrgID == "" || !actor.HasCapability(identity.CapListingDelete) {
		return ErrPermission
	}

	err := s.store.Delete(ctx, id, actor.OrgID)
	if errors.Is(err, ErrNotFound) {
		return ErrPermission
	}
	if err != nil {
		return err
	}

	s.publish(ctx, Event{
		Type:           EventDeleted,
		ListingID:      id,
		OrganizationID: actor.OrgID,
	})
	return nil
}

// publish emits a mutation event. Non-fatal: the mutation already committed,
// so a publish failure is logged and swallowed.
func (s *Service) publish(ctx context.Context, e Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("publish listing event failed",
			zap.String("type", e.Type),
			zap.String("listingId", e.ListingID),
			zap.Error(err))
	}
}
