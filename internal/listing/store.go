package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is the store-level miss for an id/org pair. It never reaches
// callers directly — the service collapses it into ErrPermission so the
// existence of other orgs' listings cannot be probed.
var ErrNotFound = errors.New("listing not found")

// Store is the persistence surface the service needs. The pgx implementation
// is below; tests substitute an in-memory fake.
type Store interface {
	Search(ctx context.Context, f Filter, pinnedID string) ([]Listing, error)
	GetForOrg(ctx context.Context, id, orgID string) (*Listing, error)
	Create(ctx context.Context, l *Listing) error
	UpdateDetails(ctx context.Context, id, orgID string, d Details) (*Listing, error)
	CountPublished(ctx context.Context, orgID string) (int, error)
	CountFeatured(ctx context.Context, orgID string) (int, error)
	SetStatus(ctx context.Context, id string, next Status) (*Listing, error)
	SetFeatured(ctx context.Context, id string, featured bool) (*Listing, error)
	Delete(ctx context.Context, id, orgID string) error

	// WithOrgLock runs fn inside a transaction holding a per-org advisory
	// lock, serializing plan-limit checks against concurrent writes for the
	// same org.
	WithOrgLock(ctx context.Context, orgID string, fn func(Store) error) error
}

// ─── pgx implementation ──────────────────────────────────────────────────────

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStore implements Store over PostgreSQL.
type PgStore struct {
	db   querier
	pool *pgxpool.Pool // nil when bound to a transaction
}

// NewStore returns a PgStore backed by pool.
func NewStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{db: pool, pool: pool}
}

const listingColumns = `l.id, l.organization_id, l.title, l.description, l.skills,
	l.wage, l.wage_interval, l.city, l.state_code, l.location_requirement,
	l.experience_level, l.type, l.status, l.is_featured,
	l.posted_at, l.created_at, l.updated_at`

// Search applies the fixed visibility rule, the filter's predicates and the
// ordering policy, joining each listing with its owning org's public fields.
// A pinned id bypasses the ad-hoc predicates but never the published-only
// rule.
func (s *PgStore) Search(ctx context.Context, f Filter, pinnedID string) ([]Listing, error) {
	query, args := searchQuery(f, pinnedID)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	results := make([]Listing, 0)
	for rows.Next() {
		var (
			l   Listing
			org Organization
		)
		if err := scanListing(rows, &l, &org.ID, &org.Name, &org.ImageURL); err != nil {
			return nil, fmt.Errorf("search scan: %w", err)
		}
		l.Organization = &org
		results = append(results, l)
	}
	return results, rows.Err()
}

// searchQuery assembles the search statement. Both visibility branches
// require published: a pinned id bypasses the predicates, never the status
// rule.
func searchQuery(f Filter, pinnedID string) (string, []any) {
	where, args, next := renderPredicates(f.Predicates(), 1)

	visibility := fmt.Sprintf("(l.status = 'published' AND %s)", where)
	if pinnedID != "" {
		visibility += fmt.Sprintf(" OR (l.id = $%d AND l.status = 'published')", next)
		args = append(args, pinnedID)
	}

	query := fmt.Sprintf(`
		SELECT %s, o.id, o.name, o.image_url
		FROM job_listings l
		JOIN organizations o ON o.id = l.organization_id
		WHERE %s
		ORDER BY %s`,
		listingColumns, visibility, orderClause(f.Sort))
	return query, args
}

// GetForOrg returns the listing only when it belongs to orgID.
func (s *PgStore) GetForOrg(ctx context.Context, id, orgID string) (*Listing, error) {
	row := s.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM job_listings l
		WHERE l.id = $1 AND l.organization_id = $2`, listingColumns),
		id, orgID)

	var l Listing
	if err := scanListing(row, &l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getForOrg: %w", err)
	}
	return &l, nil
}

// Create inserts a new listing row and backfills the generated timestamps.
func (s *PgStore) Create(ctx context.Context, l *Listing) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO job_listings
			(id, organization_id, title, description, skills, wage, wage_interval,
			 city, state_code, location_requirement, experience_level, type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`,
		l.ID, l.OrganizationID, l.Title, l.Description, l.Skills, l.Wage, l.WageInterval,
		l.City, l.StateCode, l.LocationRequirement, l.ExperienceLevel, l.Type, l.Status,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

// UpdateDetails rewrites the caller-editable fields, leaving status,
// posted_at and is_featured untouched — those change only through the
// transition engine.
func (s *PgStore) UpdateDetails(ctx context.Context, id, orgID string, d Details) (*Listing, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE job_listings l
		SET title = $1, description = $2, skills = $3, wage = $4, wage_interval = $5,
		    city = $6, state_code = $7, location_requirement = $8,
		    experience_level = $9, type = $10, updated_at = NOW()
		WHERE l.id = $11 AND l.organization_id = $12
		RETURNING `+listingColumns,
		d.Title, d.Description, d.Skills, d.Wage, d.WageInterval,
		d.City, d.StateCode, d.LocationRequirement, d.ExperienceLevel, d.Type,
		id, orgID)

	var l Listing
	if err := scanListing(row, &l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updateDetails: %w", err)
	}
	return &l, nil
}

// CountPublished returns the org's current number of published listings.
func (s *PgStore) CountPublished(ctx context.Context, orgID string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_listings WHERE organization_id = $1 AND status = 'published'`,
		orgID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("countPublished: %w", err)
	}
	return n, nil
}

// CountFeatured returns the org's current number of featured listings.
func (s *PgStore) CountFeatured(ctx context.Context, orgID string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_listings WHERE organization_id = $1 AND is_featured`,
		orgID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("countFeatured: %w", err)
	}
	return n, nil
}

// SetStatus applies the transition and both side effects in one statement:
// first entry into published stamps posted_at exactly once, and leaving
// published always clears is_featured.
func (s *PgStore) SetStatus(ctx context.Context, id string, next Status) (*Listing, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE job_listings l
		SET status      = $1::job_listing_status,
		    posted_at   = CASE WHEN $1::text = 'published' THEN COALESCE(l.posted_at, NOW()) ELSE l.posted_at END,
		    is_featured = CASE WHEN $1::text = 'published' THEN l.is_featured ELSE FALSE END,
		    updated_at  = NOW()
		WHERE l.id = $2
		RETURNING `+listingColumns,
		string(next), id)

	var l Listing
	if err := scanListing(row, &l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("setStatus: %w", err)
	}
	return &l, nil
}

// SetFeatured flips the featured flag. No cross-field guard at this layer:
// the one-directional invariant (clear on leaving published) lives in
// SetStatus.
func (s *PgStore) SetFeatured(ctx context.Context, id string, featured bool) (*Listing, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE job_listings l
		SET is_featured = $1, updated_at = NOW()
		WHERE l.id = $2
		RETURNING `+listingColumns,
		featured, id)

	var l Listing
	if err := scanListing(row, &l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("setFeatured: %w", err)
	}
	return &l, nil
}

// Delete removes the listing; applications, bookmarks and analytics rows go
// with it via ON DELETE CASCADE.
func (s *PgStore) Delete(ctx context.Context, id, orgID string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM job_listings WHERE id = $1 AND organization_id = $2`,
		id, orgID)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// WithOrgLock opens a transaction and takes a per-org advisory lock before
// running fn against the transaction-bound store. Two concurrent mutations
// for the same org serialize here, so a plan-limit count can never go stale
// between check and write.
func (s *PgStore) WithOrgLock(ctx context.Context, orgID string, fn func(Store) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, orgID); err != nil {
		return fmt.Errorf("org advisory lock: %w", err)
	}
	if err := fn(&PgStore{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// scanListing reads the listingColumns projection plus any extra targets.
type scannable interface{ Scan(dest ...any) error }

func scanListing(row scannable, l *Listing, extra ...any) error {
	var (
		interval *string
		locReq   string
		expLevel string
		jobType  string
		status   string
	)
	dest := []any{
		&l.ID, &l.OrganizationID, &l.Title, &l.Description, &l.Skills,
		&l.Wage, &interval, &l.City, &l.StateCode, &locReq,
		&expLevel, &jobType, &status, &l.IsFeatured,
		&l.PostedAt, &l.CreatedAt, &l.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	if interval != nil {
		wi := WageInterval(*interval)
		l.WageInterval = &wi
	}
	l.LocationRequirement = LocationRequirement(locReq)
	l.ExperienceLevel = ExperienceLevel(expLevel)
	l.Type = JobType(jobType)
	l.Status = Status(status)
	return nil
}
