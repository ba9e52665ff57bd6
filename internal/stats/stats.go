// Package stats serves per-org listing counts from a Redis cache that a cron
// sweeper keeps reconciled with PostgreSQL. Display only — entitlement checks
// always count live inside their own transaction.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	cacheKeyPrefix = "listing-stats:"
	cacheTTL       = time.Hour
)

// OrgStats is the JSON shape returned for one organization.
type OrgStats struct {
	OrganizationID string `json:"organizationId"`
	Total          int    `json:"total"`
	Published      int    `json:"published"`
	Featured       int    `json:"featured"`
}

// Service computes and caches per-org listing counts.
type Service struct {
	pool   *pgxpool.Pool
	rdb    *redis.Client
	logger *zap.Logger
}

// New returns a configured Service.
func New(pool *pgxpool.Pool, rdb *redis.Client, logger *zap.Logger) *Service {
	return &Service{pool: pool, rdb: rdb, logger: logger}
}

// OrgStats returns the counts for orgID, preferring the cache and falling
// back to a live count on miss (the fallback also repopulates the cache).
func (s *Service) OrgStats(ctx context.Context, orgID string) (*OrgStats, error) {
	raw, err := s.rdb.Get(ctx, cacheKeyPrefix+orgID).Bytes()
	if err == nil {
		var st OrgStats
		if jsonErr := json.Unmarshal(raw, &st); jsonErr == nil {
			return &st, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("stats cache read failed", zap.String("orgId", orgID), zap.Error(err))
	}

	st, err := s.countOne(ctx, orgID)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, st)
	return st, nil
}

// RefreshAll recomputes every org's counts in one grouped query and rewrites
// the cache. Called by the sweeper.
func (s *Service) RefreshAll(ctx context.Context) error {
	rows, err := s.pool.Query(ctx, `
		SELECT organization_id,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'published'),
		       COUNT(*) FILTER (WHERE is_featured)
		FROM job_listings
		GROUP BY organization_id`)
	if err != nil {
		return fmt.Errorf("refreshAll query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st OrgStats
		if err := rows.Scan(&st.OrganizationID, &st.Total, &st.Published, &st.Featured); err != nil {
			return fmt.Errorf("refreshAll scan: %w", err)
		}
		s.cache(ctx, &st)
	}
	return rows.Err()
}

func (s *Service) countOne(ctx context.Context, orgID string) (*OrgStats, error) {
	st := OrgStats{OrganizationID: orgID}
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'published'),
		       COUNT(*) FILTER (WHERE is_featured)
		FROM job_listings
		WHERE organization_id = $1`, orgID,
	).Scan(&st.Total, &st.Published, &st.Featured)
	if err != nil {
		return nil, fmt.Errorf("countOne: %w", err)
	}
	return &st, nil
}

// cache writes one org's counts. Non-fatal: stats survive a cache outage on
// the live-count fallback.
func (s *Service) cache(ctx context.Context, st *OrgStats) {
	payload, _ := json.Marshal(st)
	if err := s.rdb.Set(ctx, cacheKeyPrefix+st.OrganizationID, payload, cacheTTL).Err(); err != nil {
		s.logger.Warn("stats cache write failed",
			zap.String("orgId", st.OrganizationID), zap.Error(err))
	}
}
