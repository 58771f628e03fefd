// Package db is the thin adapter over Postgres exposing the operations the
// ingestion pipeline needs. All timestamps arriving from Frigate are epoch
// seconds (possibly fractional); event times are stored as-is in double
// precision columns, review and availability times are converted to
// timestamptz at write time.
package db

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the pgx-backed Querier implementation. The pool is safe for
// concurrent use; every handler goroutine shares it.
type Store struct {
	pool *pgxpool.Pool
}

var _ Querier = (*Store)(nil)

// New wraps an existing connection pool. The caller owns the pool's lifecycle.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const getTenant = `
SELECT id, name, created_at FROM tenants WHERE id = $1
`

func (s *Store) GetTenant(ctx context.Context, id string) (Tenant, error) {
	var t Tenant
	err := s.pool.QueryRow(ctx, getTenant, id).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return Tenant{}, ErrNotFound
	}
	if err != nil {
		return Tenant{}, fmt.Errorf("get tenant %q: %w", id, err)
	}
	return t, nil
}

const insertTenant = `
INSERT INTO tenants (id, name, created_at)
VALUES ($1, $2, now())
RETURNING id, name, created_at
`

func (s *Store) InsertTenant(ctx context.Context, arg InsertTenantParams) (Tenant, error) {
	var t Tenant
	err := s.pool.QueryRow(ctx, insertTenant, arg.ID, arg.Name).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		return Tenant{}, fmt.Errorf("insert tenant %q: %w", arg.ID, err)
	}
	return t, nil
}

const getCameraByKey = `
SELECT id, tenant_id, key, label, created_at
FROM cameras
WHERE tenant_id = $1 AND key = $2
`

func (s *Store) GetCameraByKey(ctx context.Context, tenantID, key string) (Camera, error) {
	var c Camera
	err := s.pool.QueryRow(ctx, getCameraByKey, tenantID, key).
		Scan(&c.ID, &c.TenantID, &c.Key, &c.Label, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return Camera{}, ErrNotFound
	}
	if err != nil {
		return Camera{}, fmt.Errorf("get camera (%s, %s): %w", tenantID, key, err)
	}
	return c, nil
}

const insertCamera = `
INSERT INTO cameras (id, tenant_id, key, label, created_at)
VALUES ($1, $2, $3, $4, now())
RETURNING id, tenant_id, key, label, created_at
`

func (s *Store) InsertCamera(ctx context.Context, arg InsertCameraParams) (Camera, error) {
	var c Camera
	err := s.pool.QueryRow(ctx, insertCamera, arg.ID, arg.TenantID, arg.Key, arg.Label).
		Scan(&c.ID, &c.TenantID, &c.Key, &c.Label, &c.CreatedAt)
	if err != nil {
		return Camera{}, fmt.Errorf("insert camera (%s, %s): %w", arg.TenantID, arg.Key, err)
	}
	return c, nil
}

const getCameraTenantForShare = `
SELECT tenant_id FROM cameras WHERE id = $1 FOR SHARE
`

const upsertEvent = `
INSERT INTO events (id, tenant_id, camera_id, frigate_id, type, label,
                    has_snapshot, has_clip, start_time, end_time, raw_payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
ON CONFLICT (tenant_id, frigate_id) DO UPDATE SET
    type         = EXCLUDED.type,
    label        = EXCLUDED.label,
    has_snapshot = EXCLUDED.has_snapshot,
    has_clip     = EXCLUDED.has_clip,
    start_time   = COALESCE(EXCLUDED.start_time, events.start_time),
    end_time     = COALESCE(EXCLUDED.end_time, events.end_time),
    raw_payload  = EXCLUDED.raw_payload
RETURNING id, tenant_id, camera_id, frigate_id, type, label,
          has_snapshot, has_clip, start_time, end_time, raw_payload, created_at
`

// UpsertEvent persists a detection event inside a single transaction. The
// camera row is re-read FOR SHARE and its tenant verified before the upsert,
// so the tenant -> camera -> event chain stays consistent under concurrent
// auto-provisioning.
func (s *Store) UpsertEvent(ctx context.Context, arg UpsertEventParams) (Event, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var cameraTenant string
	if err := tx.QueryRow(ctx, getCameraTenantForShare, arg.CameraID).Scan(&cameraTenant); err != nil {
		return Event{}, fmt.Errorf("verify camera %q: %w", arg.CameraID, err)
	}
	if cameraTenant != arg.TenantID {
		return Event{}, ErrCameraTenantMismatch
	}

	var e Event
	err = tx.QueryRow(ctx, upsertEvent,
		arg.ID, arg.TenantID, arg.CameraID, arg.FrigateID, arg.Type, arg.Label,
		arg.HasSnapshot, arg.HasClip, arg.StartTime, arg.EndTime, arg.RawPayload,
	).Scan(&e.ID, &e.TenantID, &e.CameraID, &e.FrigateID, &e.Type, &e.Label,
		&e.HasSnapshot, &e.HasClip, &e.StartTime, &e.EndTime, &e.RawPayload, &e.CreatedAt)
	if err != nil {
		return Event{}, fmt.Errorf("upsert event (%s, %s): %w", arg.TenantID, arg.FrigateID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Event{}, fmt.Errorf("commit: %w", err)
	}
	return e, nil
}

const upsertReview = `
INSERT INTO reviews (id, tenant_id, camera_id, review_id, camera_name,
                     severity, retracted, timestamp, raw_payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
ON CONFLICT (tenant_id, review_id) DO UPDATE SET
    severity    = EXCLUDED.severity,
    retracted   = EXCLUDED.retracted,
    timestamp   = COALESCE(EXCLUDED.timestamp, reviews.timestamp),
    raw_payload = EXCLUDED.raw_payload
RETURNING id, tenant_id, camera_id, review_id, camera_name,
          severity, retracted, timestamp, raw_payload, created_at
`

func (s *Store) UpsertReview(ctx context.Context, arg UpsertReviewParams) (Review, error) {
	var ts *time.Time
	if arg.Timestamp != nil {
		t := EpochToTime(*arg.Timestamp)
		ts = &t
	}

	var r Review
	err := s.pool.QueryRow(ctx, upsertReview,
		arg.ID, arg.TenantID, arg.CameraID, arg.ReviewID, arg.CameraName,
		arg.Severity, arg.Retracted, ts, arg.RawPayload,
	).Scan(&r.ID, &r.TenantID, &r.CameraID, &r.ReviewID, &r.CameraName,
		&r.Severity, &r.Retracted, &r.Timestamp, &r.RawPayload, &r.CreatedAt)
	if err != nil {
		return Review{}, fmt.Errorf("upsert review (%s, %s): %w", arg.TenantID, arg.ReviewID, err)
	}
	return r, nil
}

const insertAvailability = `
INSERT INTO availability_logs (id, tenant_id, available, timestamp, raw_payload, created_at)
VALUES ($1, $2, $3, $4, $5, now())
RETURNING id, tenant_id, available, timestamp, raw_payload, created_at
`

func (s *Store) InsertAvailability(ctx context.Context, arg InsertAvailabilityParams) (AvailabilityLog, error) {
	var a AvailabilityLog
	err := s.pool.QueryRow(ctx, insertAvailability,
		arg.ID, arg.TenantID, arg.Available, EpochToTime(arg.Timestamp), arg.RawPayload,
	).Scan(&a.ID, &a.TenantID, &a.Available, &a.Timestamp, &a.RawPayload, &a.CreatedAt)
	if err != nil {
		return AvailabilityLog{}, fmt.Errorf("insert availability (%s): %w", arg.TenantID, err)
	}
	return a, nil
}

// EpochToTime converts fractional epoch seconds to a UTC wall-clock time.
func EpochToTime(sec float64) time.Time {
	s, frac := math.Modf(sec)
	return time.Unix(int64(s), int64(frac*1e9)).UTC()
}
