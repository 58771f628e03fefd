package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// ErrCameraTenantMismatch is returned by UpsertEvent when the camera row read
// inside the transaction belongs to a different tenant than the one resolved
// for the message. It signals a cross-tenant race, not a store failure.
var ErrCameraTenantMismatch = errors.New("camera belongs to a different tenant")

// Querier is the store contract the ingestion pipeline consumes. The pgx
// implementation is Store; tests substitute the generated mock.
type Querier interface {
	// Ping probes the connection with a trivial query.
	Ping(ctx context.Context) error

	GetTenant(ctx context.Context, id string) (Tenant, error)
	InsertTenant(ctx context.Context, arg InsertTenantParams) (Tenant, error)

	GetCameraByKey(ctx context.Context, tenantID, key string) (Camera, error)
	InsertCamera(ctx context.Context, arg InsertCameraParams) (Camera, error)

	// UpsertEvent runs in a single transaction: it re-reads the camera row,
	// verifies its tenant, and inserts or conflict-updates the event keyed on
	// (tenant_id, frigate_id). Non-null timestamps are never overwritten with
	// null on conflict.
	UpsertEvent(ctx context.Context, arg UpsertEventParams) (Event, error)

	// UpsertReview inserts or conflict-updates a review keyed on
	// (tenant_id, review_id).
	UpsertReview(ctx context.Context, arg UpsertReviewParams) (Review, error)

	// InsertAvailability appends one availability row; there is no conflict key.
	InsertAvailability(ctx context.Context, arg InsertAvailabilityParams) (AvailabilityLog, error)
}

type InsertTenantParams struct {
	ID   string
	Name string
}

type InsertCameraParams struct {
	ID       string
	TenantID string
	Key      string
	Label    string
}

type UpsertEventParams struct {
	ID          string
	TenantID    string
	CameraID    string
	FrigateID   string
	Type        string
	Label       string
	HasSnapshot bool
	HasClip     bool
	StartTime   *float64
	EndTime     *float64
	RawPayload  []byte
}

type UpsertReviewParams struct {
	ID         string
	TenantID   string
	CameraID   string
	ReviewID   string
	CameraName string
	Severity   string
	Retracted  bool
	Timestamp  *float64 // seconds since epoch, converted to timestamptz on write
	RawPayload []byte
}

type InsertAvailabilityParams struct {
	ID         string
	TenantID   string
	Available  bool
	Timestamp  float64 // seconds since epoch
	RawPayload []byte
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). The resolver uses it to detect auto-creation
// races and retry the lookup.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
