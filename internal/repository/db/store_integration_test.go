//go:build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run against a database with migrations/001_init.sql applied:
//
//	TEST_POSTGRES_URL=postgres://... go test -tags integration ./internal/repository/db/

func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return New(pool)
}

// seedCamera provisions a fresh tenant and camera and removes the tenant (and
// everything cascaded under it) when the test ends.
func seedCamera(t *testing.T, s *Store) (tenantID, cameraID string) {
	t.Helper()
	ctx := context.Background()
	tenantID = "it-" + uuid.NewString()

	_, err := s.InsertTenant(ctx, InsertTenantParams{ID: tenantID, Name: "Frigate " + tenantID})
	require.NoError(t, err)
	t.Cleanup(func() {
		s.pool.Exec(context.Background(), "DELETE FROM tenants WHERE id = $1", tenantID)
	})

	camera, err := s.InsertCamera(ctx, InsertCameraParams{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Key:      "front_door",
		Label:    "front_door",
	})
	require.NoError(t, err)
	return tenantID, camera.ID
}

func (s *Store) countEvents(t *testing.T, tenantID, frigateID string) int {
	t.Helper()
	var n int
	err := s.pool.QueryRow(context.Background(),
		"SELECT count(*) FROM events WHERE tenant_id = $1 AND frigate_id = $2",
		tenantID, frigateID,
	).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestUpsertEventReplayIsIdempotent(t *testing.T) {
	s := newIntegrationStore(t)
	tenantID, cameraID := seedCamera(t, s)
	ctx := context.Background()

	start := 1700000000.0
	params := UpsertEventParams{
		TenantID:   tenantID,
		CameraID:   cameraID,
		FrigateID:  "e1",
		Type:       "new",
		Label:      "person",
		StartTime:  &start,
		RawPayload: []byte(`{"type":"new","id":"e1"}`),
	}

	var last Event
	for i := 0; i < 3; i++ {
		params.ID = uuid.NewString()
		var err error
		last, err = s.UpsertEvent(ctx, params)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, s.countEvents(t, tenantID, "e1"))
	assert.Equal(t, "new", last.Type)
	assert.Equal(t, "person", last.Label)
	require.NotNil(t, last.StartTime)
	assert.Equal(t, start, *last.StartTime)
}

func TestUpsertEventLateUpdateKeepsEndTime(t *testing.T) {
	s := newIntegrationStore(t)
	tenantID, cameraID := seedCamera(t, s)
	ctx := context.Background()

	start, end := 1700000000.0, 1700000010.0
	_, err := s.UpsertEvent(ctx, UpsertEventParams{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		CameraID:   cameraID,
		FrigateID:  "e1",
		Type:       "end",
		Label:      "person",
		StartTime:  &start,
		EndTime:    &end,
		RawPayload: []byte(`{"type":"end","id":"e1"}`),
	})
	require.NoError(t, err)

	// An out-of-order update with no end_time must not erase the stored one.
	updated, err := s.UpsertEvent(ctx, UpsertEventParams{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		CameraID:   cameraID,
		FrigateID:  "e1",
		Type:       "update",
		Label:      "person",
		StartTime:  &start,
		EndTime:    nil,
		RawPayload: []byte(`{"type":"update","id":"e1"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, s.countEvents(t, tenantID, "e1"))
	assert.Equal(t, "update", updated.Type)
	require.NotNil(t, updated.EndTime)
	assert.Equal(t, end, *updated.EndTime)
	require.NotNil(t, updated.StartTime)
	assert.Equal(t, start, *updated.StartTime)
	assert.JSONEq(t, `{"type":"update","id":"e1"}`, string(updated.RawPayload))
}

func TestUpsertEventRejectsForeignCamera(t *testing.T) {
	s := newIntegrationStore(t)
	tenantID, _ := seedCamera(t, s)
	otherTenant, otherCamera := seedCamera(t, s)
	require.NotEqual(t, tenantID, otherTenant)

	_, err := s.UpsertEvent(context.Background(), UpsertEventParams{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		CameraID:   otherCamera,
		FrigateID:  "e1",
		Type:       "new",
		Label:      "person",
		RawPayload: []byte(`{}`),
	})
	assert.ErrorIs(t, err, ErrCameraTenantMismatch)
}

func TestUpsertReviewReplayIsIdempotent(t *testing.T) {
	s := newIntegrationStore(t)
	tenantID, cameraID := seedCamera(t, s)
	ctx := context.Background()

	ts := 1700000100.0
	params := UpsertReviewParams{
		TenantID:   tenantID,
		CameraID:   cameraID,
		ReviewID:   "r1",
		CameraName: "front_door",
		Severity:   "alert",
		Timestamp:  &ts,
		RawPayload: []byte(`{"id":"r1"}`),
	}

	params.ID = uuid.NewString()
	first, err := s.UpsertReview(ctx, params)
	require.NoError(t, err)

	// Replay with no timestamp: the stored one survives the conflict update.
	params.ID = uuid.NewString()
	params.Timestamp = nil
	second, err := s.UpsertReview(ctx, params)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.Timestamp)
	assert.Equal(t, first.Timestamp.UTC(), second.Timestamp.UTC())
}
