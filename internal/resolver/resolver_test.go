package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/camwatch/frigate-ingestor/internal/repository/db"
	"github.com/camwatch/frigate-ingestor/internal/repository/mock"
)

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "tenants_pkey"}
}

func TestResolveTenant(t *testing.T) {
	ctx := context.Background()

	t.Run("existing tenant is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		q := mock.NewMockQuerier(ctrl)
		q.EXPECT().GetTenant(gomock.Any(), "acme").Return(db.Tenant{ID: "acme", Name: "Acme"}, nil)

		r := New(q, zaptest.NewLogger(t))
		tenant, err := r.ResolveTenant(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, "acme", tenant.ID)
	})

	t.Run("absent tenant is auto-provisioned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		q := mock.NewMockQuerier(ctrl)
		q.EXPECT().GetTenant(gomock.Any(), "siteA").Return(db.Tenant{}, db.ErrNotFound)
		q.EXPECT().InsertTenant(gomock.Any(), db.InsertTenantParams{ID: "siteA", Name: "Frigate siteA"}).
			Return(db.Tenant{ID: "siteA", Name: "Frigate siteA"}, nil)

		r := New(q, zaptest.NewLogger(t))
		tenant, err := r.ResolveTenant(ctx, "siteA")
		require.NoError(t, err)
		assert.Equal(t, "Frigate siteA", tenant.Name)
	})

	t.Run("lost creation race retries the lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		q := mock.NewMockQuerier(ctrl)
		gomock.InOrder(
			q.EXPECT().GetTenant(gomock.Any(), "siteA").Return(db.Tenant{}, db.ErrNotFound),
			q.EXPECT().InsertTenant(gomock.Any(), gomock.Any()).Return(db.Tenant{}, uniqueViolation()),
			q.EXPECT().GetTenant(gomock.Any(), "siteA").Return(db.Tenant{ID: "siteA"}, nil),
		)

		r := New(q, zaptest.NewLogger(t))
		tenant, err := r.ResolveTenant(ctx, "siteA")
		require.NoError(t, err)
		assert.Equal(t, "siteA", tenant.ID)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		q := mock.NewMockQuerier(ctrl)
		q.EXPECT().GetTenant(gomock.Any(), "acme").Return(db.Tenant{}, errors.New("connection reset"))

		r := New(q, zaptest.NewLogger(t))
		_, err := r.ResolveTenant(ctx, "acme")
		assert.ErrorContains(t, err, "tenant lookup")
	})
}

func TestResolveCamera(t *testing.T) {
	ctx := context.Background()
	tenant := db.Tenant{ID: "acme", Name: "Acme"}

	t.Run("existing camera is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		q := mock.NewMockQuerier(ctrl)
		q.EXPECT().GetTenant(gomock.Any(), "acme").Return(tenant, nil)
		q.EXPECT().GetCameraByKey(gomock.Any(), "acme", "front_door").
			Return(db.Camera{ID: "cam-1", TenantID: "acme", Key: "front_door"}, nil)

		r := New(q, zaptest.NewLogger(t))
		camera, err := r.ResolveCamera(ctx, "acme", "front_door")
		require.NoError(t, err)
		assert.Equal(t, "cam-1", camera.ID)
	})

	t.Run("absent camera is auto-provisioned under its tenant", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		q := mock.NewMockQuerier(ctrl)
		q.EXPECT().GetTenant(gomock.Any(), "acme").Return(tenant, nil)
		q.EXPECT().GetCameraByKey(gomock.Any(), "acme", "yard").Return(db.Camera{}, db.ErrNotFound)
		q.EXPECT().InsertCamera(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, arg db.InsertCameraParams) (db.Camera, error) {
				assert.NotEmpty(t, arg.ID)
				assert.Equal(t, "acme", arg.TenantID)
				assert.Equal(t, "yard", arg.Key)
				assert.Equal(t, "yard", arg.Label)
				return db.Camera{ID: arg.ID, TenantID: arg.TenantID, Key: arg.Key, Label: arg.Label}, nil
			})

		r := New(q, zaptest.NewLogger(t))
		camera, err := r.ResolveCamera(ctx, "acme", "yard")
		require.NoError(t, err)
		assert.Equal(t, "acme", camera.TenantID)
		assert.Equal(t, "yard", camera.Key)
	})

	t.Run("lost creation race retries the lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		q := mock.NewMockQuerier(ctrl)
		gomock.InOrder(
			q.EXPECT().GetTenant(gomock.Any(), "acme").Return(tenant, nil),
			q.EXPECT().GetCameraByKey(gomock.Any(), "acme", "yard").Return(db.Camera{}, db.ErrNotFound),
			q.EXPECT().InsertCamera(gomock.Any(), gomock.Any()).Return(db.Camera{}, uniqueViolation()),
			q.EXPECT().GetCameraByKey(gomock.Any(), "acme", "yard").Return(db.Camera{ID: "cam-2"}, nil),
		)

		r := New(q, zaptest.NewLogger(t))
		camera, err := r.ResolveCamera(ctx, "acme", "yard")
		require.NoError(t, err)
		assert.Equal(t, "cam-2", camera.ID)
	})

	t.Run("tenant failure short-circuits", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		q := mock.NewMockQuerier(ctrl)
		q.EXPECT().GetTenant(gomock.Any(), "acme").Return(db.Tenant{}, errors.New("down"))

		r := New(q, zaptest.NewLogger(t))
		_, err := r.ResolveCamera(ctx, "acme", "yard")
		assert.Error(t, err)
	})
}
