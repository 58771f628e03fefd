// Package resolver maps (frigateID, cameraName) pairs to tenant and camera
// rows, auto-provisioning both on first sight. Creation races between
// concurrent handlers are resolved by the unique constraints: an insert that
// loses the race retries the lookup instead of failing the message.
package resolver

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/camwatch/frigate-ingestor/internal/repository/db"
)

type Resolver struct {
	querier db.Querier
	logger  *zap.Logger
}

func New(q db.Querier, l *zap.Logger) *Resolver {
	return &Resolver{querier: q, logger: l}
}

// ResolveTenant finds the tenant with id frigateID, creating it when absent.
func (r *Resolver) ResolveTenant(ctx context.Context, frigateID string) (db.Tenant, error) {
	tenant, err := r.querier.GetTenant(ctx, frigateID)
	if err == nil {
		return tenant, nil
	}
	if err != db.ErrNotFound {
		return db.Tenant{}, fmt.Errorf("tenant lookup: %w", err)
	}

	tenant, err = r.querier.InsertTenant(ctx, db.InsertTenantParams{
		ID:   frigateID,
		Name: "Frigate " + frigateID,
	})
	if err == nil {
		r.logger.Info("auto-provisioned tenant", zap.String("frigate_id", frigateID))
		return tenant, nil
	}
	if db.IsUniqueViolation(err) {
		// Lost the creation race to a concurrent handler.
		return r.querier.GetTenant(ctx, frigateID)
	}
	return db.Tenant{}, fmt.Errorf("tenant insert: %w", err)
}

// ResolveCamera resolves the tenant, then finds the camera keyed by
// (tenantID, cameraName), creating it when absent.
func (r *Resolver) ResolveCamera(ctx context.Context, frigateID, cameraName string) (db.Camera, error) {
	tenant, err := r.ResolveTenant(ctx, frigateID)
	if err != nil {
		return db.Camera{}, err
	}

	camera, err := r.querier.GetCameraByKey(ctx, tenant.ID, cameraName)
	if err == nil {
		return camera, nil
	}
	if err != db.ErrNotFound {
		return db.Camera{}, fmt.Errorf("camera lookup: %w", err)
	}

	camera, err = r.querier.InsertCamera(ctx, db.InsertCameraParams{
		ID:       uuid.NewString(),
		TenantID: tenant.ID,
		Key:      cameraName,
		Label:    cameraName,
	})
	if err == nil {
		r.logger.Info("auto-provisioned camera",
			zap.String("frigate_id", frigateID),
			zap.String("camera", cameraName),
		)
		return camera, nil
	}
	if db.IsUniqueViolation(err) {
		return r.querier.GetCameraByKey(ctx, tenant.ID, cameraName)
	}
	return db.Camera{}, fmt.Errorf("camera insert: %w", err)
}
