// Package ingest contains the MQTT subscriber, the bounded dispatch pool, and
// the persistence handlers that turn normalized records into durable rows.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/camwatch/frigate-ingestor/internal/normalize"
	"github.com/camwatch/frigate-ingestor/internal/repository/db"
	"github.com/camwatch/frigate-ingestor/internal/resolver"
	"github.com/camwatch/frigate-ingestor/internal/telemetry"
)

// Error kinds carried in handler results and log fields. Per-message errors
// are contained here: logged, counted, returned — never re-raised into the
// subscriber.
const (
	ErrKindPayloadMalformed     = "payload_malformed"
	ErrKindPayloadInvalid       = "payload_invalid"
	ErrKindCameraResolution     = "camera_resolution_failed"
	ErrKindTenantResolution     = "tenant_resolution_failed"
	ErrKindCameraTenantMismatch = "camera_tenant_mismatch"
	ErrKindHandler              = "handler_error"
)

// Result is the outcome of one handler invocation.
type Result struct {
	OK          bool
	Data        interface{} // the persisted row on success
	ErrorKind   string
	ErrorDetail string
}

func success(data interface{}) Result {
	return Result{OK: true, Data: data}
}

func failure(kind string, err error) Result {
	return Result{ErrorKind: kind, ErrorDetail: err.Error()}
}

// Handlers persists normalized records. One instance serves all three kinds;
// invocations may run concurrently on the dispatch pool.
type Handlers struct {
	resolver *resolver.Resolver
	querier  db.Querier
	logger   *zap.Logger
	tracer   trace.Tracer
	metrics  *telemetry.IngestMetrics
}

func NewHandlers(r *resolver.Resolver, q db.Querier, m *telemetry.IngestMetrics, l *zap.Logger) *Handlers {
	return &Handlers{
		resolver: r,
		querier:  q,
		logger:   l,
		tracer:   otel.Tracer("frigate-ingestor"),
		metrics:  m,
	}
}

// HandleEvent resolves the camera and upserts the event keyed on
// (tenant, frigate event id). Replays of the same broker message land on the
// conflict path and are no-ops apart from the raw payload refresh.
func (h *Handlers) HandleEvent(ctx context.Context, n *normalize.Event) Result {
	ctx, span := h.tracer.Start(ctx, "ingest.handleEvent")
	defer span.End()

	camera, err := h.resolver.ResolveCamera(ctx, n.FrigateID, n.Camera)
	if err != nil {
		return h.fail(ctx, ErrKindCameraResolution, err,
			zap.String("frigate_id", n.FrigateID),
			zap.String("camera", n.Camera),
			zap.String("event_id", n.EventID),
		)
	}

	raw, err := json.Marshal(n.Raw)
	if err != nil {
		return h.fail(ctx, ErrKindHandler, fmt.Errorf("encode raw payload: %w", err),
			zap.String("frigate_id", n.FrigateID),
			zap.String("event_id", n.EventID),
		)
	}

	event, err := h.querier.UpsertEvent(ctx, db.UpsertEventParams{
		ID:          uuid.NewString(),
		TenantID:    camera.TenantID,
		CameraID:    camera.ID,
		FrigateID:   n.EventID,
		Type:        n.Type,
		Label:       n.Label,
		HasSnapshot: n.HasSnapshot,
		HasClip:     n.HasClip,
		StartTime:   n.StartTime,
		EndTime:     n.EndTime,
		RawPayload:  raw,
	})
	if err != nil {
		kind := ErrKindHandler
		if errors.Is(err, db.ErrCameraTenantMismatch) {
			kind = ErrKindCameraTenantMismatch
		}
		return h.fail(ctx, kind, err,
			zap.String("frigate_id", n.FrigateID),
			zap.String("camera", n.Camera),
			zap.String("event_id", n.EventID),
		)
	}

	h.logger.Debug("event persisted",
		zap.String("frigate_id", n.FrigateID),
		zap.String("event_id", n.EventID),
		zap.String("type", n.Type),
	)
	return success(event)
}

// HandleReview resolves the camera and upserts the review keyed on
// (tenant, review id).
func (h *Handlers) HandleReview(ctx context.Context, n *normalize.Review) Result {
	ctx, span := h.tracer.Start(ctx, "ingest.handleReview")
	defer span.End()

	camera, err := h.resolver.ResolveCamera(ctx, n.FrigateID, n.Camera)
	if err != nil {
		return h.fail(ctx, ErrKindCameraResolution, err,
			zap.String("frigate_id", n.FrigateID),
			zap.String("camera", n.Camera),
			zap.String("review_id", n.ReviewID),
		)
	}

	raw, err := json.Marshal(n.Raw)
	if err != nil {
		return h.fail(ctx, ErrKindHandler, fmt.Errorf("encode raw payload: %w", err),
			zap.String("frigate_id", n.FrigateID),
			zap.String("review_id", n.ReviewID),
		)
	}

	review, err := h.querier.UpsertReview(ctx, db.UpsertReviewParams{
		ID:         uuid.NewString(),
		TenantID:   camera.TenantID,
		CameraID:   camera.ID,
		ReviewID:   n.ReviewID,
		CameraName: n.Camera,
		Severity:   n.Severity,
		Retracted:  n.Retracted,
		Timestamp:  n.Timestamp,
		RawPayload: raw,
	})
	if err != nil {
		return h.fail(ctx, ErrKindHandler, err,
			zap.String("frigate_id", n.FrigateID),
			zap.String("camera", n.Camera),
			zap.String("review_id", n.ReviewID),
		)
	}

	h.logger.Debug("review persisted",
		zap.String("frigate_id", n.FrigateID),
		zap.String("review_id", n.ReviewID),
		zap.String("severity", n.Severity),
	)
	return success(review)
}

// HandleAvailability resolves the tenant only (availability is an
// instance-level signal) and appends one log row per ping.
func (h *Handlers) HandleAvailability(ctx context.Context, n *normalize.Available) Result {
	ctx, span := h.tracer.Start(ctx, "ingest.handleAvailability")
	defer span.End()

	tenant, err := h.resolver.ResolveTenant(ctx, n.FrigateID)
	if err != nil {
		return h.fail(ctx, ErrKindTenantResolution, err,
			zap.String("frigate_id", n.FrigateID),
		)
	}

	raw, err := json.Marshal(n.Raw)
	if err != nil {
		return h.fail(ctx, ErrKindHandler, fmt.Errorf("encode raw payload: %w", err),
			zap.String("frigate_id", n.FrigateID),
		)
	}

	row, err := h.querier.InsertAvailability(ctx, db.InsertAvailabilityParams{
		ID:         uuid.NewString(),
		TenantID:   tenant.ID,
		Available:  n.Available,
		Timestamp:  n.Timestamp,
		RawPayload: raw,
	})
	if err != nil {
		return h.fail(ctx, ErrKindHandler, err,
			zap.String("frigate_id", n.FrigateID),
		)
	}

	h.logger.Debug("availability persisted",
		zap.String("frigate_id", n.FrigateID),
		zap.Bool("available", n.Available),
	)
	return success(row)
}

func (h *Handlers) fail(ctx context.Context, kind string, err error, fields ...zap.Field) Result {
	h.metrics.RecordFailure(ctx, kind)
	h.logger.Error("message dropped",
		append([]zap.Field{zap.String("error_kind", kind), zap.Error(err)}, fields...)...,
	)
	return failure(kind, err)
}
