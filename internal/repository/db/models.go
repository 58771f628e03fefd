package db

import "time"

// Tenant is one Frigate instance. Its id is externally assigned: the frigate
// instance identifier extracted from the MQTT topic.
type Tenant struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Camera is a logical camera within a tenant. (TenantID, Key) is unique.
type Camera struct {
	ID        string
	TenantID  string
	Key       string
	Label     string
	CreatedAt time.Time
}

// Event is a persisted detection event. (TenantID, FrigateID) is unique, where
// FrigateID is the Frigate-side event id.
type Event struct {
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
	CreatedAt   time.Time
}

// Review is a persisted human review. (TenantID, ReviewID) is unique.
type Review struct {
	ID         string
	TenantID   string
	CameraID   string
	ReviewID   string
	CameraName string
	Severity   string
	Retracted  bool
	Timestamp  *time.Time
	RawPayload []byte
	CreatedAt  time.Time
}

// AvailabilityLog is one append-only online/offline ping for a tenant.
type AvailabilityLog struct {
	ID         string
	TenantID   string
	Available  bool
	Timestamp  time.Time
	RawPayload []byte
	CreatedAt  time.Time
}
