// Package normalize converts raw Frigate MQTT payloads and topic strings into
// typed records. All functions are pure: no I/O, no globals. The one
// deliberate exception is the availability timestamp, which is stamped with
// the caller's clock when the payload carries none — ParseAvailableAt exists
// so tests can inject it.
package normalize

import (
	"strings"
	"time"
)

// Message kinds, matching the middle segment of the Frigate topic tree.
const (
	KindEvent     = "events"
	KindReview    = "reviews"
	KindAvailable = "available"
)

// Event lifecycle types accepted from the wire.
var eventTypes = map[string]bool{"new": true, "update": true, "end": true}

// Review severities accepted from the wire.
var reviewSeverities = map[string]bool{"alert": true, "detection": true, "review": true}

// Event is a normalized object-detection event. Raw carries the decoded
// payload untouched for the audit trail.
type Event struct {
	FrigateID   string
	EventID     string
	Camera      string
	Type        string
	Label       string
	HasSnapshot bool
	HasClip     bool
	StartTime   *float64
	EndTime     *float64
	Raw         interface{}
}

// Review is a normalized human-review record.
type Review struct {
	FrigateID string
	ReviewID  string
	Camera    string
	Severity  string
	Retracted bool
	Timestamp *float64
	Raw       interface{}
}

// Available is a normalized instance availability signal. Timestamp is always
// set: either from the payload or stamped at normalization time.
type Available struct {
	FrigateID string
	Available bool
	Timestamp float64
	Raw       interface{}
}

// Topic holds the identifiers extracted from an MQTT topic string.
//
// Frigate topics come in two shapes:
//
//	frigate/{events|reviews|available}[/<camera>]          single instance
//	frigate/<id>/{events|reviews|available}[/<camera>]     multi instance
//
// The instance id becomes the tenant id; absent means "default".
type Topic struct {
	FrigateID string
	Kind      string // "" when the topic matches no known shape
	Camera    string
}

func isKind(s string) bool {
	return s == KindEvent || s == KindReview || s == KindAvailable
}

// ParseTopic splits a topic string into frigate id, message kind, and camera
// name. Kind is empty for topics outside the frigate tree.
func ParseTopic(topic string) Topic {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 || parts[0] != "frigate" {
		return Topic{FrigateID: "default"}
	}
	if isKind(parts[1]) {
		t := Topic{FrigateID: "default", Kind: parts[1]}
		if len(parts) > 2 {
			t.Camera = parts[2]
		}
		return t
	}
	// Second segment is the frigate instance id.
	t := Topic{FrigateID: parts[1]}
	if len(parts) > 2 && isKind(parts[2]) {
		t.Kind = parts[2]
		if len(parts) > 3 {
			t.Camera = parts[3]
		}
	}
	return t
}

// ParseMessage routes a decoded payload to the normalizer matching its topic.
// It returns *Event, *Review, *Available, or nil.
func ParseMessage(payload interface{}, topic string) interface{} {
	switch ParseTopic(topic).Kind {
	case KindEvent:
		if e := ParseEvent(payload, topic); e != nil {
			return e
		}
	case KindReview:
		if r := ParseReview(payload, topic); r != nil {
			return r
		}
	case KindAvailable:
		if a := ParseAvailable(payload, topic); a != nil {
			return a
		}
	}
	return nil
}

// ParseEvent normalizes a detection event payload. Returns nil when the
// payload is not an object or its lifecycle type is not new/update/end.
//
// Old and new Frigate payload shapes both work: id, label, snapshot and clip
// flags, and timestamps are read from the top level first, then from the
// after and before sub-objects.
func ParseEvent(payload interface{}, topic string) *Event {
	obj := asMap(payload)
	if obj == nil {
		return nil
	}

	typ := getString(obj, "type")
	if !eventTypes[typ] {
		return nil
	}

	t := ParseTopic(topic)
	before := getMap(obj, "before")
	after := getMap(obj, "after")

	return &Event{
		FrigateID:   t.FrigateID,
		EventID:     firstString("unknown", getString(obj, "id"), getString(after, "id"), getString(before, "id")),
		Camera:      cameraName(t, obj, after, before),
		Type:        typ,
		Label:       firstString("unknown", getString(obj, "label"), getString(after, "label"), getString(before, "label")),
		HasSnapshot: flagged(obj, after, before, "has_snapshot", "snapshot"),
		HasClip:     flagged(obj, after, before, "has_clip", "clip"),
		StartTime:   firstNumber(getNumber(obj, "start_time"), getNumber(after, "start_time"), getNumber(before, "start_time")),
		EndTime:     firstNumber(getNumber(obj, "end_time"), getNumber(after, "end_time"), getNumber(before, "end_time")),
		Raw:         payload,
	}
}

// ParseReview normalizes a review payload. Some Frigate versions wrap the
// review in a {before, after} envelope; the body is unwrapped opportunistically
// by preferring whichever sub-object carries an id. Returns nil when the
// required id or severity is missing or the severity is unrecognized.
func ParseReview(payload interface{}, topic string) *Review {
	obj := asMap(payload)
	if obj == nil {
		return nil
	}

	body := obj
	if getString(body, "id") == "" {
		if after := getMap(obj, "after"); getString(after, "id") != "" {
			body = after
		} else if before := getMap(obj, "before"); getString(before, "id") != "" {
			body = before
		}
	}

	id := getString(body, "id")
	severity := getString(body, "severity")
	if id == "" || !reviewSeverities[severity] {
		return nil
	}

	t := ParseTopic(topic)
	return &Review{
		FrigateID: t.FrigateID,
		ReviewID:  id,
		Camera:    cameraName(t, body, nil, nil),
		Severity:  severity,
		Retracted: getBool(body, "retracted"),
		Timestamp: getNumber(body, "timestamp"),
		Raw:       payload,
	}
}

// ParseAvailable normalizes an availability payload, stamping the current
// wall clock when the payload has no timestamp.
func ParseAvailable(payload interface{}, topic string) *Available {
	return ParseAvailableAt(payload, topic, time.Now())
}

// ParseAvailableAt is ParseAvailable with an injected clock. Accepts either a
// wrapped object carrying an "available" or "online" field, or a bare string
// body. Returns nil only for payloads of an impossible type.
func ParseAvailableAt(payload interface{}, topic string, now time.Time) *Available {
	t := ParseTopic(topic)
	a := &Available{
		FrigateID: t.FrigateID,
		Timestamp: float64(now.UnixMilli()) / 1000,
		Raw:       payload,
	}

	switch v := payload.(type) {
	case map[string]interface{}:
		if raw, ok := v["available"]; ok {
			a.Available = toAvailableBool(raw)
		} else if raw, ok := v["online"]; ok {
			a.Available = toAvailableBool(raw)
		}
		if ts := getNumber(v, "timestamp"); ts != nil {
			a.Timestamp = *ts
		}
	case string:
		a.Available = toAvailableBool(v)
	default:
		return nil
	}
	return a
}

// cameraName resolves the camera identifier: topic segment first, then the
// payload's own camera field at any of the three levels.
func cameraName(t Topic, obj, after, before map[string]interface{}) string {
	if t.Camera != "" {
		return t.Camera
	}
	return firstString("unknown", getString(obj, "camera"), getString(after, "camera"), getString(before, "camera"))
}

// flagged reports whether any of the given keys is truthy at the top level or
// inside the before/after sub-objects.
func flagged(obj, after, before map[string]interface{}, keys ...string) bool {
	for _, m := range []map[string]interface{}{obj, after, before} {
		for _, k := range keys {
			if getBool(m, k) {
				return true
			}
		}
	}
	return false
}

func firstString(def string, candidates ...string) string {
	for _, s := range candidates {
		if s != "" {
			return s
		}
	}
	return def
}

func firstNumber(candidates ...*float64) *float64 {
	for _, n := range candidates {
		if n != nil {
			return n
		}
	}
	return nil
}
