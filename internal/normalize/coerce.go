package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Coercion helpers over decoded JSON values. Frigate payloads are loosely
// typed across versions: numbers arrive as strings, booleans as integers,
// snapshot flags as filenames. Every helper falls back to a zero value
// instead of failing.

// asMap returns the value as a JSON object, or nil.
func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// getMap returns obj[key] as a JSON object, or nil.
func getMap(obj map[string]interface{}, key string) map[string]interface{} {
	if obj == nil {
		return nil
	}
	return asMap(obj[key])
}

// getString returns obj[key] as a string, or "".
func getString(obj map[string]interface{}, key string) string {
	if obj == nil {
		return ""
	}
	s, _ := obj[key].(string)
	return s
}

// toNumber coerces a JSON value to a float64. Accepts numbers and numeric
// strings; anything else is nil.
func toNumber(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil
		}
		return &f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// getNumber returns obj[key] coerced to a number, or nil.
func getNumber(obj map[string]interface{}, key string) *float64 {
	if obj == nil {
		return nil
	}
	return toNumber(obj[key])
}

// falsyStrings are the only strings coerced to false. Any other non-empty
// string is truthy: a snapshot filename counts as "has snapshot".
var falsyStrings = map[string]bool{
	"false": true, "0": true, "no": true, "n": true, "": true,
}

// toBool coerces a JSON value to a boolean. Native booleans pass through,
// non-zero numbers are true, and strings follow the truthy-string rule.
func toBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case json.Number:
		f, err := b.Float64()
		return err == nil && f != 0
	case string:
		return !falsyStrings[strings.ToLower(strings.TrimSpace(b))]
	default:
		return false
	}
}

// getBool returns obj[key] coerced to a boolean, or false when absent.
func getBool(obj map[string]interface{}, key string) bool {
	if obj == nil {
		return false
	}
	v, ok := obj[key]
	if !ok {
		return false
	}
	return toBool(v)
}

// toAvailableBool is toBool extended with the wire literals Frigate publishes
// on the availability topic: "online" is true and "offline" is false.
func toAvailableBool(v interface{}) bool {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "online":
			return true
		case "offline":
			return false
		}
	}
	return toBool(v)
}
