package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBool(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want bool
	}{
		{"native true", true, true},
		{"native false", false, false},
		{"nonzero number", float64(1), true},
		{"zero number", float64(0), false},
		{"negative number", float64(-2), true},
		{"string true", "true", true},
		{"string false", "false", false},
		{"string zero", "0", false},
		{"string no", "no", false},
		{"string n", "n", false},
		{"empty string", "", false},
		{"uppercase falsy", "FALSE", false},
		{"padded falsy", "  No  ", false},
		{"arbitrary string is truthy", "maybe", true},
		{"snapshot filename is truthy", "back_door-163843-abc.jpg", true},
		{"nil", nil, false},
		{"object", map[string]interface{}{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toBool(tt.in))
		})
	}
}

func TestToAvailableBool(t *testing.T) {
	assert.True(t, toAvailableBool("online"))
	assert.True(t, toAvailableBool(" ONLINE "))
	assert.False(t, toAvailableBool("offline"))
	assert.False(t, toAvailableBool("Offline"))
	// Outside the wire literals the generic truthy rules apply.
	assert.True(t, toAvailableBool("1"))
	assert.False(t, toAvailableBool("no"))
	assert.True(t, toAvailableBool(true))
}

func TestToNumber(t *testing.T) {
	n := toNumber(float64(163843.52))
	require.NotNil(t, n)
	assert.Equal(t, 163843.52, *n)

	n = toNumber("163843.52")
	require.NotNil(t, n)
	assert.Equal(t, 163843.52, *n)

	n = toNumber(" 42 ")
	require.NotNil(t, n)
	assert.Equal(t, 42.0, *n)

	assert.Nil(t, toNumber("not a number"))
	assert.Nil(t, toNumber(nil))
	assert.Nil(t, toNumber(true))
	assert.Nil(t, toNumber(map[string]interface{}{}))
}

func TestGetHelpers(t *testing.T) {
	obj := map[string]interface{}{
		"s":      "hello",
		"n":      float64(7),
		"flag":   "yes",
		"nested": map[string]interface{}{"id": "abc"},
	}

	assert.Equal(t, "hello", getString(obj, "s"))
	assert.Equal(t, "", getString(obj, "missing"))
	assert.Equal(t, "", getString(nil, "s"))

	n := getNumber(obj, "n")
	require.NotNil(t, n)
	assert.Equal(t, 7.0, *n)
	assert.Nil(t, getNumber(obj, "s"))
	assert.Nil(t, getNumber(nil, "n"))

	assert.True(t, getBool(obj, "flag"))
	assert.False(t, getBool(obj, "missing"))
	assert.False(t, getBool(nil, "flag"))

	assert.Equal(t, "abc", getString(getMap(obj, "nested"), "id"))
	assert.Nil(t, getMap(obj, "s"))
	assert.Nil(t, getMap(nil, "nested"))
}
