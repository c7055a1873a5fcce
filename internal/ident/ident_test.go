package ident

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	const valid = "65a1f0c2b3d4e5f601234567"

	tests := []struct {
		name   string
		raw    any
		want   string
		wantOK bool
	}{
		{name: "valid", raw: valid, want: valid, wantOK: true},
		{name: "leading colon", raw: ":" + valid, want: valid, wantOK: true},
		{name: "surrounding whitespace", raw: "  " + valid + "\n", want: valid, wantOK: true},
		{name: "whitespace then colon", raw: " :" + valid, want: valid, wantOK: true},
		{name: "all zeros", raw: "000000000000000000000000", want: "000000000000000000000000", wantOK: true},
		{name: "uppercase hex kept as is", raw: "65A1F0C2B3D4E5F601234567", want: "65A1F0C2B3D4E5F601234567", wantOK: true},
		{name: "only one colon stripped", raw: "::" + valid},
		{name: "route placeholder", raw: ":userId"},
		{name: "too short", raw: "abc"},
		{name: "too long", raw: valid + "0"},
		{name: "non hex", raw: "zzzzzzzzzzzzzzzzzzzzzzzz"},
		{name: "empty", raw: ""},
		{name: "nil", raw: nil},
		{name: "bool", raw: true},
		{name: "map", raw: map[string]any{"id": valid}},
		{name: "slice", raw: []string{valid}},
		{name: "small number", raw: 42},
		{name: "float", raw: 4.5},
		{name: "json number", raw: json.Number("123")},
		{name: "int32", raw: int32(7)},
		{name: "uint", raw: uint(7)},
		{name: "float32", raw: float32(1.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_NumberWithTwentyFourDigits(t *testing.T) {
	got, ok := Normalize(json.Number("123456789012345678901234"))
	assert.True(t, ok)
	assert.Equal(t, "123456789012345678901234", got)
}

func TestNormalize_NumericKinds(t *testing.T) {
	got, ok := Normalize(float32(1e23))
	assert.True(t, ok)
	assert.Equal(t, "100000000000000000000000", got)

	got, ok = Normalize(float64(1e23))
	assert.True(t, ok)
	assert.Equal(t, "100000000000000000000000", got)

	// Integer kinds are read but never reach 24 digits.
	for _, raw := range []any{int8(12), int32(-7), uint16(65535), uint64(18446744073709551615)} {
		_, ok := Normalize(raw)
		assert.False(t, ok, "%T", raw)
	}
}

func TestNew(t *testing.T) {
	a := New()
	b := New()

	assert.NotEqual(t, a, b)
	for _, id := range []string{a, b} {
		got, ok := Normalize(id)
		assert.True(t, ok, "generated id %q should validate", id)
		assert.Equal(t, id, got)
	}
}
