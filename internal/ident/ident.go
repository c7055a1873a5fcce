// Package ident validates and mints the opaque identifiers used for users
// and expenses. Identifiers are 24-character hexadecimal ObjectIDs so the
// same values work against both the SQL and the document store.
package ident

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// New returns a freshly generated identifier.
func New() string {
	return primitive.NewObjectID().Hex()
}

// Normalize cleans a raw identifier candidate coming from a route parameter
// or a request body. It accepts strings and numbers only, trims whitespace,
// drops a single leading ':' left over from route placeholders and reports
// whether the result is a well-formed identifier.
func Normalize(raw any) (string, bool) {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		s = fmt.Sprint(v)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		s = v.String()
	default:
		return "", false
	}

	s = strings.TrimPrefix(strings.TrimSpace(s), ":")
	if !primitive.IsValidObjectID(s) {
		return "", false
	}
	return s, true
}
