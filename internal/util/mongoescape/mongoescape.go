// Package mongoescape rewrites map keys so they can be stored in MongoDB.
// Mongo forbids dots and dollar signs in field names, so both are swapped
// for their fullwidth unicode counterparts on the way in and restored on
// the way out.
package mongoescape

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	dot           = "."
	dollar        = "$"
	escapedDot    = "．" // FULLWIDTH FULL STOP
	escapedDollar = "＄" // FULLWIDTH DOLLAR SIGN
)

var (
	escaper   = strings.NewReplacer(dot, escapedDot, dollar, escapedDollar)
	unescaper = strings.NewReplacer(escapedDot, dot, escapedDollar, dollar)
)

// EscapeChars returns a copy of v with every map key escaped, descending
// into nested maps and slices. Values are never altered, only keys.
func EscapeChars(v any) any {
	return transformKeys(v, escaper.Replace)
}

// UnescapeChars is the inverse of EscapeChars.
func UnescapeChars(v any) any {
	return transformKeys(v, unescaper.Replace)
}

// EscapeDocument and UnescapeDocument are bson.M-preserving conveniences for
// the model conversion layer.
func EscapeDocument(doc bson.M) bson.M {
	return transformKeys(doc, escaper.Replace).(bson.M)
}

func UnescapeDocument(doc bson.M) bson.M {
	return transformKeys(doc, unescaper.Replace).(bson.M)
}

func transformKeys(v any, fn func(string) string) any {
	switch t := v.(type) {
	case bson.M:
		out := make(bson.M, len(t))
		for k, val := range t {
			out[fn(k)] = transformKeys(val, fn)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fn(k)] = transformKeys(val, fn)
		}
		return out
	case primitive.A:
		out := make(primitive.A, len(t))
		for i, val := range t {
			out[i] = transformKeys(val, fn)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = transformKeys(val, fn)
		}
		return out
	default:
		return v
	}
}
