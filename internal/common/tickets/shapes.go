package tickets

import (
	"fmt"

	"github.com/tidwall/gjson"

	apperrors "cauldron-reconciler/internal/common/errors"
)

// Shape identifies which top-level layout the upstream payload used.
type Shape string

const (
	ShapeTickets   Shape = "tickets"
	ShapeData      Shape = "data"
	ShapeFirstList Shape = "first_list"
	ShapeBareList  Shape = "bare_list"
)

// shapeMatcher recognizes one payload layout. match reports whether the root
// has this layout and, if so, returns the records value. A matched layout
// with no records returns an empty Result.
type shapeMatcher struct {
	shape Shape
	match func(root gjson.Result) (gjson.Result, bool)
}

// shapeMatchers are tried in order; the first match wins.
var shapeMatchers = []shapeMatcher{
	{shape: ShapeTickets, match: memberMatcher("tickets")},
	{shape: ShapeData, match: memberMatcher("data")},
	{shape: ShapeFirstList, match: matchFirstList},
	{shape: ShapeBareList, match: matchBareList},
}

func memberMatcher(key string) func(gjson.Result) (gjson.Result, bool) {
	return func(root gjson.Result) (gjson.Result, bool) {
		if !root.IsObject() {
			return gjson.Result{}, false
		}
		member := root.Get(gjson.Escape(key))
		if !member.Exists() {
			return gjson.Result{}, false
		}
		return member, true
	}
}

// matchFirstList accepts any object and picks its first array-valued member
// in document order.
func matchFirstList(root gjson.Result) (gjson.Result, bool) {
	if !root.IsObject() {
		return gjson.Result{}, false
	}
	var found gjson.Result
	root.ForEach(func(_, value gjson.Result) bool {
		if value.IsArray() {
			found = value
			return false
		}
		return true
	})
	return found, true
}

func matchBareList(root gjson.Result) (gjson.Result, bool) {
	if !root.IsArray() {
		return gjson.Result{}, false
	}
	return root, true
}

// extractRecords runs the matchers against root and returns the raw records.
func extractRecords(root gjson.Result) (Shape, []gjson.Result, error) {
	for _, m := range shapeMatchers {
		value, ok := m.match(root)
		if !ok {
			continue
		}
		if !value.Exists() {
			return m.shape, nil, nil
		}
		if !value.IsArray() {
			return m.shape, nil, apperrors.NewParseFailedError(
				fmt.Errorf("%q member is %s, not a list", m.shape, describe(value)))
		}
		return m.shape, value.Array(), nil
	}
	return "", nil, apperrors.NewUnexpectedResponseFormatError(describe(root))
}

func describe(v gjson.Result) string {
	switch {
	case v.IsObject():
		return "object"
	case v.IsArray():
		return "array"
	case v.Type == gjson.Null:
		return "null"
	case v.Type == gjson.String:
		return "string"
	case v.Type == gjson.Number:
		return "number"
	case v.Type == gjson.True, v.Type == gjson.False:
		return "boolean"
	}
	return "unknown"
}
