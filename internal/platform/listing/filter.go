package listing

import (
	"strconv"
	"strings"
	"time"
)

// Filter recognizes one query parameter and compiles its value into a predicate.
// A value that cannot be interpreted compiles to no predicate at all, so a
// malformed filter narrows nothing.
type Filter[T any] struct {
	Param   string
	compile func(value string) (func(T) bool, bool)
}

// Custom builds a filter from an arbitrary compile function.
func Custom[T any](param string, compile func(value string) (func(T) bool, bool)) Filter[T] {
	return Filter[T]{Param: param, compile: compile}
}

// Contains matches records whose field contains the value, ignoring case.
// Empty or blank values impose no constraint.
func Contains[T any](param string, field func(T) string) Filter[T] {
	return Custom(param, func(value string) (func(T) bool, bool) {
		needle := strings.ToLower(strings.TrimSpace(value))
		if needle == "" {
			return nil, false
		}
		return func(rec T) bool {
			return strings.Contains(strings.ToLower(field(rec)), needle)
		}, true
	})
}

// EqualsID matches records whose identifier field equals the value.
func EqualsID[T any](param string, field func(T) int64) Filter[T] {
	return Custom(param, func(value string) (func(T) bool, bool) {
		id, ok := parseID(value)
		if !ok {
			return nil, false
		}
		return func(rec T) bool { return field(rec) == id }, true
	})
}

// EqualsOptionalID is EqualsID for nullable references; a null reference never matches.
func EqualsOptionalID[T any](param string, field func(T) *int64) Filter[T] {
	return Custom(param, func(value string) (func(T) bool, bool) {
		id, ok := parseID(value)
		if !ok {
			return nil, false
		}
		return func(rec T) bool {
			ref := field(rec)
			return ref != nil && *ref == id
		}, true
	})
}

// EqualsBool matches records whose flag equals the value. Accepted spellings are
// those of strconv.ParseBool; anything else imposes no constraint.
func EqualsBool[T any](param string, field func(T) bool) Filter[T] {
	return Custom(param, func(value string) (func(T) bool, bool) {
		want, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, false
		}
		return func(rec T) bool { return field(rec) == want }, true
	})
}

// OneOf matches records whose field equals the value, provided the value is one of
// allowed. Values outside the enumeration impose no constraint.
func OneOf[T any](param string, allowed []string, field func(T) string) Filter[T] {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return Custom(param, func(value string) (func(T) bool, bool) {
		value = strings.TrimSpace(value)
		if _, ok := set[value]; !ok {
			return nil, false
		}
		return func(rec T) bool { return field(rec) == value }, true
	})
}

// Since matches records whose timestamp is at or after the value.
func Since[T any](param string, field func(T) time.Time) Filter[T] {
	return Custom(param, func(value string) (func(T) bool, bool) {
		from, ok := ParseTime(value)
		if !ok {
			return nil, false
		}
		return func(rec T) bool { return !field(rec).Before(from) }, true
	})
}

// Until matches records whose timestamp is at or before the value.
func Until[T any](param string, field func(T) time.Time) Filter[T] {
	return Custom(param, func(value string) (func(T) bool, bool) {
		to, ok := ParseTime(value)
		if !ok {
			return nil, false
		}
		return func(rec T) bool { return !field(rec).After(to) }, true
	})
}

func parseID(value string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// timeLayouts are tried in order. Layouts without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime reads a timestamp in any of the accepted layouts.
func ParseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
