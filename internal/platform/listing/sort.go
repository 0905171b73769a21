package listing

import (
	"cmp"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey is a field records can be ordered by. Name is the public field name;
// Aliases are accepted as synonyms in ordering expressions.
type SortKey[T any] struct {
	Name    string
	Aliases []string
	// newCompare is called once per sort so keys may hold per-sort state
	// such as a collator, which is not safe for concurrent use.
	newCompare func() func(a, b T) int
}

// SortText orders by a text field using Spanish collation, ignoring case.
func SortText[T any](name string, field func(T) string, aliases ...string) SortKey[T] {
	return SortKey[T]{Name: name, Aliases: aliases, newCompare: func() func(a, b T) int {
		col := collate.New(language.Spanish, collate.IgnoreCase)
		return func(a, b T) int { return col.CompareString(field(a), field(b)) }
	}}
}

// SortInt orders by an integer field.
func SortInt[T any](name string, field func(T) int64, aliases ...string) SortKey[T] {
	return SortKey[T]{Name: name, Aliases: aliases, newCompare: func() func(a, b T) int {
		return func(a, b T) int { return cmp.Compare(field(a), field(b)) }
	}}
}

// SortOptionalInt orders by a nullable integer field; nulls sort after every value.
func SortOptionalInt[T any](name string, field func(T) *int64, aliases ...string) SortKey[T] {
	return SortKey[T]{Name: name, Aliases: aliases, newCompare: func() func(a, b T) int {
		return func(a, b T) int {
			x, y := field(a), field(b)
			switch {
			case x == nil && y == nil:
				return 0
			case x == nil:
				return 1
			case y == nil:
				return -1
			}
			return cmp.Compare(*x, *y)
		}
	}}
}

// SortFloat orders by a floating point field.
func SortFloat[T any](name string, field func(T) float64, aliases ...string) SortKey[T] {
	return SortKey[T]{Name: name, Aliases: aliases, newCompare: func() func(a, b T) int {
		return func(a, b T) int { return cmp.Compare(field(a), field(b)) }
	}}
}

// SortBool orders by a flag, false first.
func SortBool[T any](name string, field func(T) bool, aliases ...string) SortKey[T] {
	return SortKey[T]{Name: name, Aliases: aliases, newCompare: func() func(a, b T) int {
		return func(a, b T) int { return cmp.Compare(boolRank(field(a)), boolRank(field(b))) }
	}}
}

// SortTime orders by a timestamp.
func SortTime[T any](name string, field func(T) time.Time, aliases ...string) SortKey[T] {
	return SortKey[T]{Name: name, Aliases: aliases, newCompare: func() func(a, b T) int {
		return func(a, b T) int { return field(a).Compare(field(b)) }
	}}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
