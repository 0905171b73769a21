// Package listing narrows and orders in-memory record collections from
// query-string parameters.
package listing

import (
	"net/url"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// OrderingParam is the query parameter holding the ordering expression.
const OrderingParam = "ordering"

// Pipeline filters and orders records of one entity type. It holds no mutable
// state and is safe for concurrent use.
type Pipeline[T any] struct {
	filters      []Filter[T]
	keys         []SortKey[T]
	byName       map[string]int
	defaultOrder string
}

// New builds a pipeline. defaultOrder is an ordering expression applied when a
// request names no known sort field; empty keeps the base order.
func New[T any](filters []Filter[T], keys []SortKey[T], defaultOrder string) *Pipeline[T] {
	p := &Pipeline[T]{
		filters:      filters,
		keys:         keys,
		byName:       make(map[string]int, len(keys)),
		defaultOrder: defaultOrder,
	}
	for i, k := range keys {
		p.byName[k.Name] = i
		for _, alias := range k.Aliases {
			p.byName[alias] = i
		}
	}
	return p
}

// Apply returns the records of base that satisfy every recognized filter in params,
// ordered by params["ordering"] or the default ordering. base is never modified.
// Unrecognized parameters and values that cannot be interpreted are ignored.
func (p *Pipeline[T]) Apply(base []T, params map[string]string) []T {
	preds := p.predicates(params)
	out := lo.Filter(base, func(rec T, _ int) bool {
		for _, pred := range preds {
			if !pred(rec) {
				return false
			}
		}
		return true
	})

	if compare := p.comparator(params[OrderingParam]); compare != nil {
		slices.SortStableFunc(out, compare)
	}
	return out
}

// Params lists the filter parameter names the pipeline recognizes.
func (p *Pipeline[T]) Params() []string {
	return lo.Uniq(lo.Map(p.filters, func(f Filter[T], _ int) string { return f.Param }))
}

// SortFields lists the public names of the fields records can be ordered by.
func (p *Pipeline[T]) SortFields() []string {
	return lo.Map(p.keys, func(k SortKey[T], _ int) string { return k.Name })
}

// DefaultOrder returns the ordering used when a request names no known field.
func (p *Pipeline[T]) DefaultOrder() string {
	return p.defaultOrder
}

func (p *Pipeline[T]) predicates(params map[string]string) []func(T) bool {
	var preds []func(T) bool
	for _, f := range p.filters {
		value, ok := params[f.Param]
		if !ok {
			continue
		}
		if pred, ok := f.compile(value); ok {
			preds = append(preds, pred)
		}
	}
	return preds
}

type term[T any] struct {
	key  SortKey[T]
	desc bool
}

// resolve parses a comma-separated ordering expression, dropping unknown fields.
func (p *Pipeline[T]) resolve(expr string) []term[T] {
	var terms []term[T]
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		idx, ok := p.byName[name]
		if !ok {
			continue
		}
		terms = append(terms, term[T]{key: p.keys[idx], desc: desc})
	}
	return terms
}

func (p *Pipeline[T]) comparator(expr string) func(a, b T) int {
	terms := p.resolve(expr)
	if len(terms) == 0 {
		terms = p.resolve(p.defaultOrder)
	}
	if len(terms) == 0 {
		return nil
	}

	compares := make([]func(a, b T) int, len(terms))
	for i, t := range terms {
		compare := t.key.newCompare()
		if t.desc {
			compares[i] = func(a, b T) int { return compare(b, a) }
		} else {
			compares[i] = compare
		}
	}
	return func(a, b T) int {
		for _, compare := range compares {
			if c := compare(a, b); c != 0 {
				return c
			}
		}
		return 0
	}
}

// ParamsFromValues flattens query values into a parameter map. When a parameter
// repeats, the last value wins.
func ParamsFromValues(values url.Values) map[string]string {
	params := make(map[string]string, len(values))
	for name, vs := range values {
		if len(vs) > 0 {
			params[name] = vs[len(vs)-1]
		}
	}
	return params
}
