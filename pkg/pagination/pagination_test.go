package pagination

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestFromContext(t *testing.T) {
	tests := []struct {
		query  string
		limit  int
		offset int
	}{
		{"", DefaultLimit, 0},
		{"limit=50&offset=10", 50, 10},
		{"limit=500", MaxLimit, 0},
		{"limit=0&offset=-5", DefaultLimit, 0},
		{"limit=abc&offset=xyz", DefaultLimit, 0},
		{"name=ana&limit=5&offset=5", 5, 5},
	}
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/patients?"+tt.query, nil)
			p := FromContext(e.NewContext(req, httptest.NewRecorder()))
			if p.Limit != tt.limit || p.Offset != tt.offset {
				t.Errorf("got %+v, want limit %d offset %d", p, tt.limit, tt.offset)
			}
		})
	}
}

func TestFromContextAll(t *testing.T) {
	e := echo.New()
	get := func(query string, total int) Params {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/medications?"+query, nil)
		return FromContextAll(e.NewContext(req, httptest.NewRecorder()), total)
	}
	if p := get("", 250); p.Limit != 250 || p.Offset != 0 || p.HasNext(250) {
		t.Errorf("expected the whole collection, got %+v", p)
	}
	if p := get("offset=240", 250); p.Limit != 10 || p.HasNext(250) {
		t.Errorf("expected the tail after offset, got %+v", p)
	}
	if p := get("offset=300", 250); p.Limit != 0 {
		t.Errorf("expected an empty window past the end, got %+v", p)
	}
	if p := get("limit=5", 250); p.Limit != 5 || !p.HasNext(250) {
		t.Errorf("expected an explicit limit to be kept, got %+v", p)
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	if r := NewResponse([]string{"a", "b", "c"}, 10, 3, 0); !r.HasMore || r.Total != 10 {
		t.Errorf("expected more results after the first page, got %+v", r)
	}
	if r := NewResponse([]string{"a", "b", "c"}, 3, 3, 0); r.HasMore {
		t.Errorf("expected a single page, got %+v", r)
	}
}

func TestParams_Navigation(t *testing.T) {
	tests := []struct {
		params   Params
		total    int
		hasNext  bool
		hasPrev  bool
		next     int
		previous int
	}{
		{Params{Limit: 10, Offset: 0}, 25, true, false, 10, 0},
		{Params{Limit: 10, Offset: 15}, 25, false, true, 25, 5},
		{Params{Limit: 10, Offset: 30}, 25, false, true, 40, 20},
		{Params{Limit: 10, Offset: 0}, 0, false, false, 10, 0},
		{Params{Limit: 10, Offset: 5}, 8, false, true, 15, 0},
	}
	for _, tt := range tests {
		p := tt.params
		if got := p.HasNext(tt.total); got != tt.hasNext {
			t.Errorf("%+v total %d: HasNext() = %v", p, tt.total, got)
		}
		if got := p.HasPrevious(); got != tt.hasPrev {
			t.Errorf("%+v: HasPrevious() = %v", p, got)
		}
		if got := p.NextOffset(); got != tt.next {
			t.Errorf("%+v: NextOffset() = %d, want %d", p, got, tt.next)
		}
		if got := p.PreviousOffset(); got != tt.previous {
			t.Errorf("%+v: PreviousOffset() = %d, want %d", p, got, tt.previous)
		}
	}
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name   string
		params Params
		want   []int
	}{
		{"first", Params{Limit: 2, Offset: 0}, []int{1, 2}},
		{"partial last", Params{Limit: 2, Offset: 4}, []int{5}},
		{"past end", Params{Limit: 2, Offset: 9}, []int{}},
		{"whole", Params{Limit: 10, Offset: 0}, []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Page(items, tt.params)
			if len(got) != len(tt.want) {
				t.Fatalf("Page() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Page() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestResponse_WithLinks(t *testing.T) {
	u, _ := url.Parse("/api/v1/patients?active=true&limit=10&offset=10")
	r := NewResponse(nil, 25, 10, 10).WithLinks(u)

	if r.Next != "/api/v1/patients?active=true&limit=10&offset=20" {
		t.Errorf("unexpected next link %q", r.Next)
	}
	if r.Previous != "/api/v1/patients?active=true&limit=10&offset=0" {
		t.Errorf("unexpected previous link %q", r.Previous)
	}

	last := NewResponse(nil, 25, 10, 20).WithLinks(u)
	if last.Next != "" {
		t.Errorf("expected no next link on last page, got %q", last.Next)
	}

	first := NewResponse(nil, 25, 10, 0).WithLinks(u)
	if first.Previous != "" {
		t.Errorf("expected no previous link on first page, got %q", first.Previous)
	}
}
