package organization

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Lucklimp/eva-2/internal/platform/events"
	"github.com/Lucklimp/eva-2/internal/platform/openapi"
	"github.com/Lucklimp/eva-2/internal/platform/web"
)

type recordingPublisher struct {
	changes []events.Change
}

func (p *recordingPublisher) Publish(_ context.Context, ch events.Change) {
	p.changes = append(p.changes, ch)
}

type testServer struct {
	e     *echo.Echo
	depts *mockDeptRepo
	specs *mockSpecialtyRepo
	pub   *recordingPublisher
	docs  *openapi.Generator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	depts := newMockDeptRepo()
	specs := newMockSpecialtyRepo()
	depts.specialties = specs
	pub := &recordingPublisher{}

	ui, err := web.New(zerolog.Nop())
	if err != nil {
		t.Fatalf("web.New: %v", err)
	}
	e := echo.New()
	e.Renderer = ui
	docs := openapi.NewGenerator("test", "1", "/api/v1")

	h := NewHandler(NewDepartmentService(depts), NewSpecialtyService(specs, depts), pub)
	h.RegisterRoutes(e.Group("/api/v1"), e.Group(""), ui, docs)
	return &testServer{e: e, depts: depts, specs: specs, pub: pub, docs: docs}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

type departmentPage struct {
	Data  []Department `json:"data"`
	Total int          `json:"total"`
}

func TestHandler_DepartmentsDefaultOrder(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"Pediatría", "Cardiología", "Neurología"} {
		rec := s.do(http.MethodPost, "/api/v1/departments", `{"name":"`+name+`"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %s: expected 201, got %d: %s", name, rec.Code, rec.Body.String())
		}
	}

	rec := s.do(http.MethodGet, "/api/v1/departments", "")
	var page departmentPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 3 || page.Data[0].Name != "Cardiología" || page.Data[2].Name != "Pediatría" {
		t.Errorf("unexpected page: %+v", page)
	}

	rec = s.do(http.MethodGet, "/api/v1/departments?ordering=-nombre", "")
	page = departmentPage{}
	_ = json.Unmarshal(rec.Body.Bytes(), &page)
	if page.Data[0].Name != "Pediatría" {
		t.Errorf("expected descending order, got %+v", page.Data)
	}

	if len(s.pub.changes) != 3 || s.pub.changes[0].Entity != "department" || s.pub.changes[0].Action != events.ActionCreated {
		t.Errorf("unexpected change events: %+v", s.pub.changes)
	}
}

func TestHandler_DuplicateDepartment(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/v1/departments", `{"name":"Urgencias"}`)
	rec := s.do(http.MethodPost, "/api/v1/departments", `{"name":"Urgencias"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestHandler_SpecialtyJoinedNameAndNested(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_ = s.depts.Create(ctx, &Department{Name: "Medicina"})

	rec := s.do(http.MethodPost, "/api/v1/specialties", `{"name":"Cardiología","department":1,"department_name":"ignored"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodGet, "/api/v1/departments/1/specialties", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Cardiología") {
		t.Errorf("unexpected nested listing: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodGet, "/api/v1/departments/9/specialties", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "department not found") {
		t.Errorf("expected department 404, got %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodPost, "/api/v1/specialties", `{"name":"Oncología","department":5}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "does not exist") {
		t.Errorf("expected 400 for missing department, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_ProtectedSpecialtyDelete(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_ = s.specs.Create(ctx, &Specialty{Name: "Pediatría"})
	s.specs.referenced[1] = true

	rec := s.do(http.MethodDelete, "/api/v1/specialties/1", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
	if len(s.pub.changes) != 0 {
		t.Errorf("expected no change events, got %+v", s.pub.changes)
	}
}

func TestHandler_HTMLPages(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_ = s.depts.Create(ctx, &Department{Name: "Medicina"})

	rec := s.do(http.MethodGet, "/specialties/new", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Guardar Especialidad") || !strings.Contains(body, ">Medicina</option>") {
		t.Errorf("expected specialty form with department choices, got %s", body)
	}

	rec = s.do(http.MethodGet, "/departments/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Medicina") {
		t.Errorf("unexpected department list: %d", rec.Code)
	}
}

func TestHandler_Documented(t *testing.T) {
	s := newTestServer(t)
	paths := s.docs.GenerateSpec()["paths"].(map[string]interface{})
	for _, p := range []string{"/departments", "/specialties/{id}", "/departments/{id}/specialties"} {
		if _, ok := paths[p]; !ok {
			t.Errorf("expected documented path %s", p)
		}
	}
}
