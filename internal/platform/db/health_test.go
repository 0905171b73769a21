package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func runHealth(t *testing.T, p Pinger, stats func() *PoolStats) (*httptest.ResponseRecorder, HealthReport) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := HealthHandler(p, stats)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var report HealthReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec, report
}

func TestHealthHandler_Healthy(t *testing.T) {
	rec, report := runHealth(t, fakePinger{}, func() *PoolStats {
		return &PoolStats{TotalConns: 3, MaxConns: 20}
	})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if report.Status != "healthy" {
		t.Errorf("expected healthy, got %s", report.Status)
	}
	if report.Pool == nil || report.Pool.MaxConns != 20 {
		t.Errorf("expected pool stats, got %+v", report.Pool)
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	rec, report := runHealth(t, fakePinger{err: errors.New("connection refused")}, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if report.Status != "unhealthy" || report.Error != "connection refused" {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.Pool != nil {
		t.Error("expected no pool stats when stats func is nil")
	}
}
