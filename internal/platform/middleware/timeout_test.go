package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func serveWithTimeout(timeout time.Duration, h echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(RequestTimeout(timeout))
	e.GET("/api/v1/consultations", h)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/consultations", nil))
	return rec
}

func TestRequestTimeout_CompletesWithinDeadline(t *testing.T) {
	rec := serveWithTimeout(5*time.Second, func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); !ok {
			t.Error("expected context deadline to be set")
		}
		return c.String(http.StatusOK, "ok")
	})
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRequestTimeout_ReturnsGatewayTimeout(t *testing.T) {
	rec := serveWithTimeout(20*time.Millisecond, func(c echo.Context) error {
		<-c.Request().Context().Done()
		return c.Request().Context().Err()
	})
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected status 504, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["message"] != timeoutMessage {
		t.Errorf("unexpected body %v", body)
	}
}

func TestRequestTimeout_HandlerFinishesBeforeResponse(t *testing.T) {
	var finished atomic.Bool
	rec := serveWithTimeout(10*time.Millisecond, func(c echo.Context) error {
		select {
		case <-c.Request().Context().Done():
		case <-time.After(60 * time.Millisecond):
		}
		time.Sleep(5 * time.Millisecond)
		finished.Store(true)
		return c.Request().Context().Err()
	})
	if !finished.Load() {
		t.Error("handler was still running after the middleware returned")
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected status 504, got %d", rec.Code)
	}
}

func TestRequestTimeout_OtherErrorsPassThrough(t *testing.T) {
	rec := serveWithTimeout(time.Second, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusConflict, "taken")
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
	if err := timeoutError(errors.New("boom"), echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), nil)); err.Error() != "boom" {
		t.Errorf("expected error to pass through, got %v", err)
	}
}

func TestRequestTimeout_ZeroDisables(t *testing.T) {
	rec := serveWithTimeout(0, func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); ok {
			t.Error("expected no deadline when timeout is zero")
		}
		return c.NoContent(http.StatusNoContent)
	})
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
