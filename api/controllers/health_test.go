package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dairylicious/dairyshop-backend/pkg/config"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func healthConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return cfg
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive(healthConfig())(rec, httptest.NewRequest("GET", "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if env := rec.Header().Get("X-Dairyshop-Env"); env != "test" {
		t.Fatalf("env header = %q", env)
	}
}

func TestHealthReadyAllUp(t *testing.T) {
	deps := map[string]pinger{
		"database": stubPinger{},
		"redis":    stubPinger{},
	}
	rec := httptest.NewRecorder()
	HealthReady(healthConfig(), testLogger(), deps)(rec, httptest.NewRequest("GET", "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if body.Data.Status != "ready" || body.Data.Checks["database"] != "up" || body.Data.Checks["redis"] != "up" {
		t.Fatalf("unexpected payload: %+v", body.Data)
	}
}

func TestHealthReadyDependencyDown(t *testing.T) {
	deps := map[string]pinger{
		"database": stubPinger{},
		"redis":    stubPinger{err: errors.New("connection refused")},
	}
	rec := httptest.NewRecorder()
	HealthReady(healthConfig(), testLogger(), deps)(rec, httptest.NewRequest("GET", "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if body.Error.Code != "DEPENDENCY_ERROR" {
		t.Fatalf("code = %q", body.Error.Code)
	}
	if body.Error.Details["redis"] != "down" || body.Error.Details["database"] != "up" {
		t.Fatalf("unexpected details: %v", body.Error.Details)
	}
}

func TestHealthReadySkipsNilDependencies(t *testing.T) {
	deps := map[string]pinger{
		"database": stubPinger{},
		"redis":    nil,
	}
	rec := httptest.NewRecorder()
	HealthReady(healthConfig(), testLogger(), deps)(rec, httptest.NewRequest("GET", "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Data struct {
			Checks map[string]string `json:"checks"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if body.Data.Checks["redis"] != "skipped" {
		t.Fatalf("unexpected checks: %v", body.Data.Checks)
	}
}
