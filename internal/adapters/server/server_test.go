package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hylla/leadflow/internal/adapters/server/common"
	"github.com/hylla/leadflow/internal/adapters/storage/memory"
	"github.com/hylla/leadflow/internal/app"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Info(msg string, _ ...any) {
	l.lines = append(l.lines, msg)
}

func newLeads(t *testing.T) common.LeadService {
	t.Helper()
	svc := app.NewService(memory.New(), func() string { return "3" }, time.Now, app.ServiceConfig{})
	if _, err := svc.EnsureSeed(context.Background(), app.DefaultSeed()); err != nil {
		t.Fatalf("EnsureSeed() error = %v", err)
	}
	return common.NewAppServiceAdapter(svc, nil)
}

func TestNormalizeConfig(t *testing.T) {
	cfg, err := normalizeConfig(Config{APIEndpoint: "api/v2/", MCPEndpoint: " ", AllowedOrigins: []string{" ", "http://x"}})
	if err != nil {
		t.Fatalf("normalizeConfig() error = %v", err)
	}
	if cfg.HTTPBind != defaultBindAddress || cfg.APIEndpoint != "/api/v2" || cfg.MCPEndpoint != "/mcp" {
		t.Fatalf("unexpected config %#v", cfg)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.ServerName != "leadflow" || cfg.ServerVersion != "dev" {
		t.Fatalf("unexpected defaults %#v", cfg)
	}
	if _, err := normalizeConfig(Config{APIEndpoint: "/x", MCPEndpoint: "x/"}); err == nil {
		t.Fatal("expected collision error")
	}
	if _, err := normalizeConfig(Config{APIEndpoint: "/healthz"}); err == nil {
		t.Fatal("expected reserved endpoint error")
	}
}

func TestNewHandlerRoutes(t *testing.T) {
	logger := &recordingLogger{}
	handler, _, err := NewHandler(Config{AllowedOrigins: []string{"http://localhost:3000"}}, Dependencies{Leads: newLeads(t), Logger: logger})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	for _, path := range []string{"/healthz", "/readyz", "/api/v1/board", "/api/v1/leads", "/api/v1/nav"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/leads/2/move", strings.NewReader(`{"status":"won"}`)))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"applied":true`) {
		t.Fatalf("move status = %d body = %s", rec.Code, rec.Body.String())
	}

	preflight := httptest.NewRequest(http.MethodOptions, "/api/v1/leads", nil)
	preflight.Header.Set("Origin", "http://localhost:3000")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, preflight)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}

	if len(logger.lines) == 0 {
		t.Fatal("expected request log lines")
	}
}

func TestReadyzReportsUnavailable(t *testing.T) {
	handler, _, err := NewHandler(Config{}, Dependencies{
		Leads: newLeads(t),
		Ready: func(context.Context) error { return errors.New("db down") },
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestNewHandlerRequiresLeads(t *testing.T) {
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatal("expected missing dependency error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{HTTPBind: addr}, Dependencies{Leads: newLeads(t)})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
