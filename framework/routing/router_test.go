package routing_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	gohttp "github.com/km-arc/go-opengenerics/framework/http"
	"github.com/km-arc/go-opengenerics/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func do(t *testing.T, router *routing.Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// ── HTTP verbs ────────────────────────────────────────────────────────────────

func TestRouter_Get(t *testing.T) {
	r := routing.New(nil)
	r.Get("/health", okHandler)

	rr := do(t, r, http.MethodGet, "/health")
	if rr.Code != http.StatusOK {
		t.Errorf("GET /health: got %d want 200", rr.Code)
	}
}

func TestRouter_Post(t *testing.T) {
	r := routing.New(nil)
	r.Post("/match", okHandler)

	rr := do(t, r, http.MethodPost, "/match")
	if rr.Code != http.StatusOK {
		t.Errorf("POST /match: got %d want 200", rr.Code)
	}
}

// ── Fallbacks ────────────────────────────────────────────────────────────────

func TestRouter_NotFound(t *testing.T) {
	r := routing.New(nil)

	rr := do(t, r, http.MethodGet, "/does-not-exist")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] != "Not found." {
		t.Errorf("message: got %v", body["message"])
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := routing.New(nil)
	r.Post("/match", okHandler)

	rr := do(t, r, http.MethodGet, "/match")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
}

// ── Route params ─────────────────────────────────────────────────────────────

func TestRouter_Param(t *testing.T) {
	r := routing.New(nil)
	r.Get("/types/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := gohttp.NewRequest(req).RouteParam("name")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(name))
	})

	rr := do(t, r, http.MethodGet, "/types/IRepository")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
	if rr.Body.String() != "IRepository" {
		t.Errorf("got body %q want %q", rr.Body.String(), "IRepository")
	}
}

// ── Prefix / Group ───────────────────────────────────────────────────────────

func TestRouter_Prefix(t *testing.T) {
	r := routing.New(nil)
	r.Prefix("/api/v1", func(api *routing.Router) {
		api.Get("/types", okHandler)
	})

	rr := do(t, r, http.MethodGet, "/api/v1/types")
	if rr.Code != http.StatusOK {
		t.Errorf("GET /api/v1/types: got %d want 200", rr.Code)
	}

	rr2 := do(t, r, http.MethodGet, "/types")
	if rr2.Code != http.StatusNotFound {
		t.Errorf("GET /types: expected 404, got %d", rr2.Code)
	}
}

func TestRouter_Group_Middleware(t *testing.T) {
	called := false
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	r := routing.New(nil)
	r.Group(func(g *routing.Router) {
		g.Middleware(mw)
		g.Get("/guarded", okHandler)
	})

	do(t, r, http.MethodGet, "/guarded")
	if !called {
		t.Error("expected middleware to be called")
	}
}

// ── Middleware stack ─────────────────────────────────────────────────────────

func TestRouter_LogsRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := routing.New(zap.New(core))
	r.Get("/health", okHandler)

	do(t, r, http.MethodGet, "/health")

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/health" {
		t.Errorf("path: got %v", fields["path"])
	}
	if fields["request_id"] == "" {
		t.Error("request_id should be set by the RequestID middleware")
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	r := routing.New(nil)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rr := do(t, r, http.MethodGet, "/boom")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rr.Code)
	}
}

// ── Handler() returns http.Handler ───────────────────────────────────────────

func TestRouter_HandlerInterface(t *testing.T) {
	r := routing.New(nil)
	r.Get("/ping", okHandler)
	var _ http.Handler = r.Handler()
}
