package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"evidentia/internal/evidence/bootstrap"
	"evidentia/internal/platform/config"
	"evidentia/pkg/domain"
	"evidentia/pkg/testutil"
)

func TestRouter(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	components, err := bootstrap.Build(context.Background(), config.Defaults(), log, reg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { _ = components.Close() })
	router := newRouter(components, log, reg)

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	testutil.Given(t, "the evidentia router over a memory store", func(t *testing.T) {
		testutil.When(t, "probing health and readiness", func(t *testing.T) {
			testutil.Then(t, "both report OK", func(t *testing.T) {
				for _, path := range []string{"/healthz", "/readyz"} {
					if rec := serve(http.MethodGet, path, ""); rec.Code != http.StatusOK {
						t.Fatalf("%s: expected %d, got %d", path, http.StatusOK, rec.Code)
					}
				}
			})
		})

		profile := domain.NewProfileID()
		today := domain.DateOf(time.Now()).String()

		testutil.When(t, "capturing a record", func(t *testing.T) {
			rec := serve(http.MethodPost, testutil.ProfilePath(profile, "records"),
				`{"logical_date":"`+today+`","payload":{"record_type":"daily_log"}}`)

			testutil.Then(t, "it is created as a draft", func(t *testing.T) {
				if rec.Code != http.StatusCreated {
					t.Fatalf("expected %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
				}
				var body map[string]json.RawMessage
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				var id string
				if err := json.Unmarshal(body["id"], &id); err != nil || id == "" {
					t.Fatalf("response has no record id: %s", rec.Body.String())
				}

				testutil.And(t, "it can be read back through the profile", func(t *testing.T) {
					got := serve(http.MethodGet, testutil.ProfilePath(profile, "records", id), "")
					if got.Code != http.StatusOK {
						t.Fatalf("expected %d, got %d: %s", http.StatusOK, got.Code, got.Body.String())
					}
				})
			})
		})

		testutil.When(t, "scraping metrics", func(t *testing.T) {
			rec := serve(http.MethodGet, "/metrics", "")

			testutil.Then(t, "request and evidence series are exposed", func(t *testing.T) {
				if rec.Code != http.StatusOK {
					t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
				}
				for _, name := range []string{"evidentia_http_requests_total", "evidentia_operations_total"} {
					if !strings.Contains(rec.Body.String(), name) {
						t.Fatalf("metrics missing %s", name)
					}
				}
			})
		})

		testutil.When(t, "calling an unknown route", func(t *testing.T) {
			testutil.Then(t, "it responds not found", func(t *testing.T) {
				if rec := serve(http.MethodGet, "/auth/authorize", ""); rec.Code != http.StatusNotFound {
					t.Fatalf("expected %d, got %d", http.StatusNotFound, rec.Code)
				}
			})
		})
	})
}
