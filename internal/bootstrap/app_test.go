package bootstrap

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"resume2portfolio/internal/deployments"
	"resume2portfolio/internal/shared/config"
	"resume2portfolio/resume/enhance"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:                   "dev",
		LocalStoreDir:         t.TempDir(),
		CORSAllowOrigin:       []string{"http://localhost:3000"},
		SummaryEnhancer:       "placeholder",
		RateLimitDeployPerMin: 5,
		RateLimitUploadPerMin: 20,
	}
}

func TestBuildWiresInMemoryApp(t *testing.T) {
	app, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if app.DB != nil {
		t.Fatalf("expected no database")
	}
	if _, ok := app.DeploymentsRepo.(*deployments.MemoryRepo); !ok {
		t.Fatalf("expected in-memory deployment history, got %T", app.DeploymentsRepo)
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["message"] != "Resume2Portfolio Backend" {
		t.Fatalf("unexpected root body %v", body)
	}

	for _, path := range []string{"/health", "/templates", "/deployments", "/metrics"} {
		resp := httptest.NewRecorder()
		app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, resp.Code)
		}
	}
}

func TestBuildRejectsMissingTemplateDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.TemplateDir = t.TempDir() + "/missing"
	if _, err := Build(cfg); err == nil {
		t.Fatalf("expected error for missing template dir")
	}
}

func TestBuildEnhancerFallsBackWithoutKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.SummaryEnhancer = "openai"
	if _, ok := BuildEnhancer(cfg).(enhance.Placeholder); !ok {
		t.Fatalf("expected placeholder without an API key")
	}
}

func failMigrations(t *testing.T) {
	t.Helper()
	orig := runMigrations
	runMigrations = func(context.Context, *sql.DB) error { return errors.New("goose: dirty version") }
	t.Cleanup(func() { runMigrations = orig })
}

func TestMigrateOrReleaseClosesPoolOnFailure(t *testing.T) {
	failMigrations(t)
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	mock.ExpectClose()

	if got := migrateOrRelease(context.Background(), sqlDB, false); got != nil {
		t.Fatalf("expected nil db after failed migrations")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestMigrateOrReleaseKeepsSharedPool(t *testing.T) {
	failMigrations(t)
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if got := migrateOrRelease(context.Background(), sqlDB, true); got != nil {
		t.Fatalf("expected nil db after failed migrations")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestMigrateOrReleaseReturnsPoolOnSuccess(t *testing.T) {
	orig := runMigrations
	runMigrations = func(context.Context, *sql.DB) error { return nil }
	t.Cleanup(func() { runMigrations = orig })

	sqlDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if got := migrateOrRelease(context.Background(), sqlDB, false); got != sqlDB {
		t.Fatalf("expected the migrated pool back")
	}
}
