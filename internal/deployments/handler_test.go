package deployments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func setupRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := NewService(NewMemoryRepo())
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group(""))
	return router, svc
}

func TestGetDeployment(t *testing.T) {
	router, svc := setupRouter(t)
	d, err := svc.Record(context.Background(), Deployment{RepoName: "portfolio-ada-1", Status: StatusFailed, Stage: "create_project"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/deployments/"+d.ID, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var got Deployment
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != d.ID || got.Stage != "create_project" {
		t.Fatalf("unexpected deployment %+v", got)
	}
}

func TestGetDeploymentNotFound(t *testing.T) {
	router, _ := setupRouter(t)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/deployments/nope", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestGetDeploymentMalformedIDSkipsPostgres(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	router := gin.New()
	NewHandler(NewService(&PGRepo{DB: db})).RegisterRoutes(router.Group(""))

	for _, id := range []string{"not-a-uuid", "1234", "dep-1"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/deployments/"+id, nil))
		if resp.Code != http.StatusNotFound {
			t.Fatalf("expected status 404 for %q, got %d: %s", id, resp.Code, resp.Body.String())
		}
	}
	// No query expectations were set, so any GetByID call would fail here.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestGetDeploymentUnknownUUIDQueriesPostgres(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	id := "3f1c9d2e-7a4b-4c1d-9e2f-0a1b2c3d4e5f"
	mock.ExpectQuery("SELECT (.+) FROM deployments WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(pgColumns))

	router := gin.New()
	NewHandler(NewService(&PGRepo{DB: db})).RegisterRoutes(router.Group(""))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/deployments/"+id, nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", resp.Code, resp.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestListDeployments(t *testing.T) {
	router, svc := setupRouter(t)
	for _, name := range []string{"a", "b"} {
		if _, err := svc.Record(context.Background(), Deployment{RepoName: name}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/deployments?limit=1", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var body struct {
		Items []Deployment `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(body.Items))
	}
}
