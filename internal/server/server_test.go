package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/medkadi/boutik-scrap/internal/catalog"
	"github.com/medkadi/boutik-scrap/internal/importer"
	"github.com/medkadi/boutik-scrap/internal/storage"
)

func setupServer(t *testing.T) (*Server, *catalog.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := catalog.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := catalog.NewStore(db)
	files := storage.NewLocal(t.TempDir(), "/storage")
	imp := importer.New(store, files, zap.NewNop())
	return New(imp, zap.NewNop()), store
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestImportEndpoint(t *testing.T) {
	srv, store := setupServer(t)

	body := `{
		"source_site": "boutik",
		"download_images": false,
		"products": [
			{"name": "Chaise en bois", "price": 129.90},
			{"name": ""}
		]
	}`
	rec := postJSON(t, srv.Handler(), "/api/products/import", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var sum importer.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Created != 1 || sum.Skipped != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if len(sum.Errors) != 1 || sum.Errors[0].Index != 1 {
		t.Fatalf("errors = %+v", sum.Errors)
	}

	p, err := store.FindBySlug(context.Background(), "chaise-en-bois")
	if err != nil || p == nil {
		t.Fatalf("product missing: %v", err)
	}
}

func TestImportEndpointDryRun(t *testing.T) {
	srv, store := setupServer(t)

	body := `{"dry_run": true, "products": [{"name": "Table"}]}`
	rec := postJSON(t, srv.Handler(), "/api/products/import", body)

	var sum importer.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatal(err)
	}
	if !sum.DryRun || sum.Created != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	n, err := store.CountProducts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("dry run persisted %d products", n)
	}
}

func TestImportEndpointRejectsMalformedJSON(t *testing.T) {
	srv, _ := setupServer(t)

	rec := postJSON(t, srv.Handler(), "/api/products/import", `{"products": [`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
