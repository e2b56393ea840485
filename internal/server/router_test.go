package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"opsboard/internal/services"
	"opsboard/internal/store"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	st, err := store.NewSQLStore(db, log)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	tracker, err := services.New(st, log)
	if err != nil {
		t.Fatalf("tracker: %v", err)
	}
	return New(tracker, st, log)
}

func TestHealthEndpoints(t *testing.T) {
	h := setupRouter(t)
	for _, path := range []string{"/health", "/healthz"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, w.Code)
		}
	}
}

func TestRoutesMounted(t *testing.T) {
	h := setupRouter(t)
	for _, path := range []string{"/api/sales", "/api/collections", "/api/assignments", "/api/dashboard", "/api/tasks"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, w.Code)
		}
		if !strings.Contains(w.Header().Get("Content-Type"), "application/json") {
			t.Errorf("%s: expected JSON response, got %q", path, w.Header().Get("Content-Type"))
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	h := setupRouter(t)
	r := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
