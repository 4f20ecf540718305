package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/flock"
)

func newTestServer(dataFile, lockFile string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := &server{
		dataFile: dataFile,
		lock:     flock.New(lockFile),
		hub:      newHub(),
	}
	router := gin.New()
	router.GET("/api/data", s.handleRead)
	router.POST("/api/data", s.handleWrite)
	return router
}

func TestReadMissingFileServesNull(t *testing.T) {
	dir := t.TempDir()
	router := newTestServer(filepath.Join(dir, "data.json"), filepath.Join(dir, "data.json.lock"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/data", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "null" {
		t.Errorf("body = %q, want null", got)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "data.json")
	router := newTestServer(dataFile, dataFile+".lock")

	doc := `{"state":{"schemaVersion":3,"tasks":[]}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/data", strings.NewReader(doc))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("write status = %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("read status = %d", w.Code)
	}
	if got := w.Body.String(); got != doc {
		t.Errorf("read back %q, want %q", got, doc)
	}

	onDisk, err := os.ReadFile(dataFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(onDisk) != doc {
		t.Errorf("file content = %q, want %q", onDisk, doc)
	}
}

func TestWriteInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	router := newTestServer(filepath.Join(dir, "data.json"), filepath.Join(dir, "data.json.lock"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/data", strings.NewReader(`{broken`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLockFailureIsAnError(t *testing.T) {
	// A lock file in a directory that does not exist cannot be acquired;
	// the handlers must report that instead of touching the data file
	// unlocked.
	dir := t.TempDir()
	router := newTestServer(filepath.Join(dir, "data.json"), filepath.Join(dir, "missing", "data.json.lock"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/data", strings.NewReader(`{"state":null}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("write status = %d, want 500", w.Code)
	}
	if _, err := os.Stat(filepath.Join(dir, "data.json")); !os.IsNotExist(err) {
		t.Error("data file written despite lock failure")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("read status = %d, want 500", w.Code)
	}
}
