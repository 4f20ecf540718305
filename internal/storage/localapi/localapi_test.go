package localapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andrewblevins/taskbed/internal/storage"
)

func TestReadUnwrapsStateEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/data" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"state": {"schemaVersion": 3, "tasks": []}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	blob, err := c.Read(context.Background(), "local")
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(blob, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["schemaVersion"] != float64(3) {
		t.Errorf("got %v", doc)
	}
}

func TestReadNullBodyIsNotFound(t *testing.T) {
	for _, body := range []string{"null", "", `{"state": null}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		c := New(srv.URL, time.Second)
		_, err := c.Read(context.Background(), "local")
		srv.Close()
		if !storage.IsNotFound(err) {
			t.Errorf("body %q: err = %v, want ErrNotFound", body, err)
		}
	}
}

func TestReadServerDown(t *testing.T) {
	c := New("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := c.Read(context.Background(), "local")
	if err == nil {
		t.Fatal("expected an error")
	}
	if storage.IsNotFound(err) {
		t.Error("unreachable server is an error, not a miss")
	}
}

func TestWriteWrapsInEnvelope(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		received, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if err := c.Write(context.Background(), "local", []byte(`{"schemaVersion":3}`)); err != nil {
		t.Fatal(err)
	}

	var doc document
	if err := json.Unmarshal(received, &doc); err != nil {
		t.Fatal(err)
	}
	if string(doc.State) != `{"schemaVersion":3}` {
		t.Errorf("state = %s", doc.State)
	}
}

func TestWriteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if err := c.Write(context.Background(), "local", []byte(`{}`)); err == nil {
		t.Fatal("expected an error on 500")
	}
}
