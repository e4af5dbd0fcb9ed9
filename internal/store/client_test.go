package store

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_FullPath(t *testing.T) {
	tests := []struct {
		base string
		in   string
		want string
	}{
		{"", "data/a.txt", "data/a.txt"},
		{"", "/data/a.txt", "data/a.txt"},
		{"backups/host1", "data/a.txt", "backups/host1/data/a.txt"},
		{"backups/host1", "", "backups/host1"},
		{"backups/host1", ".", "backups/host1"},
		{"", "data/../etc/passwd", "etc/passwd"},
	}
	for _, tt := range tests {
		c := NewClient(ClientOptions{URL: "http://store", BasePath: tt.base})
		if got := c.fullPath(tt.in); got != tt.want {
			t.Errorf("fullPath(%q) with base %q = %q, want %q", tt.in, tt.base, got, tt.want)
		}
	}
}

func TestClient_RequestShape(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("path")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(statResponse{Exists: true, Size: 3})
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{URL: srv.URL + "/", BasePath: "base", Token: "secret"})
	info, err := c.Stat("sub/a.txt")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if gotPath != "/api/stat" {
		t.Errorf("endpoint = %q, want /api/stat", gotPath)
	}
	if gotQuery != "base/sub/a.txt" {
		t.Errorf("path query = %q, want base/sub/a.txt", gotQuery)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if info.Size != 3 || info.Name != "a.txt" {
		t.Errorf("info = %+v", info)
	}
}

func TestClient_StatMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Missing paths answer 200 with exists:false.
		json.NewEncoder(w).Encode(statResponse{Exists: false})
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{URL: srv.URL})
	if _, err := c.Stat("gone.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Stat on missing path = %v, want ErrNotFound", err)
	}
	exists, err := c.Exists("gone.txt")
	if err != nil {
		t.Fatalf("Exists must translate ErrNotFound, got %v", err)
	}
	if exists {
		t.Error("Exists = true for a missing path")
	}
}

func TestClient_ReadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{URL: srv.URL})
	if _, err := c.Read("gone.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read 404 = %v, want ErrNotFound", err)
	}
	if _, err := c.List("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("List 404 = %v, want ErrNotFound", err)
	}
}

func TestClient_WriteAndDeleteStatuses(t *testing.T) {
	var gotMethod string
	status := http.StatusCreated
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{URL: srv.URL})
	if err := c.Write("a.txt", []byte("data")); err != nil {
		t.Errorf("Write on 201 failed: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("Write used %s, want PUT", gotMethod)
	}

	status = http.StatusNoContent
	if err := c.Delete("a.txt"); err != nil {
		t.Errorf("Delete on 204 failed: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("Delete used %s, want POST", gotMethod)
	}

	status = http.StatusInternalServerError
	if err := c.Write("a.txt", []byte("data")); err == nil {
		t.Error("Write on 500 should fail")
	}
}

func TestClient_Unreachable(t *testing.T) {
	c := NewClient(ClientOptions{URL: "http://127.0.0.1:1"})
	if _, err := c.Stat("a.txt"); err == nil {
		t.Error("expected connection error")
	}
}
