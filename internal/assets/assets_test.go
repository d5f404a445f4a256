package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalSaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	path, err := store.Save("poster.pdf", strings.NewReader("artwork bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("saved outside upload dir: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "artwork bytes" {
		t.Fatalf("file content = %q", data)
	}

	if err := store.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file still present after Remove")
	}
	// Removing twice is not an error.
	if err := store.Remove(path); err != nil {
		t.Fatalf("Remove missing file: %v", err)
	}
}

func TestLocalSaveStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	path, err := store.Save("../../etc/passwd", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != filepath.Join(dir, "passwd") {
		t.Fatalf("path = %s, want basename inside %s", path, dir)
	}

	if _, err := store.Save("  ", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestLocalRemoveRefusesForeignPaths(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	outside := filepath.Join(t.TempDir(), "victim.txt")
	if err := os.WriteFile(outside, []byte("keep"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := store.Remove(outside); err == nil {
		t.Fatal("expected error removing path outside upload dir")
	}
	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("foreign file was touched: %v", err)
	}
}

func TestHTTPStoreUpload(t *testing.T) {
	var gotAuth string
	var gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != uploadPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotName = header.Filename
		json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn.example/abc123"})
	}))
	defer srv.Close()

	store := NewHTTP(srv.URL, "sk-test")
	ref, err := store.Upload(context.Background(), "poster.pdf", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if ref != "https://cdn.example/abc123" {
		t.Fatalf("ref = %q", ref)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotName != "poster.pdf" {
		t.Fatalf("uploaded name = %q", gotName)
	}
}

func TestHTTPStoreUploadRejectsEmptyReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	store := NewHTTP(srv.URL, "")
	if _, err := store.Upload(context.Background(), "a.pdf", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for empty reference")
	}
}

func TestHTTPStoreDeleteToleratesNotFound(t *testing.T) {
	var gotRef string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method %s", r.Method)
		}
		gotRef = r.URL.Query().Get("ref")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := NewHTTP(srv.URL, "")
	if err := store.Delete(context.Background(), "https://cdn.example/gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gotRef != "https://cdn.example/gone" {
		t.Fatalf("ref = %q", gotRef)
	}

	// Deleting a blank reference is a no-op.
	if err := store.Delete(context.Background(), ""); err != nil {
		t.Fatalf("Delete blank ref: %v", err)
	}
}

func TestDisabledRemote(t *testing.T) {
	store := NewRemote("", "ignored")
	if _, err := store.Upload(context.Background(), "a.pdf", strings.NewReader("x")); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Upload err = %v, want ErrUnavailable", err)
	}
	if err := store.Delete(context.Background(), "ref"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Delete err = %v, want ErrUnavailable", err)
	}
}
