package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"blood test.pdf", "blood_test.pdf"},
		{"../../etc/passwd", "passwd"},
		{`..\..\windows\system32\config`, "config"},
		{"/tmp/x-ray.png", "x-ray.png"},
		{"..", ""},
		{".", ""},
		{"", ""},
		{"héllo wörld.png", "hllo_wrld.png"},
		{"...pdf", "pdf"},
		{"report<script>.pdf", "reportscript.pdf"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLocalStorageSaveAndResolve(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("creating storage: %v", err)
	}

	location, err := store.Save(context.Background(), strings.NewReader("hello"), "reports", "scan.png")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(location)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("saved content = %q, want hello", data)
	}
	if filepath.Base(filepath.Dir(location)) != "reports" {
		t.Errorf("file not placed under the reports folder: %s", location)
	}

	local := store.(*localStorage)
	resolved, err := local.Resolve("scan.png")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved != location {
		t.Errorf("resolve = %q, want %q", resolved, location)
	}
}

func TestLocalStorageResolveRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("creating storage: %v", err)
	}
	local := store.(*localStorage)

	for _, name := range []string{"..", "...", ""} {
		if _, err := local.Resolve(name); err == nil {
			t.Errorf("Resolve(%q) accepted an unsafe name", name)
		}
	}

	// Path components are stripped, never followed.
	resolved, err := local.Resolve("../../etc/passwd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(resolved, local.root) {
		t.Errorf("resolved path %q escapes storage root %q", resolved, local.root)
	}
}

func TestLocalStorageDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("creating storage: %v", err)
	}

	location, err := store.Save(context.Background(), strings.NewReader("x"), "reports", "old.pdf")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := store.Delete(context.Background(), location); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := os.Stat(location); !os.IsNotExist(err) {
		t.Error("file still present after delete")
	}
}
