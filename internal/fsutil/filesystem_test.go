package fsutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestMemoryFileSystem_ReadWrite(t *testing.T) {
	fs := NewMemoryFileSystem()

	if err := fs.WriteFile("a/b/file.txt", []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := fs.ReadFile("a/b/file.txt")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q", data)
	}

	if _, err := fs.ReadFile("missing.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMemoryFileSystem_WriteCopiesData(t *testing.T) {
	fs := NewMemoryFileSystem()
	buf := []byte("original")
	if err := fs.WriteFile("f", buf, 0o644); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'

	data, err := fs.ReadFile("f")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original" {
		t.Errorf("stored data aliased caller buffer: %q", data)
	}
}

func TestMemoryFileSystem_ExistsAndDirs(t *testing.T) {
	fs := NewMemoryFileSystem()
	if err := fs.MkdirAll("x/y/z", 0o755); err != nil {
		t.Fatal(err)
	}

	for _, dir := range []string{"x", "x/y", "x/y/z"} {
		if !fs.Exists(dir) {
			t.Errorf("expected %s to exist", dir)
		}
	}
	if fs.Exists("x/other") {
		t.Error("unexpected path exists")
	}
}

func TestMemoryFileSystem_RemoveAll(t *testing.T) {
	fs := NewMemoryFileSystem()
	_ = fs.WriteFile("keep/file.txt", []byte("k"), 0o644)
	_ = fs.WriteFile("gone/file.txt", []byte("g"), 0o644)
	_ = fs.WriteFile("gone/deep/other.txt", []byte("g"), 0o644)
	_ = fs.MkdirAll("gone/deep", 0o755)

	if err := fs.RemoveAll("gone"); err != nil {
		t.Fatal(err)
	}
	if fs.Exists("gone/file.txt") || fs.Exists("gone/deep") {
		t.Error("RemoveAll left children behind")
	}
	if !fs.Exists("keep/file.txt") {
		t.Error("RemoveAll removed unrelated path")
	}
}

func TestMemoryFileSystem_CopyFile(t *testing.T) {
	fs := NewMemoryFileSystem()
	_ = fs.WriteFile("src/img.png", []byte("png"), 0o644)

	if err := fs.CopyFile("src/img.png", "dst/sub/img.png"); err != nil {
		t.Fatalf("copy: %v", err)
	}
	data, err := fs.ReadFile("dst/sub/img.png")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "png" {
		t.Errorf("got %q", data)
	}

	if err := fs.CopyFile("src/missing.png", "dst/x.png"); err == nil {
		t.Error("expected error copying missing file")
	}
}

func TestMemoryFileSystem_Files(t *testing.T) {
	fs := NewMemoryFileSystem()
	_ = fs.WriteFile("b.txt", nil, 0o644)
	_ = fs.WriteFile("a.txt", nil, 0o644)

	files := fs.Files()
	sort.Strings(files)
	if len(files) != 2 || files[0] != "a.txt" {
		t.Errorf("unexpected files: %v", files)
	}
}

func TestOSFileSystem_CopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "nested", "dst.bin")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	var fs OSFileSystem
	if err := fs.CopyFile(src, dst); err != nil {
		t.Fatalf("copy: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("got %q", data)
	}
}

func TestOSFileSystem_Exists(t *testing.T) {
	dir := t.TempDir()
	var fs OSFileSystem
	if fs.Exists(filepath.Join(dir, "absent")) {
		t.Error("absent path reported as existing")
	}
	path := filepath.Join(dir, "present")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !fs.Exists(path) {
		t.Error("present path reported missing")
	}
}
