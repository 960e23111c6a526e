package seedfs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestDirFS(t *testing.T) {
	root := t.TempDir()
	base, err := NewDirFS(root)
	if err != nil {
		t.Fatalf("NewDirFS: %v", err)
	}
	sfs, err := New(base, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := sfs.Mkdir("sub", 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	data := bytes.Repeat([]byte("on disk "), 1000)
	if err := sfs.WriteFile("sub/data.txt", data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	stored, err := os.ReadFile(filepath.Join(root, "sub", "data.txt"+Extension))
	if err != nil {
		t.Fatalf("container not on disk: %v", err)
	}
	if len(stored) >= len(data)/10 {
		t.Errorf("stored %d bytes for %d", len(stored), len(data))
	}

	got, err := sfs.ReadFile("/sub/data.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("read data does not match")
	}

	entries, err := sfs.ReadDir("sub")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "data.txt" {
		t.Errorf("entries = %v", entries)
	}
}

func TestDirFSConfinesPaths(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	if err := os.Mkdir(root, 0755); err != nil {
		t.Fatal(err)
	}
	base, err := NewDirFS(root)
	if err != nil {
		t.Fatalf("NewDirFS: %v", err)
	}

	f, err := base.OpenFile("../escape", os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	f.Close()

	if _, err := os.Stat(filepath.Join(root, "escape")); err != nil {
		t.Errorf("file not created inside root: %v", err)
	}
	if _, err := os.Stat(filepath.Join(parent, "escape")); err == nil {
		t.Error("file escaped the root")
	}
}

func TestNewDirFSErrors(t *testing.T) {
	if _, err := NewDirFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("NewDirFS accepted a missing directory")
	}
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewDirFS(file); err == nil {
		t.Error("NewDirFS accepted a regular file")
	}
}
