package organizer

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestListFiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "b.jpg"), "")
	writeTestFile(t, filepath.Join(root, "a.png"), "")
	writeTestFile(t, filepath.Join(root, "sub", "c.gif"), "")

	flat, err := ListFiles(root, false)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if want := []string{filepath.Join(root, "a.png"), filepath.Join(root, "b.jpg")}; !reflect.DeepEqual(flat, want) {
		t.Errorf("non-recursive = %v, want %v", flat, want)
	}

	deep, err := ListFiles(root, true)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []string{filepath.Join(root, "a.png"), filepath.Join(root, "b.jpg"), filepath.Join(root, "sub", "c.gif")}
	if !reflect.DeepEqual(deep, want) {
		t.Errorf("recursive = %v, want %v", deep, want)
	}

	if _, err := ListFiles(filepath.Join(root, "missing"), false); err == nil {
		t.Errorf("expected an error for a missing directory")
	}
}

func TestListFilesFollowsSymlinkedRoot(t *testing.T) {
	target := t.TempDir()
	writeTestFile(t, filepath.Join(target, "a.jpg"), "")
	writeTestFile(t, filepath.Join(target, "sub", "b.jpg"), "")
	link := filepath.Join(t.TempDir(), "photos")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	flat, err := ListFiles(link, false)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if want := []string{filepath.Join(link, "a.jpg")}; !reflect.DeepEqual(flat, want) {
		t.Errorf("non-recursive = %v, want %v", flat, want)
	}

	deep, err := ListFiles(link, true)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []string{filepath.Join(link, "a.jpg"), filepath.Join(link, "sub", "b.jpg")}
	if !reflect.DeepEqual(deep, want) {
		t.Errorf("recursive = %v, want %v", deep, want)
	}
}
