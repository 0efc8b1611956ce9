package fileutil_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aircheck/internal/fileutil"
)

func TestWriteFileAtomicCreatesParents(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "a", "b", "out.txt")

	if err := fileutil.WriteFileAtomic(target, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestWriteFileAtomicReplacesAndLeavesNoTemp(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "out.txt")

	if err := fileutil.WriteFileAtomic(target, []byte("one"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := fileutil.WriteFileAtomic(target, []byte("two"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "two" {
		t.Fatalf("expected replacement, got %q", data)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}
