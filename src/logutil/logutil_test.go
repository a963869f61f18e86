package logutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Notepad", "Notepad"},
		{"control chars", "Bad\x00Title\n", "Bad Title"},
		{"trimmed", "  padded  ", "padded"},
		{"unicode kept", "Café Ünïcode ★", "Café Ünïcode ★"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeForLog(tt.in); got != tt.want {
				t.Errorf("SanitizeForLog(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	long := strings.Repeat("x", maxLogField+10)
	if got := SanitizeForLog(long); len(got) != maxLogField+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("Expected truncated title, got %d chars", len(got))
	}
}

func TestRotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	for i := 1; i <= maxArchives+1; i++ {
		if err := os.WriteFile(path, []byte{byte('0' + i)}, 0644); err != nil {
			t.Fatal(err)
		}
		rotate(path)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected base log to be moved away, got %v", err)
	}
	newest, err := os.ReadFile(archiveName(path, 1))
	if err != nil || !bytes.Equal(newest, []byte{'0' + byte(maxArchives+1)}) {
		t.Errorf("Unexpected newest archive %q (err=%v)", newest, err)
	}
	if _, err := os.Stat(archiveName(path, maxArchives+1)); !os.IsNotExist(err) {
		t.Errorf("Expected at most %d archives", maxArchives)
	}
}

func TestRotatingWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.log")
	w, err := openRotating(path)
	if err != nil {
		t.Fatalf("openRotating failed: %v", err)
	}
	defer w.f.Close()

	if _, err := w.Write([]byte("one\n")); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("two\n")); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "one\ntwo\n" {
		t.Errorf("Unexpected log contents %q", data)
	}
}
