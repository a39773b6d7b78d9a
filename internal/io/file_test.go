package ioutils

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Song: Part 1/2", "Song_ Part 1_2"},
		{"Track...", "Track"},
		{"Name   with  spaces", "Name with spaces"},
		{"demoUser_wallpapers.zip", "demoUser_wallpapers.zip"},
		{"file<with>brackets.jpg", "file_with_brackets.jpg"},
		{"file|with|pipes.jpg", "file_with_pipes.jpg"},
		{"file?with*wildcards.jpg", "file_with_wildcards.jpg"},
		{"file\"with\"quotes.jpg", "file_with_quotes.jpg"},
		{"back\\slash", "back_slash"},
		{"trailing spaces   ", "trailing spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	size, err := WriteFileAtomic(context.Background(), path, func(w io.Writer) error {
		_, err := io.WriteString(w, "wallpaper")
		return err
	})
	if err != nil {
		t.Fatalf("WriteFileAtomic() failed: %v", err)
	}
	if size != int64(len("wallpaper")) {
		t.Errorf("size = %d, want %d", size, len("wallpaper"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "wallpaper" {
		t.Errorf("content = %q, want %q", data, "wallpaper")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestWriteFileAtomic_WriterError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	boom := errors.New("boom")

	_, err := WriteFileAtomic(context.Background(), path, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WriteFileAtomic() error = %v, want %v", err, boom)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("target file should not exist after a failed write")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("temporary file left behind: %d entries", len(entries))
	}
}

func TestWriteFileAtomic_ConcurrentSamePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "same.txt")

	var wg sync.WaitGroup
	for _, content := range []string{strings.Repeat("a", 4096), strings.Repeat("b", 4096)} {
		wg.Add(1)
		go func(content string) {
			defer wg.Done()
			WriteFileAtomic(context.Background(), path, func(w io.Writer) error {
				_, err := io.WriteString(w, content)
				return err
			})
		}(content)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if s := string(data); s != strings.Repeat("a", 4096) && s != strings.Repeat("b", 4096) {
		t.Error("file content is interleaved")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("archive"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyFile() failed: %v", err)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "archive" {
		t.Errorf("copied content = %q, want %q", data, "archive")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := CopyFile(ctx, src, dst); !errors.Is(err, context.Canceled) {
		t.Errorf("CopyFile() with cancelled context = %v, want context.Canceled", err)
	}
}

func TestNewScratchDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "scratch")

	dir, id, err := NewScratchDir(root)
	if err != nil {
		t.Fatalf("NewScratchDir() failed: %v", err)
	}
	if filepath.Dir(dir) != root {
		t.Errorf("dir %q is not under root %q", dir, root)
	}
	if !IsScratchDir(filepath.Base(dir)) {
		t.Errorf("IsScratchDir(%q) = false, want true", filepath.Base(dir))
	}
	if !strings.HasSuffix(dir, id) {
		t.Errorf("dir %q does not end with job id %q", dir, id)
	}

	other, _, err := NewScratchDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if other == dir {
		t.Error("NewScratchDir() returned the same directory twice")
	}
}

func TestIsScratchDir(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"job-0b6a5c1e-4f1a-4a7e-9a55-3c2f6f0b9e11", true},
		{"job-not-a-uuid", false},
		{"tmp123", false},
		{"0b6a5c1e-4f1a-4a7e-9a55-3c2f6f0b9e11", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsScratchDir(tt.name); got != tt.want {
				t.Errorf("IsScratchDir(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
