// Package ioutils provides file system utilities for lastfm-wallpaper.
//
// This package contains functions for:
//   - File copying
//   - Atomic file writing
//   - Filename sanitization
//   - Directory creation and scratch directories
//
// All functions that accept a context.Context respect cancellation before
// starting work, though file operations themselves are not interruptible.
package ioutils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// CopyFile copies a file from source to destination.
//
// The destination file is created with mode 0644 if it doesn't exist,
// or truncated if it does. The source file must exist and be readable.
//
// Example:
//
//	err := CopyFile(ctx, archive.Path, filepath.Join(outDir, archive.Name))
func CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}

// WriteFileAtomic streams write's output into a temporary file next to path
// and renames it into place, returning the number of bytes written.
//
// Concurrent writers targeting the same path never interleave: the last
// rename wins and readers never observe a partially written file.
//
// Example:
//
//	size, err := WriteFileAtomic(ctx, "/tmp/job/cover.jpg", func(w io.Writer) error {
//	    return jpeg.Encode(w, img, nil)
//	})
func WriteFileAtomic(ctx context.Context, path string, write func(io.Writer) error) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()

	cw := &countingWriter{w: tmp}
	if err := write(cw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return 0, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, err
	}

	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots = regexp.MustCompile(`\.+$`)
	spaceRuns    = regexp.MustCompile(`\s+`)
)

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2")     // Returns "Song_ Part 1_2"
//	SanitizeFileName("Track...")           // Returns "Track"
//	SanitizeFileName("Name   with  spaces") // Returns "Name with spaces"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = spaceRuns.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// ScratchPrefix prefixes every scratch directory created by NewScratchDir.
const ScratchPrefix = "job-"

// NewScratchDir creates a fresh request-scoped directory under root and
// returns its path and job ID.
//
// The directory is named "job-<uuid>" so that sweeps can recognise it.
//
// Example:
//
//	dir, jobID, err := NewScratchDir(filepath.Join(os.TempDir(), "lastfm-wallpaper"))
//	// dir = "/tmp/lastfm-wallpaper/job-3f0c..."
func NewScratchDir(root string) (string, string, error) {
	if err := EnsureDir(root); err != nil {
		return "", "", fmt.Errorf("create scratch root %s: %w", root, err)
	}

	id := uuid.NewString()
	dir := filepath.Join(root, ScratchPrefix+id)
	if err := os.Mkdir(dir, 0700); err != nil {
		return "", "", fmt.Errorf("create scratch directory %s: %w", dir, err)
	}

	return dir, id, nil
}

// IsScratchDir reports whether name looks like a directory made by NewScratchDir.
func IsScratchDir(name string) bool {
	id, ok := strings.CutPrefix(name, ScratchPrefix)
	if !ok {
		return false
	}
	return uuid.Validate(id) == nil
}
