// Package ioutils provides file system utilities.
//
// # File Operations
//
//	// Copy a file
//	err := ioutils.CopyFile(ctx, "/src/archive.zip", "/dst/archive.zip")
//
//	// Write a file atomically
//	size, err := ioutils.WriteFileAtomic(ctx, path, func(w io.Writer) error { ... })
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
// # Scratch Directories
//
// Every generation request works inside its own scratch directory:
//
//	dir, jobID, err := ioutils.NewScratchDir(root)
//	defer os.RemoveAll(dir) // or hand it over to the delivery registry
//
// # Filename Sanitization
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
package ioutils
