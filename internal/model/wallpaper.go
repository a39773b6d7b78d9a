package model

import (
	"fmt"
	"time"

	ioutils "github.com/Ziad0dev/lastfm-wallpaper/internal/io"
)

// Resolution is a target wallpaper size in pixels.
type Resolution struct {
	Width  int
	Height int
}

// String returns the resolution as "WIDTHxHEIGHT".
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Valid reports whether both dimensions are positive.
func (r Resolution) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// WallpaperJob is one unit of work for the batch orchestrator.
//
// It exists only while its album is being processed and has no identity
// beyond that.
type WallpaperJob struct {
	Album      *Album
	Resolution Resolution

	// Path is where the encoded wallpaper will be written.
	Path string
}

// ProducedFile is a wallpaper written to the scratch directory.
//
// Produced files are consumed by the packager and deleted once they have
// been added to the archive.
type ProducedFile struct {
	// Name is the file name used inside the archive.
	Name string

	// Path is the absolute path on disk.
	Path string

	// Size is the encoded size in bytes.
	Size int64
}

// Archive is a zip file holding every wallpaper of one generation request.
type Archive struct {
	// Path is the absolute path of the zip file.
	Path string

	// Dir is the scratch directory that owns the archive. Deleting the
	// archive deletes this directory too.
	Dir string

	// Name is the download file name, e.g. "demoUser_wallpapers.zip".
	Name string

	// Files is the number of entries written to the archive.
	Files int

	// Size is the archive size in bytes.
	Size int64

	CreatedAt time.Time
}

// ArchiveName returns the download file name for a user's archive.
func ArchiveName(username string) string {
	return ioutils.SanitizeFileName(username) + "_wallpapers.zip"
}
