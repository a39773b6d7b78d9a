package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/sirupsen/logrus"

	ioutils "github.com/Ziad0dev/lastfm-wallpaper/internal/io"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/model"
)

// DefaultLevel is the deflate level used when none is configured.
const DefaultLevel = 6

// Packer bundles wallpaper files into a single zip archive.
//
// Example usage:
//
//	p := archive.NewPacker(archive.DefaultLevel)
//	a, err := p.Pack(ctx, files, scratchDir, model.ArchiveName(username))
type Packer struct {
	level int
	now   func() time.Time
}

// NewPacker creates a Packer. Levels outside flate's range fall back to
// DefaultLevel.
func NewPacker(level int) *Packer {
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		level = DefaultLevel
	}
	return &Packer{level: level, now: time.Now}
}

// Pack is a shorthand for NewPacker(level).Pack.
func Pack(ctx context.Context, files []model.ProducedFile, dir, name string, level int) (*model.Archive, error) {
	return NewPacker(level).Pack(ctx, files, dir, name)
}

// Pack writes files into dir/name and removes each loose file once it has
// been added.
//
// Entry names are the files' base names, so the archive has no directory
// structure. A second file with an already used entry name is skipped.
// The archive is written atomically; on error no partial archive remains.
func (p *Packer) Pack(ctx context.Context, files []model.ProducedFile, dir, name string) (*model.Archive, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to archive")
	}

	path := filepath.Join(dir, name)
	packed := 0

	size, err := ioutils.WriteFileAtomic(ctx, path, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, p.level)
		})

		seen := make(map[string]bool, len(files))
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return err
			}

			entry := filepath.Base(f.Name)
			if seen[entry] {
				logrus.WithField("entry", entry).Warn("Skipping duplicate archive entry")
				continue
			}
			seen[entry] = true

			if err := addFile(zw, entry, f.Path, p.now()); err != nil {
				return fmt.Errorf("add %s: %w", entry, err)
			}
			packed++
		}

		return zw.Close()
	})
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			logrus.WithFields(logrus.Fields{"path": f.Path, "error": err}).Warn("Failed to remove packed file")
		}
	}

	return &model.Archive{
		Path:      path,
		Dir:       dir,
		Name:      name,
		Files:     packed,
		Size:      size,
		CreatedAt: p.now(),
	}, nil
}

func addFile(zw *zip.Writer, entry, path string, modified time.Time) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     entry,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return err
	}

	_, err = io.Copy(w, src)
	return err
}
