package wallpaper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	ioutils "github.com/Ziad0dev/lastfm-wallpaper/internal/io"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/model"
)

// Export copies the archive into outDir and removes its scratch directory.
// It returns the path of the copy.
func Export(ctx context.Context, a *model.Archive, outDir string) (string, error) {
	if err := ioutils.EnsureDir(outDir); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	dst := filepath.Join(outDir, a.Name)
	if err := ioutils.CopyFile(ctx, a.Path, dst); err != nil {
		return "", fmt.Errorf("copy archive: %w", err)
	}

	if a.Dir != "" {
		if err := os.RemoveAll(a.Dir); err != nil {
			logrus.WithFields(logrus.Fields{"dir": a.Dir, "error": err}).Warn("Failed to remove scratch directory")
		}
	}
	return dst, nil
}
