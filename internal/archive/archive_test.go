package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/Ziad0dev/lastfm-wallpaper/internal/model"
)

func writeFiles(t *testing.T, dir string, contents map[string]string) []model.ProducedFile {
	t.Helper()
	var files []model.ProducedFile
	for name, body := range contents {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		files = append(files, model.ProducedFile{Name: name, Path: path, Size: int64(len(body))})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files
}

func TestPacker_Pack(t *testing.T) {
	dir := t.TempDir()
	contents := map[string]string{
		"Radiohead - OK Computer.jpg":     strings.Repeat("a", 2048),
		"Boards of Canada - Geogaddi.jpg": strings.Repeat("b", 1024),
	}
	files := writeFiles(t, dir, contents)

	a, err := NewPacker(DefaultLevel).Pack(context.Background(), files, dir, "demoUser_wallpapers.zip")
	if err != nil {
		t.Fatalf("Pack() failed: %v", err)
	}

	if a.Files != 2 {
		t.Errorf("Files = %d, want 2", a.Files)
	}
	if a.Path != filepath.Join(dir, "demoUser_wallpapers.zip") {
		t.Errorf("Path = %q, want it under %q", a.Path, dir)
	}
	info, err := os.Stat(a.Path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != a.Size {
		t.Errorf("Size = %d, file is %d bytes", a.Size, info.Size())
	}

	zr, err := zip.OpenReader(a.Path)
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}
	defer zr.Close()

	if len(zr.File) != len(contents) {
		t.Fatalf("archive has %d entries, want %d", len(zr.File), len(contents))
	}
	for _, f := range zr.File {
		want, ok := contents[f.Name]
		if !ok {
			t.Errorf("unexpected entry %q", f.Name)
			continue
		}
		if f.Method != zip.Deflate {
			t.Errorf("entry %q method = %d, want deflate", f.Name, f.Method)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		got, _ := io.ReadAll(rc)
		rc.Close()
		if string(got) != want {
			t.Errorf("entry %q content mismatch", f.Name)
		}
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "demoUser_wallpapers.zip" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("scratch dir holds %v, want only the archive", names)
	}
}

func TestPacker_SkipsDuplicateEntries(t *testing.T) {
	dir := t.TempDir()
	files := writeFiles(t, dir, map[string]string{"a.jpg": "one"})
	files = append(files, files[0])

	a, err := NewPacker(DefaultLevel).Pack(context.Background(), files, dir, "out.zip")
	if err != nil {
		t.Fatalf("Pack() failed: %v", err)
	}
	if a.Files != 1 {
		t.Errorf("Files = %d, want 1", a.Files)
	}
}

func TestPacker_NoFiles(t *testing.T) {
	if _, err := NewPacker(DefaultLevel).Pack(context.Background(), nil, t.TempDir(), "out.zip"); err == nil {
		t.Error("Pack() with no files expected error")
	}
}

func TestPacker_MissingFileLeavesNoArchive(t *testing.T) {
	dir := t.TempDir()
	files := []model.ProducedFile{{Name: "gone.jpg", Path: filepath.Join(dir, "gone.jpg")}}

	if _, err := NewPacker(DefaultLevel).Pack(context.Background(), files, dir, "out.zip"); err == nil {
		t.Fatal("Pack() expected error for a missing file")
	}
	if _, err := os.Stat(filepath.Join(dir, "out.zip")); !os.IsNotExist(err) {
		t.Error("partial archive left behind")
	}
}

func TestNewPacker_InvalidLevel(t *testing.T) {
	if p := NewPacker(42); p.level != DefaultLevel {
		t.Errorf("level = %d, want %d", p.level, DefaultLevel)
	}
	if p := NewPacker(9); p.level != 9 {
		t.Errorf("level = %d, want 9", p.level)
	}
}

func TestPack_StoreLevel(t *testing.T) {
	dir := t.TempDir()
	files := writeFiles(t, dir, map[string]string{"a.png": strings.Repeat("z", 4096)})

	a, err := Pack(context.Background(), files, dir, "u_wallpapers.zip", 0)
	if err != nil {
		t.Fatalf("Pack() failed: %v", err)
	}
	// Level 0 stores the data inside deflate blocks, so the archive cannot
	// be smaller than its content.
	if a.Size < 4096 {
		t.Errorf("Size = %d, want at least 4096 with level 0", a.Size)
	}
}
