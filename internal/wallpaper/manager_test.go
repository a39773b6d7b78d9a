package wallpaper

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/Ziad0dev/lastfm-wallpaper/internal/config"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/lastfm"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/model"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/resources"
)

type fakeCatalog struct {
	validation lastfm.Validation
	albums     []*model.Album

	gotPeriod lastfm.Period
	gotLimit  int
}

func (c *fakeCatalog) Validate(ctx context.Context, username string) lastfm.Validation {
	return c.validation
}

func (c *fakeCatalog) TopAlbums(ctx context.Context, username string, period lastfm.Period, limit int) []*model.Album {
	c.gotPeriod, c.gotLimit = period, limit
	return c.albums
}

// fakeFetcher serves a solid cover for every URL except those listed in fail.
// URLs listed in block wait for the context to end.
type fakeFetcher struct {
	fail  map[string]bool
	block map[string]bool
	delay time.Duration

	active    int32
	maxActive int32
}

func (f *fakeFetcher) Download(ctx context.Context, url string) (*image.RGBA, error) {
	n := atomic.AddInt32(&f.active, 1)
	defer atomic.AddInt32(&f.active, -1)
	for {
		cur := atomic.LoadInt32(&f.maxActive)
		if n <= cur || atomic.CompareAndSwapInt32(&f.maxActive, cur, n) {
			break
		}
	}

	if f.block[url] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[url] {
		return nil, errors.New("404")
	}
	return image.NewRGBA(image.Rect(0, 0, 32, 32)), nil
}

func album(artist, name, url string) *model.Album {
	a := &model.Album{Artist: artist, Name: name}
	if url != "" {
		a.Images = []model.ImageCandidate{{Size: model.ImageSizeExtraLarge, URL: url}}
	}
	return a
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.DefaultSettings()
	s.Width, s.Height = 64, 36
	s.Sharpen = false
	s.ScratchDir = t.TempDir()
	s.MaxWorkers = 4
	s.JobTimeout = 5
	return s
}

func validCatalog(albums ...*model.Album) *fakeCatalog {
	return &fakeCatalog{
		validation: lastfm.Validation{Valid: true, Message: "Valid user with 1,234 scrobbles", PlayCount: 1234},
		albums:     albums,
	}
}

func newTestManager(s *config.Settings, c Catalog, f CoverFetcher, events *[]ProgressEvent) *Manager {
	var mu sync.Mutex
	return NewManager(s, func(e ProgressEvent) {
		if events == nil {
			return
		}
		mu.Lock()
		*events = append(*events, e)
		mu.Unlock()
	}, WithCatalog(c), WithFetcher(f), WithProbe(resources.StaticProbe(64<<30)))
}

func TestManager_GenerateSkipsFailingAlbums(t *testing.T) {
	s := testSettings(t)
	catalog := validCatalog(
		album("Radiohead", "OK Computer", "https://img/ok.png"),
		album("Nobody", "No Cover", ""),
		album("Broken", "Link", "https://img/broken.png"),
		album("Boards of Canada", "Geogaddi", "https://img/geo.png"),
	)
	fetcher := &fakeFetcher{fail: map[string]bool{"https://img/broken.png": true}}

	var events []ProgressEvent
	m := newTestManager(s, catalog, fetcher, &events)

	res, err := m.Generate(context.Background(), "demoUser", lastfm.PeriodOverall, 10)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if catalog.gotPeriod != lastfm.PeriodOverall || catalog.gotLimit != 10 {
		t.Errorf("TopAlbums called with %s/%d", catalog.gotPeriod, catalog.gotLimit)
	}
	if res.Archive.Files != 2 || res.Failed != 2 {
		t.Errorf("archive files = %d, failed = %d, want 2 and 2", res.Archive.Files, res.Failed)
	}
	if res.Archive.Name != "demoUser_wallpapers.zip" {
		t.Errorf("archive name = %q", res.Archive.Name)
	}
	if res.Validation.PlayCount != 1234 {
		t.Errorf("validation = %+v", res.Validation)
	}

	zr, err := zip.OpenReader(res.Archive.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"Radiohead - OK Computer.jpg", "Boards of Canada - Geogaddi.jpg"} {
		if !names[want] {
			t.Errorf("archive missing %q, has %v", want, names)
		}
	}

	entries, _ := os.ReadDir(res.Archive.Dir)
	if len(entries) != 1 {
		t.Errorf("scratch dir holds %d entries, want only the archive", len(entries))
	}

	produced, failed, total := m.GetProgress()
	if produced != 2 || failed != 2 || total != 4 {
		t.Errorf("GetProgress() = %d, %d, %d, want 2, 2, 4", produced, failed, total)
	}

	var warnings int
	for _, e := range events {
		if e.Level == LevelWarning {
			warnings++
		}
	}
	if warnings != 2 {
		t.Errorf("got %d warning events, want 2", warnings)
	}
}

func TestManager_GenerateValidationFailure(t *testing.T) {
	s := testSettings(t)
	catalog := &fakeCatalog{validation: lastfm.Validation{Message: "Username not found on Last.fm"}}
	m := newTestManager(s, catalog, &fakeFetcher{}, nil)

	_, err := m.Generate(context.Background(), "ghost", lastfm.PeriodOverall, 10)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Generate() error = %v, want *ValidationError", err)
	}
	if verr.Message != "Username not found on Last.fm" {
		t.Errorf("Message = %q", verr.Message)
	}
	if entries, _ := os.ReadDir(s.ScratchDir); len(entries) != 0 {
		t.Errorf("scratch root should stay empty, has %d entries", len(entries))
	}
}

func TestManager_GenerateNothingProduced(t *testing.T) {
	tests := []struct {
		name   string
		albums []*model.Album
	}{
		{"no albums", nil},
		{"no artwork", []*model.Album{album("A", "B", ""), album("C", "D", "")}},
		{"all downloads fail", []*model.Album{album("A", "B", "https://img/broken.png")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings(t)
			fetcher := &fakeFetcher{fail: map[string]bool{"https://img/broken.png": true}}
			m := newTestManager(s, validCatalog(tt.albums...), fetcher, nil)

			_, err := m.Generate(context.Background(), "demoUser", lastfm.PeriodOverall, 10)
			if !errors.Is(err, ErrNoWallpapers) {
				t.Fatalf("Generate() error = %v, want ErrNoWallpapers", err)
			}
			if entries, _ := os.ReadDir(s.ScratchDir); len(entries) != 0 {
				t.Errorf("scratch directory not cleaned up: %d entries", len(entries))
			}
		})
	}
}

func TestManager_RunShedsUnderMemoryPressure(t *testing.T) {
	s := testSettings(t)
	s.MinAvailableMemoryMB = 500
	m := NewManager(s, nil,
		WithCatalog(validCatalog()),
		WithFetcher(&fakeFetcher{}),
		WithProbe(resources.StaticProbe(100<<20)),
	)

	albums := []*model.Album{album("A", "B", "https://img/a.png")}
	if _, err := m.Run(context.Background(), albums, t.TempDir()); !errors.Is(err, ErrNoWallpapers) {
		t.Errorf("Run() error = %v, want ErrNoWallpapers", err)
	}
	if _, failed, _ := m.GetProgress(); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
}

func TestManager_RunJobTimeoutAffectsOnlyThatAlbum(t *testing.T) {
	s := testSettings(t)
	s.JobTimeout = 0.05
	fetcher := &fakeFetcher{block: map[string]bool{"https://img/slow.png": true}}
	m := newTestManager(s, validCatalog(), fetcher, nil)

	albums := []*model.Album{
		album("Slow", "Album", "https://img/slow.png"),
		album("Fast", "Album", "https://img/fast.png"),
	}

	start := time.Now()
	files, err := m.Run(context.Background(), albums, t.TempDir())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(files) != 1 || files[0].Name != "Fast - Album.jpg" {
		t.Errorf("Run() = %+v, want only the fast album", files)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Run() took %v, the timeout did not apply", elapsed)
	}
}

func TestManager_RunRespectsPoolSize(t *testing.T) {
	s := testSettings(t)
	s.MaxWorkers = 2
	fetcher := &fakeFetcher{delay: 20 * time.Millisecond}
	m := newTestManager(s, validCatalog(), fetcher, nil)

	var albums []*model.Album
	for i := 0; i < 8; i++ {
		albums = append(albums, album("Artist", string(rune('A'+i)), "https://img/"+string(rune('a'+i))+".png"))
	}

	files, err := m.Run(context.Background(), albums, t.TempDir())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(files) != 8 {
		t.Errorf("Run() produced %d files, want 8", len(files))
	}
	if got := atomic.LoadInt32(&fetcher.maxActive); got > 2 {
		t.Errorf("max concurrent downloads = %d, want <= 2", got)
	}
}

func TestManager_RunCancelled(t *testing.T) {
	s := testSettings(t)
	m := newTestManager(s, validCatalog(), &fakeFetcher{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Run(ctx, []*model.Album{album("A", "B", "https://img/a.png")}, t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestManager_DuplicateNamesPackedOnce(t *testing.T) {
	s := testSettings(t)
	catalog := validCatalog(
		album("AC/DC", "Highway", "https://img/1.png"),
		album("AC:DC", "Highway", "https://img/2.png"),
	)
	m := newTestManager(s, catalog, &fakeFetcher{}, nil)

	res, err := m.Generate(context.Background(), "demoUser", lastfm.PeriodOverall, 10)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if res.Archive.Files != 1 {
		t.Errorf("archive files = %d, want 1", res.Archive.Files)
	}
}

func TestManager_PNGOutput(t *testing.T) {
	s := testSettings(t)
	s.OutputFormat = "png"
	m := newTestManager(s, validCatalog(), &fakeFetcher{}, nil)

	files, err := m.Run(context.Background(), []*model.Album{album("A", "B", "https://img/a.png")}, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(files[0].Name, ".png") {
		t.Errorf("file name = %q, want .png", files[0].Name)
	}
}

func TestManager_GetAlbumNames(t *testing.T) {
	s := testSettings(t)
	a := album("Radiohead", "OK Computer", "u")
	a.Rank, a.PlayCount = 1, 512
	m := newTestManager(s, validCatalog(a), &fakeFetcher{}, nil)

	if _, err := m.Initialize(context.Background(), "demoUser", lastfm.PeriodOverall, 10); err != nil {
		t.Fatal(err)
	}
	names := m.GetAlbumNames()
	if len(names) != 1 || !strings.Contains(names[0], "OK Computer") || !strings.HasPrefix(names[0], "#1 ") {
		t.Errorf("GetAlbumNames() = %v", names)
	}
}

func TestManager_InitializeThenBuild(t *testing.T) {
	s := testSettings(t)
	m := newTestManager(s, validCatalog(album("A", "B", "https://img/a.png")), &fakeFetcher{}, nil)

	v, err := m.Initialize(context.Background(), "demoUser", lastfm.Period7Day, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Albums()) != 1 {
		t.Fatalf("Albums() = %d, want 1", len(m.Albums()))
	}

	res, err := m.Build(context.Background(), "demoUser")
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if res.Validation != v {
		t.Errorf("Result.Validation = %+v, want %+v", res.Validation, v)
	}
}

func TestExport(t *testing.T) {
	s := testSettings(t)
	m := newTestManager(s, validCatalog(album("A", "B", "https://img/a.png")), &fakeFetcher{}, nil)

	res, err := m.Generate(context.Background(), "demoUser", lastfm.PeriodOverall, 10)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "out")
	path, err := Export(context.Background(), res.Archive, out)
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	if path != filepath.Join(out, "demoUser_wallpapers.zip") {
		t.Errorf("Export() = %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("exported archive missing: %v", err)
	}
	if _, err := os.Stat(res.Archive.Dir); !os.IsNotExist(err) {
		t.Error("scratch directory should be removed after export")
	}
}

func TestManager_RenderAlbumSkipsMissingArtworkFirst(t *testing.T) {
	s := testSettings(t)
	s.MinAvailableMemoryMB = 500
	f := &fakeFetcher{}
	m := NewManager(s, nil,
		WithCatalog(validCatalog()),
		WithFetcher(f),
		WithProbe(resources.StaticProbe(0)),
	)

	_, err := m.renderAlbum(context.Background(), album("A", "B", ""), t.TempDir())
	if !errors.Is(err, errNoArtwork) {
		t.Fatalf("renderAlbum() error = %v, want errNoArtwork before admission", err)
	}
	if f.maxActive != 0 {
		t.Error("fetcher should not be called for an album without artwork")
	}
}

func TestExport_LogsCleanupFailure(t *testing.T) {
	src := filepath.Join(t.TempDir(), "u_wallpapers.zip")
	if err := os.WriteFile(src, []byte("zip"), 0644); err != nil {
		t.Fatal(err)
	}
	hook := logtest.NewGlobal()
	defer hook.Reset()

	a := &model.Archive{Path: src, Dir: "job\x00invalid", Name: "u_wallpapers.zip"}
	if _, err := Export(context.Background(), a, t.TempDir()); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning for the failed cleanup, got %v", entry)
	}
	if entry.Data["dir"] != a.Dir {
		t.Errorf("warning dir = %v, want %q", entry.Data["dir"], a.Dir)
	}
}
