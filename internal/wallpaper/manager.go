package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/Ziad0dev/lastfm-wallpaper/internal/archive"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/artwork"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/config"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/http"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/imaging"
	ioutils "github.com/Ziad0dev/lastfm-wallpaper/internal/io"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/lastfm"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/model"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/resources"
)

// NoWallpapersMessage is the user-facing explanation for ErrNoWallpapers.
const NoWallpapersMessage = "No wallpapers could be generated. The user might not have enough album data."

var (
	// ErrNoWallpapers is returned when a batch produced no files at all.
	ErrNoWallpapers = errors.New("no wallpapers could be generated")

	errNoArtwork = errors.New("album has no cover art")
)

// ValidationError is returned when the username failed validation.
// Message is the text reported by lastfm.Client.Validate.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a generation progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Catalog is the part of the Last.fm client the Manager needs.
type Catalog interface {
	Validate(ctx context.Context, username string) lastfm.Validation
	TopAlbums(ctx context.Context, username string, period lastfm.Period, limit int) []*model.Album
}

// CoverFetcher downloads a cover image.
type CoverFetcher interface {
	Download(ctx context.Context, url string) (*image.RGBA, error)
}

// Result describes a finished generation.
type Result struct {
	Username   string
	Validation lastfm.Validation
	Archive    *model.Archive
	Failed     int
}

// Manager coordinates wallpaper generation for one user.
//
// A Manager holds the state of a single run; create one per request.
type Manager struct {
	settings   *config.Settings
	catalog    Catalog
	fetcher    CoverFetcher
	compositor *imaging.Compositor
	encoder    *imaging.Encoder
	packer     *archive.Packer
	policy     resources.Policy

	albums        []*model.Album
	validation    lastfm.Validation
	totalFiles    int32
	producedFiles int32
	failedFiles   int32

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithCatalog replaces the Last.fm client built from settings.
func WithCatalog(c Catalog) Option {
	return func(m *Manager) { m.catalog = c }
}

// WithFetcher replaces the cover fetcher built from settings.
func WithFetcher(f CoverFetcher) Option {
	return func(m *Manager) { m.fetcher = f }
}

// WithProbe replaces the system memory probe.
func WithProbe(p resources.Probe) Option {
	return func(m *Manager) { m.policy.Probe = p }
}

// NewManager creates a new Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	client := http.NewClient(http.WithTimeout(settings.HTTPTimeoutDuration()))

	m := &Manager{
		settings:   settings,
		catalog:    lastfm.NewClient(client, settings.APIKey, lastfm.WithBaseURL(settings.APIBaseURL)),
		fetcher:    artwork.NewFetcher(client, settings.ToFetcherOptions()),
		compositor: imaging.NewCompositor(settings.ToCompositorOptions()),
		encoder:    imaging.NewEncoder(settings.ToEncoderOptions()),
		packer:     archive.NewPacker(settings.CompressionLevel),
		policy:     settings.ToPolicy(),
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize validates username and fetches the albums to render.
//
// It returns a *ValidationError if the username is rejected. An empty album
// list is not an error here; Run reports it as ErrNoWallpapers.
func (m *Manager) Initialize(ctx context.Context, username string, period lastfm.Period, limit int) (lastfm.Validation, error) {
	m.progress(ProgressEvent{Message: fmt.Sprintf("Validating %s", username), Level: LevelVerbose})

	v := m.catalog.Validate(ctx, username)
	if !v.Valid {
		m.progress(ProgressEvent{Message: v.Message, Level: LevelError})
		return v, &ValidationError{Message: v.Message}
	}
	m.progress(ProgressEvent{Message: v.Message, Level: LevelInfo})

	albums := m.catalog.TopAlbums(ctx, username, period, limit)
	for _, album := range albums {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Found album: %s", album.DisplayName()), Level: LevelVerbose})
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d albums (%s)", len(albums), period), Level: LevelInfo})

	m.mu.Lock()
	m.albums = albums
	m.validation = v
	m.mu.Unlock()

	return v, nil
}

// Albums returns the albums found by Initialize.
func (m *Manager) Albums() []*model.Album {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.albums
}

// Run renders every album into scratchDir and returns the produced files in
// completion order.
//
// Albums are processed independently by a bounded pool sized by the
// resource policy. A failing album (no artwork, download, decode or write
// error, memory pressure, timeout) is reported and skipped. Run returns
// ErrNoWallpapers if nothing was produced, or the context error if ctx was
// cancelled.
func (m *Manager) Run(ctx context.Context, albums []*model.Album, scratchDir string) ([]model.ProducedFile, error) {
	atomic.StoreInt32(&m.totalFiles, int32(len(albums)))
	atomic.StoreInt32(&m.producedFiles, 0)
	atomic.StoreInt32(&m.failedFiles, 0)

	workers := m.policy.PoolSize(ctx)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Rendering %d albums with %d workers", len(albums), workers), Level: LevelVerbose})

	var (
		mu       sync.Mutex
		produced []model.ProducedFile
		g        errgroup.Group
	)
	g.SetLimit(workers)

	for _, album := range albums {
		g.Go(func() error {
			file, err := m.renderAlbum(ctx, album, scratchDir)
			if err != nil {
				atomic.AddInt32(&m.failedFiles, 1)
				m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping %s: %v", album.DisplayName(), err), Level: LevelWarning})
				return nil
			}

			mu.Lock()
			produced = append(produced, file)
			mu.Unlock()

			atomic.AddInt32(&m.producedFiles, 1)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Created: %s", file.Name), Level: LevelSuccess})
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(produced) == 0 {
		return nil, ErrNoWallpapers
	}
	return produced, nil
}

// Generate runs the whole pipeline for username: validation, album lookup,
// rendering and packaging into a fresh scratch directory under the
// configured scratch root.
func (m *Manager) Generate(ctx context.Context, username string, period lastfm.Period, limit int) (*Result, error) {
	if _, err := m.Initialize(ctx, username, period, limit); err != nil {
		return nil, err
	}
	return m.Build(ctx, username)
}

// Build renders the albums found by Initialize and packs them into a fresh
// scratch directory. On any error the scratch directory is removed.
func (m *Manager) Build(ctx context.Context, username string) (*Result, error) {
	dir, jobID, err := ioutils.NewScratchDir(m.settings.ScratchDir)
	if err != nil {
		return nil, err
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Job %s: %s", jobID, dir), Level: LevelVerbose})

	files, err := m.Run(ctx, m.Albums(), dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	a, err := m.packer.Pack(ctx, files, dir, model.ArchiveName(username))
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to pack wallpapers: %w", err)
	}

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Packed %d wallpapers into %s (%d bytes)", a.Files, a.Name, a.Size),
		Level:   LevelSuccess,
	})

	m.mu.RLock()
	v := m.validation
	m.mu.RUnlock()

	return &Result{
		Username:   username,
		Validation: v,
		Archive:    a,
		Failed:     int(atomic.LoadInt32(&m.failedFiles)),
	}, nil
}

// GetProgress returns current generation progress.
func (m *Manager) GetProgress() (produced, failed, total int32) {
	return atomic.LoadInt32(&m.producedFiles), atomic.LoadInt32(&m.failedFiles), atomic.LoadInt32(&m.totalFiles)
}

// GetAlbumNames returns the names of all initialized albums.
func (m *Manager) GetAlbumNames() []string {
	return lo.Map(m.Albums(), func(album *model.Album, _ int) string {
		return fmt.Sprintf("#%d %s (%d plays)", album.Rank, album.DisplayName(), album.PlayCount)
	})
}

func (m *Manager) renderAlbum(ctx context.Context, album *model.Album, dir string) (model.ProducedFile, error) {
	if !album.HasArtwork() {
		return model.ProducedFile{}, errNoArtwork
	}
	if err := m.policy.Admit(ctx); err != nil {
		return model.ProducedFile{}, err
	}

	if timeout := m.settings.JobTimeoutDuration(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	url, ok := artwork.SelectBestImageURL(album)
	if !ok {
		return model.ProducedFile{}, errNoArtwork
	}

	cover, err := m.fetcher.Download(ctx, url)
	if err != nil {
		return model.ProducedFile{}, err
	}

	job := model.WallpaperJob{
		Album:      album,
		Resolution: m.compositor.Options().Resolution,
		Path:       filepath.Join(dir, album.FileName(m.encoder.Extension())),
	}

	wallpaper := m.compositor.Compose(cover)
	if err := ctx.Err(); err != nil {
		return model.ProducedFile{}, err
	}

	size, err := ioutils.WriteFileAtomic(ctx, job.Path, func(w io.Writer) error {
		return m.encoder.Encode(w, wallpaper)
	})
	if err != nil {
		return model.ProducedFile{}, fmt.Errorf("write %s: %w", filepath.Base(job.Path), err)
	}

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Rendered %s at %s", album.DisplayName(), job.Resolution),
		Level:   LevelVerbose,
	})

	return model.ProducedFile{Name: filepath.Base(job.Path), Path: job.Path, Size: size}, nil
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
