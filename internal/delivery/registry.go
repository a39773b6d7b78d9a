package delivery

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	ioutils "github.com/Ziad0dev/lastfm-wallpaper/internal/io"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/model"
)

// ErrNotFound is returned when a key matches no live archive.
var ErrNotFound = errors.New("archive not found or expired")

// Options configures a Registry.
type Options struct {
	// ScratchRoot is the directory owning every job's scratch directory.
	// The stale sweep only looks here.
	ScratchRoot string

	// DeleteGrace is the delay between the first download and deletion.
	DeleteGrace time.Duration

	// ArchiveTTL bounds how long a never-downloaded archive is kept.
	ArchiveTTL time.Duration

	// StaleAge is the age after which an unregistered scratch directory is
	// considered abandoned.
	StaleAge time.Duration
}

// DefaultOptions returns a 60s grace period and one hour TTL and stale age.
func DefaultOptions(scratchRoot string) Options {
	return Options{
		ScratchRoot: scratchRoot,
		DeleteGrace: 60 * time.Second,
		ArchiveTTL:  time.Hour,
		StaleAge:    time.Hour,
	}
}

// Entry is a registered archive.
type Entry struct {
	Token     string
	Username  string
	Archive   model.Archive
	ExpiresAt time.Time
	Served    bool
}

type stopper interface {
	Stop() bool
}

// Registry maps download tokens to archives waiting to be fetched.
//
// Tokens are ULIDs. The most recent token of each username is indexed too,
// so an archive can be fetched by username. The first successful download
// arms a one-shot deletion after DeleteGrace; until then, and during the
// grace period, the archive remains downloadable.
//
// Example usage:
//
//	reg := delivery.NewRegistry(delivery.DefaultOptions(scratchRoot))
//	defer reg.Close()
//
//	token := reg.Register("demoUser", archive)
//	entry, err := reg.Lookup(token) // or reg.Lookup("demoUser")
//	// ... stream entry.Archive.Path ...
//	reg.MarkServed(entry.Token)
type Registry struct {
	opts Options

	mu      sync.Mutex
	entries map[string]*Entry
	latest  map[string]string
	timers  map[string]stopper

	now       func() time.Time
	afterFunc func(time.Duration, func()) stopper
}

// NewRegistry creates a new Registry.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:    opts,
		entries: make(map[string]*Entry),
		latest:  make(map[string]string),
		timers:  make(map[string]stopper),
		now:     time.Now,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// Register records a finished archive for username and returns its token.
func (r *Registry) Register(username string, archive *model.Archive) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	token := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()

	r.entries[token] = &Entry{
		Token:     token,
		Username:  username,
		Archive:   *archive,
		ExpiresAt: now.Add(r.opts.ArchiveTTL),
	}
	r.latest[strings.ToLower(username)] = token

	logrus.WithFields(logrus.Fields{
		"username": username,
		"token":    token,
		"files":    archive.Files,
	}).Info("Registered archive")

	return token
}

// Lookup resolves key, a token or a username, to a live entry.
//
// A sweep runs first, so expired archives are never returned.
func (r *Registry) Lookup(key string) (Entry, error) {
	r.Sweep()

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		if token, found := r.latest[strings.ToLower(key)]; found {
			e, ok = r.entries[token]
		}
	}
	if !ok {
		return Entry{}, ErrNotFound
	}
	if _, err := os.Stat(e.Archive.Path); err != nil {
		r.removeLocked(e.Token)
		return Entry{}, ErrNotFound
	}

	return *e, nil
}

// MarkServed records a completed download of token and, the first time,
// schedules deletion of the archive after DeleteGrace.
func (r *Registry) MarkServed(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[token]
	if !ok || e.Served {
		return
	}
	e.Served = true

	r.timers[token] = r.afterFunc(r.opts.DeleteGrace, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.removeLocked(token)
	})

	logrus.WithFields(logrus.Fields{
		"username": e.Username,
		"token":    token,
		"grace":    r.opts.DeleteGrace,
	}).Debug("Archive served, deletion scheduled")
}

// Sweep removes expired entries and abandoned scratch directories, and
// returns how many directories it deleted.
//
// An entry expires when it was never downloaded and is older than
// ArchiveTTL. A scratch directory is abandoned when it carries the job
// prefix, is not owned by a live entry and was last modified more than
// StaleAge ago.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0

	for token, e := range r.entries {
		if !e.Served && now.After(e.ExpiresAt) {
			r.removeLocked(token)
			removed++
		}
	}

	if r.opts.ScratchRoot == "" || r.opts.StaleAge <= 0 {
		return removed
	}

	live := make(map[string]bool, len(r.entries))
	for _, e := range r.entries {
		live[filepath.Clean(e.Archive.Dir)] = true
	}

	dirents, err := os.ReadDir(r.opts.ScratchRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithField("error", err).Warn("Failed to read scratch root")
		}
		return removed
	}

	for _, d := range dirents {
		if !d.IsDir() || !ioutils.IsScratchDir(d.Name()) {
			continue
		}
		dir := filepath.Join(r.opts.ScratchRoot, d.Name())
		if live[dir] {
			continue
		}
		info, err := d.Info()
		if err != nil || now.Sub(info.ModTime()) < r.opts.StaleAge {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			logrus.WithFields(logrus.Fields{"dir": dir, "error": err}).Warn("Failed to remove stale scratch directory")
			continue
		}
		logrus.WithField("dir", dir).Info("Removed stale scratch directory")
		removed++
	}

	return removed
}

// Len returns the number of registered archives.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close cancels pending deletions and removes every registered archive.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token := range r.entries {
		r.removeLocked(token)
	}
}

func (r *Registry) removeLocked(token string) {
	e, ok := r.entries[token]
	if !ok {
		return
	}
	delete(r.entries, token)

	if t, ok := r.timers[token]; ok {
		t.Stop()
		delete(r.timers, token)
	}

	key := strings.ToLower(e.Username)
	if r.latest[key] == token {
		delete(r.latest, key)
	}

	target := e.Archive.Dir
	if target == "" {
		target = e.Archive.Path
	}
	if target == "" {
		return
	}
	if err := os.RemoveAll(target); err != nil {
		logrus.WithFields(logrus.Fields{"path": target, "error": err}).Warn("Failed to remove archive")
		return
	}
	logrus.WithFields(logrus.Fields{"username": e.Username, "token": token}).Debug("Removed archive")
}
