package project

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// DebounceInterval lets an editor's write and rename settle before a reload.
const DebounceInterval = 200 * time.Millisecond

// Catalog is the project definition file.
type Catalog struct {
	Projects []*Project `yaml:"projects"`
}

// LoadCatalog parses and validates a catalog file. Warnings are returned for
// schemas that load but behave more loosely than they read.
func LoadCatalog(path string) (*Catalog, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read project catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, nil, fmt.Errorf("parse project catalog %s: %w", path, err)
	}
	var (
		errs     []error
		warnings []string
		seen     = map[string]bool{}
	)
	for _, p := range c.Projects {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("project %q defined twice", p.ID))
		}
		seen[p.ID] = true
		for _, w := range p.Schema.Lint() {
			warnings = append(warnings, fmt.Sprintf("project %q: %s", p.ID, w))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, warnings, err
	}
	return &c, warnings, nil
}

// Sync loads the catalog and saves every project into repo.
func Sync(ctx context.Context, repo Repository, path string) error {
	c, warnings, err := LoadCatalog(path)
	for _, w := range warnings {
		slog.WarnContext(ctx, "project schema lint", "path", path, "warning", w)
	}
	if err != nil {
		return err
	}
	now := time.Now()
	for _, p := range c.Projects {
		p.UpdatedAt = now
		if err := repo.Save(ctx, p); err != nil {
			return fmt.Errorf("save project %q: %w", p.ID, err)
		}
	}
	slog.InfoContext(ctx, "project catalog loaded", "path", path, "projects", len(c.Projects))
	return nil
}

// Watcher re-syncs the catalog whenever its content changes on disk.
type Watcher struct {
	repo     Repository
	path     string
	lastHash [sha256.Size]byte
}

func NewWatcher(repo Repository, path string) *Watcher {
	return &Watcher{repo: repo, path: path}
}

// Run blocks until ctx is done. A catalog that fails to load keeps the
// previously loaded projects in place.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and deploy tools replace the file by rename.
	dir := filepath.Dir(w.path)
	name := filepath.Base(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.lastHash, _ = hashFile(w.path)

	reload := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(DebounceInterval, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			hash, err := hashFile(w.path)
			if err != nil {
				slog.WarnContext(ctx, "project catalog unreadable", "path", w.path, "error", err)
				continue
			}
			if hash == w.lastHash {
				continue
			}
			if err := Sync(ctx, w.repo, w.path); err != nil {
				slog.ErrorContext(ctx, "project catalog reload failed", "path", w.path, "error", err)
				continue
			}
			w.lastHash = hash
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "project catalog watcher error", "error", err)
		}
	}
}

func hashFile(path string) ([sha256.Size]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return [sha256.Size]byte{}, err
	}
	return sha256.Sum256(data), nil
}
