package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNotFound is returned when nothing is stored at a path.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by CreateExclusive when the path is taken.
	ErrConflict = errors.New("conflict")
)

// Storage is a flat object store addressed by slash separated paths. List
// is not recursive: it returns the objects directly under prefix.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	// Write replaces the object at path. Readers see the old or the new
	// content, never a mix.
	Write(ctx context.Context, path string, data []byte) error
	// CreateExclusive writes data only if nothing exists at path yet.
	CreateExclusive(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// Walk reads every object under prefix in path order and hands it to fn.
// Objects deleted between listing and reading are skipped. An error from
// fn stops the walk and is returned as is.
func Walk(ctx context.Context, s Storage, prefix string, fn func(path string, data []byte) error) error {
	paths, err := s.List(ctx, prefix)
	if err != nil {
		return err
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := s.Read(ctx, p)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("walk %s: %w", prefix, err)
		}
		if err := fn(p, data); err != nil {
			return err
		}
	}
	return nil
}
