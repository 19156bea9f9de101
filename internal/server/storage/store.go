package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/coursevault/internal/common"
	"github.com/dmitrijs2005/coursevault/internal/filex"
	"github.com/google/uuid"
)

const stagingDir = ".staging"

// Store owns every file under the storage root. Uploads are written to the
// staging directory first and renamed into their allocated path once they
// have been validated.
type Store struct {
	alloc   *Allocator
	staging string
	maxSize int64
}

// NewStore prepares the staging directory under the allocator's root.
func NewStore(alloc *Allocator, maxSize int64) (*Store, error) {
	staging, err := filex.EnsureDir(filepath.Join(alloc.Root(), stagingDir))
	if err != nil {
		return nil, fmt.Errorf("staging dir: %w", err)
	}
	return &Store{alloc: alloc, staging: staging, maxSize: maxSize}, nil
}

// Allocator returns the allocator the store places files with.
func (s *Store) Allocator() *Allocator { return s.alloc }

// MaxSize returns the upload limit in bytes.
func (s *Store) MaxSize() int64 { return s.maxSize }

// StagedFile is an upload sitting in the staging directory. It supports
// random access so archives can be inspected before placement.
type StagedFile struct {
	f    *os.File
	path string
	size int64
}

func (sf *StagedFile) ReadAt(p []byte, off int64) (int, error) { return sf.f.ReadAt(p, off) }

// Size returns the number of bytes staged.
func (sf *StagedFile) Size() int64 { return sf.size }

// Path returns the staging path.
func (sf *StagedFile) Path() string { return sf.path }

// Stage copies r into a new staging file. More than MaxSize bytes yields
// common.ErrorOversizeUpload and nothing is left behind.
func (s *Store) Stage(ctx context.Context, r io.Reader) (*StagedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.staging, uuid.NewString()+".part")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o660)
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	sf := &StagedFile{f: f, path: path}

	n, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if err == nil {
		err = ctx.Err()
	}
	if err == nil && n > s.maxSize {
		err = common.ErrorOversizeUpload
	}
	if err != nil {
		_ = s.Discard(sf)
		if errors.Is(err, common.ErrorOversizeUpload) {
			return nil, err
		}
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	sf.size = n
	return sf, nil
}

// Place moves a staged file to the allocated path for id and returns that
// path. The staged file is consumed either way.
func (s *Store) Place(sf *StagedFile, id int64, ext string) (string, error) {
	dst, err := s.alloc.FilePath(id, ext)
	if err != nil {
		_ = s.Discard(sf)
		return "", err
	}
	if err := sf.f.Close(); err != nil {
		_ = filex.RemoveIfExists(sf.path)
		return "", fmt.Errorf("close staging file: %w", err)
	}
	if _, err := filex.EnsureDir(filepath.Dir(dst)); err != nil {
		_ = filex.RemoveIfExists(sf.path)
		return "", err
	}
	if err := os.Rename(sf.path, dst); err != nil {
		_ = filex.RemoveIfExists(sf.path)
		return "", fmt.Errorf("place file: %w", err)
	}
	return dst, nil
}

// Discard closes and removes a staged file.
func (s *Store) Discard(sf *StagedFile) error {
	if sf == nil {
		return nil
	}
	_ = sf.f.Close()
	return filex.RemoveIfExists(sf.path)
}

// Remove deletes a placed file after checking it is managed by the store.
// The shard directory is removed too once it is empty.
func (s *Store) Remove(path string) error {
	abs, err := s.alloc.ValidateManagedPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return err
	}
	// Fails while other files remain in the shard.
	_ = os.Remove(filepath.Dir(abs))
	return nil
}
