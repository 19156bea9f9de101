// Package storage maps material ids to files under the storage root and
// moves uploads into place.
//
// Layout: the id is zero-padded to six digits; everything but the last three
// digits names the shard directory, the last three name the file stem.
// Material 1234 therefore lives at <root>/001/234.<ext>. Ids from 1,000,000
// upward widen the shard (1234567 -> 1234/567) so each shard keeps at most
// 1,000 files and the mapping stays injective.
package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/coursevault/internal/common"
	"github.com/dmitrijs2005/coursevault/internal/filex"
)

var managedPath = regexp.MustCompile(`^([0-9]{3}|[1-9][0-9]{3,})/[0-9]{3}\.[a-z0-9]{1,4}$`)

// Allocate returns the slash-separated relative path "<shard>/<stem>" for id.
func Allocate(id int64) (string, error) {
	if id < 0 {
		return "", &common.ValidationError{Field: "id", Reason: "must not be negative"}
	}
	s := fmt.Sprintf("%06d", id)
	cut := len(s) - 3
	return s[:cut] + "/" + s[cut:], nil
}

// Allocator resolves allocated paths against a storage root.
type Allocator struct {
	root string
}

// NewAllocator creates root if needed and returns an Allocator bound to its
// absolute path.
func NewAllocator(root string) (*Allocator, error) {
	abs, err := filex.EnsureDir(root)
	if err != nil {
		return nil, fmt.Errorf("storage root: %w", err)
	}
	return &Allocator{root: abs}, nil
}

// Root returns the absolute storage root.
func (a *Allocator) Root() string { return a.root }

// RelPath returns "<shard>/<stem>.<ext>", relative to the root.
func (a *Allocator) RelPath(id int64, ext string) (string, error) {
	p, err := Allocate(id)
	if err != nil {
		return "", err
	}
	return p + "." + ext, nil
}

// FilePath returns the absolute path of the file for id.
func (a *Allocator) FilePath(id int64, ext string) (string, error) {
	rel, err := a.RelPath(id, ext)
	if err != nil {
		return "", err
	}
	return filepath.Join(a.root, filepath.FromSlash(rel)), nil
}

// ValidateManagedPath checks that path (absolute, or relative to the root)
// names a file the allocator could have produced, and returns its absolute
// form. Anything else yields common.ErrorUnmanagedPath.
func (a *Allocator) ValidateManagedPath(path string) (string, error) {
	if path == "" {
		return "", common.ErrorUnmanagedPath
	}
	for _, seg := range strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' }) {
		if seg == ".." {
			return "", fmt.Errorf("%w: %s", common.ErrorUnmanagedPath, path)
		}
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(a.root, abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(a.root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s", common.ErrorUnmanagedPath, path)
	}
	if !managedPath.MatchString(filepath.ToSlash(rel)) {
		return "", fmt.Errorf("%w: %s", common.ErrorUnmanagedPath, path)
	}
	return abs, nil
}
