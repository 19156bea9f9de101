// Package upload checks candidate files against the extension allow-list.
// Zip archives are opened and every entry is checked one level deep;
// nested archives are judged by name only. File contents are not sniffed.
package upload

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dmitrijs2005/coursevault/internal/common"
)

// Validator holds an immutable allow-list of lower-case extensions.
type Validator struct {
	allowed map[string]struct{}
}

// NewValidator builds a Validator. Extensions are lower-cased and a leading
// dot is ignored.
func NewValidator(extensions []string) *Validator {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			allowed[ext] = struct{}{}
		}
	}
	return &Validator{allowed: allowed}
}

// Allowed reports whether ext (lower case, no dot) is on the allow-list.
func (v *Validator) Allowed(ext string) bool {
	_, ok := v.allowed[ext]
	return ok
}

// BaseName drops any client-side directory prefix, with either separator.
func BaseName(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		return filename[i+1:]
	}
	return filename
}

// extension returns the lower-cased text after the last dot of name's base,
// or "" when there is none.
func extension(name string) string {
	base := BaseName(name)
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// ValidateName returns the normalized extension of filename or
// common.ErrBadFileType.
func (v *Validator) ValidateName(filename string) (string, error) {
	ext := extension(filename)
	if ext == "" || !v.Allowed(ext) {
		return "", fmt.Errorf("%w: %q", common.ErrBadFileType, BaseName(filename))
	}
	return ext, nil
}

// Validate checks the name and, for zip archives, the names of all entries.
// r must expose the whole upload of the given size.
func (v *Validator) Validate(filename string, r io.ReaderAt, size int64) (string, error) {
	ext, err := v.ValidateName(filename)
	if err != nil {
		return "", err
	}
	if ext != "zip" {
		return ext, nil
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrBadArchiveContents, err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entryExt := extension(path.Base(f.Name))
		if entryExt == "" || !v.Allowed(entryExt) {
			return "", fmt.Errorf("%w: %q", common.ErrBadArchiveContents, f.Name)
		}
	}
	return ext, nil
}
