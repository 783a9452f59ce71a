// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package archive

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/dropzip/pkg/errs"
	"gitlab.com/tozd/go/errors"
)

// DefaultExcludes are the metadata entries macOS leaves behind
var DefaultExcludes = []string{"__MACOSX*", ".DS_Store"}

// 🔍 Match reports whether an entry name matches an exclusion pattern.
//
// Patterns containing a slash are matched against the whole name. Patterns
// without one are matched against each path segment, so "*.tmp" matches
// "dir/x.tmp" and "__MACOSX*" matches everything below "__MACOSX/".
func Match(pattern, name string) (bool, error) {
	name = strings.TrimSuffix(name, "/")

	if strings.Contains(pattern, "/") {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, errs.Wrap(errs.ErrInvalidInput, err, "bad pattern %q", pattern)
		}
		return ok, nil
	}

	for _, segment := range strings.Split(name, "/") {
		ok, err := doublestar.Match(pattern, segment)
		if err != nil {
			return false, errs.Wrap(errs.ErrInvalidInput, err, "bad pattern %q", pattern)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Matches reports whether any of patterns matches name
func Matches(patterns []string, name string) (bool, error) {
	if err := validatePatterns(patterns); err != nil {
		return false, err
	}
	_, ok := excluded(name, patterns)
	return ok, nil
}

func validatePatterns(patterns []string) error {
	for _, p := range patterns {
		if p == "" || !doublestar.ValidatePattern(p) {
			return errs.InvalidInput("bad pattern %q", p)
		}
	}
	return nil
}

func excluded(name string, patterns []string) (string, bool) {
	for _, p := range patterns {
		// patterns are validated up front
		if ok, _ := Match(p, name); ok {
			return p, true
		}
	}
	return "", false
}

// 📋 Entries lists the entry names of a zip archive in stored order
func Entries(ctx context.Context, path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrArchiveFormat, err, "opening %s", path)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// 🧹 Filter removes every entry matching one of patterns from the archive at
// path, in place. Kept entries are copied without recompression. When nothing
// matches the archive is left untouched.
func Filter(ctx context.Context, path string, patterns []string) (int, error) {
	logger := zerolog.Ctx(ctx)

	if err := validatePatterns(patterns); err != nil {
		return 0, err
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return 0, errs.Wrap(errs.ErrArchiveFormat, err, "opening %s", path)
	}
	defer r.Close()

	var keep []*zip.File
	for _, f := range r.File {
		if pattern, ok := excluded(f.Name, patterns); ok {
			logger.Debug().Str("entry", f.Name).Str("pattern", pattern).Msg("entry excluded by pattern")
			continue
		}
		keep = append(keep, f)
	}

	removed := len(r.File) - len(keep)
	if removed == 0 {
		return 0, nil
	}

	if err := rewrite(path, r, keep); err != nil {
		return 0, err
	}

	logger.Debug().Str("archive", path).Int("removed", removed).Int("kept", len(keep)).Msg("archive filtered")
	return removed, nil
}

// ♻️ rewrite writes keep into a sibling temp file and renames it over path
func rewrite(path string, r *zip.ReadCloser, keep []*zip.File) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("reading archive info: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return errors.Errorf("creating temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	zw := zip.NewWriter(tmp)
	if err := zw.SetComment(r.Comment); err != nil {
		tmp.Close()
		return errors.Errorf("copying comment: %w", err)
	}

	for _, f := range keep {
		if err := zw.Copy(f); err != nil {
			tmp.Close()
			return errs.Wrap(errs.ErrArchiveFormat, err, "copying entry %s", f.Name)
		}
	}

	if err := zw.Close(); err != nil {
		tmp.Close()
		return errors.Errorf("finalizing archive: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Errorf("syncing archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing archive: %w", err)
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return errors.Errorf("setting archive mode: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Errorf("replacing archive: %w", err)
	}
	return nil
}

// 🔐 Checksum returns the SHA-256 and size of the file at path
func Checksum(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	hash := sha256.New()
	n, err := io.Copy(hash, f)
	if err != nil {
		return "", 0, errors.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), n, nil
}
