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

// Package transfer copies finished archives into their destination directory.
package transfer

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/dropzip/pkg/errs"
	"gitlab.com/tozd/go/errors"
)

// 📁 Destination is where archives end up
type Destination struct {
	Dir       string // Existing, writable directory
	Overwrite bool   // Replace a same-named file instead of failing
}

// ✅ Check reports whether the destination directory can be used
func (d Destination) Check() error {
	return checkDir(d.Dir)
}

// 📤 Copy copies src into dest.Dir under its own name and returns the final
// path. The source is never moved or modified. The copy is staged in a temp
// file inside dest.Dir and renamed into place, so a failed transfer never
// leaves a partial file under the final name.
func Copy(ctx context.Context, src string, dest Destination) (string, error) {
	logger := zerolog.Ctx(ctx)

	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", errs.Wrap(errs.ErrInvalidInput, err, "reading source %s", src)
	}
	if !srcInfo.Mode().IsRegular() {
		return "", errs.InvalidInput("source %s is not a regular file", src)
	}

	if err := dest.Check(); err != nil {
		return "", err
	}

	target := filepath.Join(dest.Dir, filepath.Base(src))

	if err := checkTarget(target, dest.Overwrite); err != nil {
		return "", err
	}

	// staging in the destination doubles as the writability probe
	tmp, err := os.CreateTemp(dest.Dir, ".dropzip-*.partial")
	if err != nil {
		return "", errs.Wrap(errs.ErrDestinationUnavailable, err, "%s is not writable", dest.Dir)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := copyInto(tmp, src); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Errorf("closing staged copy: %w", err)
	}
	if err := os.Chmod(tmpPath, srcInfo.Mode().Perm()); err != nil {
		return "", errors.Errorf("setting mode: %w", err)
	}
	if err := os.Chtimes(tmpPath, time.Now(), srcInfo.ModTime()); err != nil {
		return "", errors.Errorf("setting modification time: %w", err)
	}

	if err := place(tmpPath, target, dest.Overwrite); err != nil {
		return "", err
	}

	logger.Debug().
		Str("source", src).
		Str("target", target).
		Bool("overwrite", dest.Overwrite).
		Int64("size", srcInfo.Size()).
		Msg("archive transferred")

	return target, nil
}

// 🔍 checkDir makes sure dir exists and is a directory
func checkDir(dir string) error {
	if dir == "" {
		return errs.New(errs.ErrDestinationUnavailable, "no destination directory configured")
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errs.Wrap(errs.ErrDestinationUnavailable, err, "%s does not exist", dir)
		}
		return errs.Wrap(errs.ErrDestinationUnavailable, err, "reading %s", dir)
	}
	if !info.IsDir() {
		return errs.New(errs.ErrDestinationUnavailable, "%s is not a directory", dir)
	}
	return nil
}

// 🔍 checkTarget refuses to replace existing files unless overwrite is set
func checkTarget(target string, overwrite bool) error {
	info, err := os.Lstat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errs.Wrap(errs.ErrDestinationUnavailable, err, "reading %s", target)
	}

	if info.IsDir() {
		return errs.Conflict("%s is a directory", target)
	}
	if !overwrite {
		return errs.Conflict("%s already exists", target)
	}
	return nil
}

func copyInto(dst *os.File, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return errs.Wrap(errs.ErrInvalidInput, err, "opening source %s", src)
	}
	defer in.Close()

	if _, err := io.Copy(dst, in); err != nil {
		return errors.Errorf("copying %s: %w", src, err)
	}
	if err := dst.Sync(); err != nil {
		return errors.Errorf("syncing staged copy: %w", err)
	}
	return nil
}

// 🔒 place moves the staged file to target. Without overwrite a hard link is
// used so a file created concurrently under the same name is never replaced.
func place(tmpPath, target string, overwrite bool) error {
	if !overwrite {
		err := os.Link(tmpPath, target)
		if err == nil {
			return nil
		}
		if errors.Is(err, fs.ErrExist) {
			return errs.Conflict("%s already exists", target)
		}
		// filesystem without hard links, fall back to a checked rename
		if err := checkTarget(target, false); err != nil {
			return err
		}
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return errors.Errorf("renaming into place: %w", err)
	}
	return nil
}
