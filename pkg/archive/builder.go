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
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/dropzip/pkg/errs"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultName is used when several items are dropped and no name was given
const DefaultName = "Archive"

// Ext is the archive file extension
const Ext = ".zip"

const (
	clippingName = "clipping.txt"
	resolveLimit = 8
	fileMode     = 0o644
)

// 🗜️ Compression selects how entries are stored
type Compression string

const (
	CompressionDeflate Compression = "deflate"
	CompressionStore   Compression = "store"
)

func (c Compression) method() (uint16, error) {
	switch c {
	case "", CompressionDeflate:
		return zip.Deflate, nil
	case CompressionStore:
		return zip.Store, nil
	default:
		return 0, errs.InvalidInput("unknown compression %q", string(c))
	}
}

// 📊 ProgressFunc is called after each entry is written
type ProgressFunc func(done, total int)

type buildOptions struct {
	workDir     string
	compression Compression
	progress    ProgressFunc
	now         func() time.Time
}

// BuildOption configures Build
type BuildOption func(*buildOptions)

// WithWorkDir writes the archive into dir instead of a fresh temp directory
func WithWorkDir(dir string) BuildOption {
	return func(o *buildOptions) { o.workDir = dir }
}

// WithCompression sets the entry compression method
func WithCompression(c Compression) BuildOption {
	return func(o *buildOptions) { o.compression = c }
}

// WithProgress registers a progress callback
func WithProgress(fn ProgressFunc) BuildOption {
	return func(o *buildOptions) { o.progress = fn }
}

// 📄 source is one file headed for the archive
type source struct {
	name string // entry name, slash separated
	path string // on-disk path, empty for text
	data []byte // text content
	info fs.FileInfo
}

// 📦 resolved holds everything one item contributes to the archive
type resolved struct {
	root    string   // top level entry name
	isDir   bool     // whether sources live under root/
	sources []source // names relative to root
}

// 🏗️ Build writes every item of req into a single zip archive.
//
// When no work dir is given the archive is written into a new temp directory
// which the caller owns.
func Build(ctx context.Context, req Request, opts ...BuildOption) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	o := &buildOptions{compression: CompressionDeflate, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	if len(req.Items) == 0 {
		return nil, errs.InvalidInput("no items to archive")
	}

	method, err := o.compression.method()
	if err != nil {
		return nil, err
	}

	name, err := archiveName(req)
	if err != nil {
		return nil, err
	}

	items, err := resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	sources := flatten(items)

	ownWorkDir := false
	if o.workDir == "" {
		o.workDir, err = os.MkdirTemp("", "dropzip-*")
		if err != nil {
			return nil, errors.Errorf("creating work directory: %w", err)
		}
		ownWorkDir = true
	}

	out := filepath.Join(o.workDir, name)
	logger.Debug().Str("archive", out).Int("entries", len(sources)).Msg("building archive")

	size, sum, err := writeArchive(out, sources, method, o)
	if err != nil {
		if ownWorkDir {
			os.RemoveAll(o.workDir)
		} else {
			os.Remove(out)
		}
		return nil, err
	}

	logger.Debug().Str("archive", out).Int64("size", size).Str("sha256", sum).Msg("archive built")

	return &Result{
		Path:     out,
		Entries:  len(sources),
		Size:     size,
		Checksum: sum,
		Success:  true,
	}, nil
}

// 🏷️ archiveName picks the archive file name for req
func archiveName(req Request) (string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = DefaultName
		if len(req.Items) == 1 {
			if p, ok := req.Items[0].(PathItem); ok {
				base := filepath.Base(absPath(p.Path))
				if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" && stem != "." && stem != string(filepath.Separator) {
					name = stem
				}
			}
		}
	}

	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", errs.InvalidInput("archive name %q must not contain path separators", name)
	}

	if !strings.EqualFold(filepath.Ext(name), Ext) {
		name += Ext
	}
	return name, nil
}

// absPath cleans p and makes it absolute, falling back to the cleaned path
func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

// 🔍 resolveItems stats and walks every item, keeping input order
func resolveItems(ctx context.Context, items []Item) ([]resolved, error) {
	out := make([]resolved, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveLimit)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			r, err := resolveItem(ctx, item)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveItem(ctx context.Context, item Item) (resolved, error) {
	switch it := item.(type) {
	case TextItem:
		return resolved{
			root:    clippingName,
			sources: []source{{data: []byte(it.Text)}},
		}, nil
	case PathItem:
		return resolvePath(ctx, it.Path)
	default:
		return resolved{}, errs.InvalidInput("unsupported item %T", item)
	}
}

func resolvePath(ctx context.Context, p string) (resolved, error) {
	if strings.TrimSpace(p) == "" {
		return resolved{}, errs.InvalidInput("empty path")
	}
	p = absPath(p)

	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return resolved{}, errs.Wrap(errs.ErrInvalidInput, err, "%s does not exist", p)
		}
		return resolved{}, errs.Wrap(errs.ErrInvalidInput, err, "reading %s", p)
	}

	// "..", "." and friends are absolute by now, so the root is a real name
	root := filepath.Base(p)
	if root == string(filepath.Separator) || root == "/" || root == "." {
		return resolved{}, errs.InvalidInput("cannot archive the filesystem root %s", p)
	}

	if info.Mode().IsRegular() {
		return resolved{root: root, sources: []source{{path: p, info: info}}}, nil
	}
	if !info.IsDir() {
		return resolved{}, errs.InvalidInput("%s is not a regular file or directory", p)
	}

	logger := zerolog.Ctx(ctx)
	var sources []source
	err = filepath.WalkDir(p, func(walked string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %s: %w", walked, err)
		}
		if d.IsDir() {
			return nil
		}

		fi, err := os.Stat(walked)
		if err != nil {
			logger.Debug().Str("path", walked).Err(err).Msg("skipping unreadable entry")
			return nil
		}
		if !fi.Mode().IsRegular() {
			logger.Debug().Str("path", walked).Str("mode", fi.Mode().String()).Msg("skipping non-regular file")
			return nil
		}

		rel, err := filepath.Rel(p, walked)
		if err != nil {
			return errors.Errorf("relativizing %s: %w", walked, err)
		}
		sources = append(sources, source{name: filepath.ToSlash(rel), path: walked, info: fi})
		return nil
	})
	if err != nil {
		return resolved{}, errs.Wrap(errs.ErrInvalidInput, err, "reading directory %s", p)
	}

	return resolved{root: root, isDir: true, sources: sources}, nil
}

// 🧮 flatten assigns final entry names, renaming clashing roots Finder style
func flatten(items []resolved) []source {
	taken := make(map[string]bool, len(items))
	var out []source

	for _, r := range items {
		root := uniqueName(r.root, r.isDir, taken)
		taken[strings.ToLower(root)] = true

		for _, s := range r.sources {
			if r.isDir {
				s.name = path.Join(root, s.name)
			} else {
				s.name = root
			}
			out = append(out, s)
		}
	}
	return out
}

func uniqueName(name string, isDir bool, taken map[string]bool) string {
	if !taken[strings.ToLower(name)] {
		return name
	}

	stem, ext := name, ""
	if !isDir {
		ext = path.Ext(name)
		stem = strings.TrimSuffix(name, ext)
	}
	for n := 2; ; n++ {
		candidate := stem + " " + strconv.Itoa(n) + ext
		if !taken[strings.ToLower(candidate)] {
			return candidate
		}
	}
}

// 📝 writeArchive writes sources to out and returns its size and checksum
func writeArchive(out string, sources []source, method uint16, o *buildOptions) (int64, string, error) {
	f, err := os.OpenFile(out, os.O_CREATE|os.O_EXCL|os.O_WRONLY, fileMode)
	if err != nil {
		return 0, "", errors.Errorf("creating archive: %w", err)
	}
	defer f.Close()

	hash := sha256.New()
	counter := &countingWriter{}
	zw := zip.NewWriter(io.MultiWriter(f, hash, counter))

	for i, s := range sources {
		if err := writeEntry(zw, s, method, o.now()); err != nil {
			zw.Close()
			return 0, "", errors.Errorf("adding %s: %w", s.name, err)
		}
		if o.progress != nil {
			o.progress(i+1, len(sources))
		}
	}

	if err := zw.Close(); err != nil {
		return 0, "", errors.Errorf("finalizing archive: %w", err)
	}
	if err := f.Sync(); err != nil {
		return 0, "", errors.Errorf("syncing archive: %w", err)
	}

	return counter.n, hex.EncodeToString(hash.Sum(nil)), nil
}

func writeEntry(zw *zip.Writer, s source, method uint16, now time.Time) error {
	var header *zip.FileHeader
	if s.info != nil {
		h, err := zip.FileInfoHeader(s.info)
		if err != nil {
			return errors.Errorf("building header: %w", err)
		}
		header = h
	} else {
		header = &zip.FileHeader{Modified: now}
		header.SetMode(fileMode)
	}
	header.Name = s.name
	header.Method = method

	w, err := zw.CreateHeader(header)
	if err != nil {
		return errors.Errorf("creating entry: %w", err)
	}

	if s.path == "" {
		if _, err := w.Write(s.data); err != nil {
			return errors.Errorf("writing text: %w", err)
		}
		return nil
	}

	in, err := os.Open(s.path)
	if err != nil {
		return errs.Wrap(errs.ErrInvalidInput, err, "opening %s", s.path)
	}
	defer in.Close()

	if _, err := io.Copy(w, in); err != nil {
		return errors.Errorf("copying %s: %w", s.path, err)
	}
	return nil
}

type countingWriter struct{ n int64 }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
