// Package walker enumerates candidate files under a directory tree.
package walker

import (
	"context"
	"os"
	"path/filepath"
	"sigscan/pkg/domain"
	"sigscan/pkg/logger"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
)

// maxRootLinks bounds how many symlinks are followed to resolve a walk root.
const maxRootLinks = 40

// DefaultExtensions is the allow-list used when Options.Extensions is empty.
func DefaultExtensions() []string {
	return []string{"exe", "dll"}
}

// Options configure a Walker.
type Options struct {
	// Extensions lists the executable-class extensions, without the leading dot.
	Extensions []string
	// CaseInsensitive makes "A.EXE" match "exe". Matching is exact by default.
	CaseInsensitive bool
}

// Walker walks a billy filesystem and yields the files a scan should digest.
type Walker struct {
	fs              billy.Filesystem
	extensions      map[string]struct{}
	caseInsensitive bool
}

// New creates a Walker over fs.
func New(fs billy.Filesystem, opts Options) *Walker {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions()
	}

	w := &Walker{
		fs:              fs,
		extensions:      make(map[string]struct{}, len(exts)),
		caseInsensitive: opts.CaseInsensitive,
	}
	for _, ext := range exts {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext == "" {
			continue
		}
		if w.caseInsensitive {
			ext = strings.ToLower(ext)
		}
		w.extensions[ext] = struct{}{}
	}

	return w
}

// Walk traverses root depth-first on its own goroutine and sends every
// regular file with an allowed extension. Entries that fail to stat or list
// are skipped; an unreadable branch never stops the rest of the walk. A root
// that is a symlink to a directory is followed and its entries are reported
// under root; symlinks below the root are not. The channel is closed when the
// walk ends or ctx is done.
func (w *Walker) Walk(ctx context.Context, root string) <-chan domain.Target {
	out := make(chan domain.Target)

	go func() {
		defer close(out)

		start := w.resolveRoot(ctx, root)
		err := util.Walk(w.fs, start, func(path string, info os.FileInfo, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if start != root {
				if rel, relErr := filepath.Rel(start, path); relErr == nil {
					path = filepath.Join(root, rel)
				}
			}
			if err != nil {
				logger.Debug(ctx, "skipping unreadable entry", zap.String("path", path), zap.Error(err))

				return nil
			}
			if !info.Mode().IsRegular() || !w.Allowed(path) {
				return nil
			}

			select {
			case out <- domain.Target{Path: path, Executable: true}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			logger.Debug(ctx, "walk stopped", zap.String("root", root), zap.Error(err))
		}
	}()

	return out
}

// resolveRoot returns the directory a symlinked root points at, or root
// itself when it is not a link to a directory.
func (w *Walker) resolveRoot(ctx context.Context, root string) string {
	if info, err := w.fs.Stat(root); err != nil || !info.IsDir() {
		return root
	}

	target := root
	for range maxRootLinks {
		info, err := w.fs.Lstat(target)
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			break
		}
		link, err := w.fs.Readlink(target)
		if err != nil {
			logger.Debug(ctx, "could not read root link", zap.String("root", root), zap.Error(err))

			return root
		}
		if !filepath.IsAbs(link) {
			link = filepath.Join(filepath.Dir(target), link)
		}
		target = link
	}

	return target
}

// Allowed reports whether path carries an allowed extension. A base name
// whose only dot is the leading one, such as ".exe", has no extension.
func (w *Walker) Allowed(path string) bool {
	base := filepath.Base(path)
	if strings.LastIndex(base, ".") <= 0 {
		return false
	}
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	if ext == "" {
		return false
	}
	if w.caseInsensitive {
		ext = strings.ToLower(ext)
	}
	_, ok := w.extensions[ext]

	return ok
}
