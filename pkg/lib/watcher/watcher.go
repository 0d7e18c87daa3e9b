// Package watcher detects file changes under a directory tree by polling.
//
// There is no hashing or content diffing: a file is changed when it is seen
// for the first time or when its modification time, truncated to whole
// seconds, differs from the last observed value. Deleted files are not
// reported and stay in the Tracked map.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// MaxDepth bounds recursion below the root. Directory identities already
// stop symlink cycles; this is the backstop for anything that defeats them.
const MaxDepth = 64

// Tracked maps an absolute file path to its last seen modification time in
// seconds since the epoch.
type Tracked map[string]int64

// Rules lists the names the scanner skips.
type Rules struct {
	// Dirs are directory names, matched at every level.
	Dirs []string
	// Files are file names.
	Files []string
	// Exts are extensions without the leading dot.
	Exts []string
}

// ScanError reports a directory that could not be read.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// Scanner runs Scan with optional logging and a hook for modified files.
type Scanner struct {
	Rules  Rules
	Logger *log.Logger
	// OnModified is called for tracked files whose timestamp changed. It is
	// not called for files seen for the first time.
	OnModified func(path string)
}

// Scan walks root and records every file that is new or has a different
// modification time in tracked. It reports whether anything changed.
//
// Symlinks are followed, but a directory reachable through several paths is
// scanned once per call, under the first path met in name order.
func Scan(root string, rules Rules, tracked Tracked) (bool, error) {
	s := Scanner{Rules: rules}
	return s.Scan(root, tracked)
}

func (s *Scanner) Scan(root string, tracked Tracked) (bool, error) {
	return s.ScanContext(context.Background(), root, tracked)
}

// ScanContext is Scan that stops between directories once ctx is done and
// returns ctx.Err(). Entries recorded before that stay in tracked.
func (s *Scanner) ScanContext(ctx context.Context, root string, tracked Tracked) (bool, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return false, &ScanError{Path: root, Err: err}
	}
	w := &walk{Scanner: s, ctx: ctx, tracked: tracked, visited: map[string]bool{}}
	return w.scanDir(abs, 0)
}

// walk is the state of one scan. visited holds the resolved path of every
// directory entered so far, so each real directory is read at most once no
// matter how many symlinks lead to it.
type walk struct {
	*Scanner
	ctx     context.Context
	tracked Tracked
	visited map[string]bool
}

// enter reports whether dir has not been scanned yet and marks it.
func (w *walk) enter(dir string) bool {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		resolved = dir
	}
	if w.visited[resolved] {
		return false
	}
	w.visited[resolved] = true
	return true
}

func (w *walk) scanDir(dir string, depth int) (bool, error) {
	if err := w.ctx.Err(); err != nil {
		return false, err
	}
	if !w.enter(dir) {
		w.debug("directory already scanned, skipping", "path", dir)
		return false, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, &ScanError{Path: dir, Err: err}
	}

	changed := false
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)

		info, err := os.Stat(path)
		if err != nil {
			// Dangling symlink or a file removed mid-scan.
			w.debug("skipping unreadable entry", "path", path, "err", err)
			continue
		}

		if info.IsDir() {
			if slices.Contains(w.Rules.Dirs, name) {
				continue
			}
			if depth+1 > MaxDepth {
				w.debug("max depth reached, not descending", "path", path)
				continue
			}
			sub, err := w.scanDir(path, depth+1)
			if err != nil {
				return false, err
			}
			changed = changed || sub
			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}
		if slices.Contains(w.Rules.Exts, Extension(name)) || slices.Contains(w.Rules.Files, name) {
			continue
		}

		mtime := info.ModTime().Unix()
		prev, seen := w.tracked[path]
		switch {
		case !seen:
			w.tracked[path] = mtime
			changed = true
		case prev != mtime:
			w.tracked[path] = mtime
			w.debug("file modified", "path", path, "mtime", mtime)
			if w.OnModified != nil {
				w.OnModified(path)
			}
			changed = true
		}
	}
	return changed, nil
}

func (s *Scanner) debug(msg string, keyvals ...any) {
	if s.Logger != nil {
		s.Logger.Debug(msg, keyvals...)
	}
}

// Extension returns the text after the last dot of a file name, without the
// dot. Names without a dot and dot-files such as ".env" have no extension.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i+1:]
}
