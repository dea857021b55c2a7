package git

import (
	stderrors "errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	ferrors "git.home.luguber.info/inful/sitemapper/internal/foundation/errors"
)

// History answers last-commit queries for files in one repository.
// It is safe for concurrent use.
type History struct {
	repo *git.Repository
	root string

	mu    sync.Mutex
	cache map[string]lastCommit
}

type lastCommit struct {
	when  time.Time
	found bool
}

// Open finds the repository containing path, searching parent directories.
func Open(path string) (*History, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryGit, "open repository").
			WithContext("path", path).
			Build()
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryGit, "repository has no worktree").
			WithContext("path", path).
			Build()
	}

	return &History{
		repo:  repo,
		root:  canonical(wt.Filesystem.Root()),
		cache: make(map[string]lastCommit),
	}, nil
}

// Root returns the worktree root.
func (h *History) Root() string { return h.root }

// LastModified returns the author time of the newest commit that changed
// path. found is false for files outside the worktree, untracked files and
// repositories without commits.
func (h *History) LastModified(path string) (when time.Time, found bool, err error) {
	rel, ok := h.relative(path)
	if !ok {
		return time.Time{}, false, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.cache[rel]; ok {
		return c.when, c.found, nil
	}

	c, err := h.lookup(rel)
	if err != nil {
		return time.Time{}, false, ferrors.WrapError(err, ferrors.CategoryGit, "read file history").
			WithContext("path", rel).
			Build()
	}
	h.cache[rel] = c
	return c.when, c.found, nil
}

func (h *History) lookup(rel string) (lastCommit, error) {
	iter, err := h.repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
			return lastCommit{}, nil
		}
		return lastCommit{}, err
	}
	defer iter.Close()

	commit, err := iter.Next()
	if stderrors.Is(err, io.EOF) {
		return lastCommit{}, nil
	}
	if err != nil {
		return lastCommit{}, err
	}
	return lastCommit{when: commit.Author.When, found: true}, nil
}

func (h *History) relative(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(h.root, canonical(abs))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// canonical resolves symlinks so temp directories compare equal on systems
// where they live behind a link.
func canonical(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return filepath.Clean(p)
}
