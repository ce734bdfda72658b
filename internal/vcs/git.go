// Package vcs wraps go-git repository detection behind a small interface so
// services can be tested without a real repository.
package vcs

import (
	"github.com/go-git/go-git/v5"
)

// Repository is an opened repository.
type Repository interface {
	// Root returns the worktree root path of the repository.
	Root() string
}

// Opener opens git repositories.
type Opener interface {
	// PlainOpenWithDetect opens a repository, detecting .git in parents.
	PlainOpenWithDetect(path string) (Repository, error)
}

// GitOpener opens git repositories using go-git.
type GitOpener struct{}

// DefaultOpener returns the go-git backed opener.
func DefaultOpener() Opener {
	return &GitOpener{}
}

// PlainOpenWithDetect opens a git repository, detecting .git in parent
// directories.
func (o *GitOpener) PlainOpenWithDetect(path string) (Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, err
	}
	return &gitRepository{repo: repo}, nil
}

type gitRepository struct {
	repo *git.Repository
}

func (r *gitRepository) Root() string {
	wt, err := r.repo.Worktree()
	if err != nil {
		// Bare repository: no worktree root to report.
		return ""
	}
	return wt.Filesystem.Root()
}
