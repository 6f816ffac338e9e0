// Package gitinfo stamps builds with the project's current git commit.
package gitinfo

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Info describes HEAD of the repository containing the project.
type Info struct {
	Commit     string
	Branch     string // Empty for a detached HEAD
	CommitTime time.Time
}

// Short returns the abbreviated commit hash.
func (i Info) Short() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}

// IsZero reports whether no repository information was found.
func (i Info) IsZero() bool { return i.Commit == "" }

// Lookup reads HEAD of the repository containing dir, searching parent
// directories. A directory outside any repository, or a repository without
// commits, yields a zero Info and no error.
func Lookup(dir string) (Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Info{}, nil
		}
		return Info{}, fmt.Errorf("open repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Info{}, nil
		}
		return Info{}, fmt.Errorf("resolve HEAD: %w", err)
	}

	info := Info{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}
	if commit, err := repo.CommitObject(ref.Hash()); err == nil {
		info.CommitTime = commit.Committer.When
	}
	return info, nil
}
