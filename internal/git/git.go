// Package git wraps the git commands used to fetch and update remote
// content sources.
package git

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/thoreinstein/ccdir/internal/errors"
)

// ErrInvalidURL is returned for URLs git should not be handed.
var ErrInvalidURL = errors.New("invalid git URL")

var (
	allowedSchemes = []string{"https://", "http://", "ssh://", "git://", "file://"}
	// scpLike matches user@host:path/repo.git.
	scpLike = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:[A-Za-z0-9._/~-]+\.git$`)
)

// ValidateURL accepts URLs with a known scheme or the scp-like SSH form.
// Option-looking strings and transport helpers ("ext::") are rejected.
func ValidateURL(url string) error {
	switch {
	case url == "":
		return errors.Wrap(ErrInvalidURL, "empty URL")
	case strings.HasPrefix(url, "-"), strings.Contains(url, "::"):
		return errors.Wrapf(ErrInvalidURL, "%q", url)
	}
	for _, s := range allowedSchemes {
		if strings.HasPrefix(url, s) && len(url) > len(s) {
			return nil
		}
	}
	if scpLike.MatchString(url) {
		return nil
	}
	return errors.Wrapf(ErrInvalidURL, "%q", url)
}

// IsURL reports whether s is a git URL rather than a local path.
func IsURL(s string) bool {
	return ValidateURL(s) == nil
}

// CloneOptions configures Clone.
type CloneOptions struct {
	// Depth limits history; 0 clones everything.
	Depth int
	// Ref is a branch or tag to check out instead of the default branch.
	Ref string
	// Output receives git's progress output. Nil discards it.
	Output io.Writer
}

// Clone clones url into dest.
func Clone(ctx context.Context, url, dest string, opts CloneOptions) error {
	if err := ValidateURL(url); err != nil {
		return err
	}
	args := []string{"clone"}
	if opts.Depth > 0 {
		args = append(args, "--depth="+strconv.Itoa(opts.Depth))
	}
	if opts.Ref != "" {
		args = append(args, "--branch", opts.Ref)
	}
	args = append(args, "--", url, dest)

	if err := run(ctx, "", opts.Output, args...); err != nil {
		return errors.Wrap(err, "git clone failed")
	}
	return nil
}

// Pull performs a fast-forward-only pull in repoPath.
func Pull(ctx context.Context, repoPath string, out io.Writer) error {
	if err := run(ctx, repoPath, out, "pull", "--ff-only"); err != nil {
		return errors.Wrap(err, "git pull failed")
	}
	return nil
}

// Head returns the commit hash checked out in repoPath.
func Head(ctx context.Context, repoPath string) (string, error) {
	var buf bytes.Buffer
	if err := run(ctx, repoPath, &buf, "rev-parse", "HEAD"); err != nil {
		return "", errors.Wrap(err, "git rev-parse failed")
	}
	return strings.TrimSpace(buf.String()), nil
}

// ValidateRemote checks that repoPath holds a git checkout.
func ValidateRemote(repoPath string) error {
	gitDir := filepath.Join(repoPath, ".git")
	info, err := os.Stat(gitDir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Newf("not a git repository: %s", repoPath)
		}
		return errors.Wrap(err, "checking git directory")
	}
	if !info.IsDir() {
		return errors.Newf(".git is not a directory: %s", gitDir)
	}
	return nil
}

func run(ctx context.Context, dir string, out io.Writer, args ...string) error {
	if out == nil {
		out = io.Discard
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = io.MultiWriter(out, &stderr)
	// Never block on a credential prompt.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return errors.WithDetail(err, msg)
		}
		return err
	}
	return nil
}
