package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/thomas-vilte/matebackport/internal/errors"
	"github.com/thomas-vilte/matebackport/internal/logger"
	"github.com/thomas-vilte/matebackport/internal/models"
)

// Repo names one of the two repositories a backport touches.
type Repo string

const (
	// RepoUpstream is the local V8 clone patches are generated from.
	RepoUpstream Repo = "v8"
	// RepoDownstream is the Node.js checkout that vendors V8 in deps/v8.
	RepoDownstream Repo = "node"
)

type GitService struct {
	gitPath string
	dirs    map[Repo]string
	gpgSign bool
}

type Option func(*GitService)

// WithRepoDir sets the working directory commands for repo run in.
func WithRepoDir(repo Repo, dir string) Option {
	return func(s *GitService) {
		s.dirs[repo] = dir
	}
}

// WithGPGSign splices -S into commit and am invocations.
func WithGPGSign(sign bool) Option {
	return func(s *GitService) {
		s.gpgSign = sign
	}
}

func NewGitService(opts ...Option) (*GitService, error) {
	p, err := exec.LookPath("git")
	if err != nil {
		return nil, errors.ErrGitNotFound.WithError(err)
	}

	s := &GitService{
		gitPath: p,
		dirs:    make(map[Repo]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the working directory configured for repo.
func (s *GitService) Dir(repo Repo) string {
	return s.dirs[repo]
}

// SignArgs returns the GPG signing arguments for commit-creating commands.
func (s *GitService) SignArgs() []string {
	if s.gpgSign {
		return []string{"-S"}
	}
	return nil
}

// Run runs git in repo's directory, feeding stdin when it is not empty, and
// returns the captured stdout. A nonzero exit is returned as ErrGitCommand
// with the arguments and stderr attached.
func (s *GitService) Run(ctx context.Context, repo Repo, stdin string, args ...string) (string, error) {
	log := logger.FromContext(ctx)

	cmd := exec.CommandContext(ctx, s.gitPath, args...)
	cmd.Dir = s.dirs[repo]
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	log.Debug("running git", "repo", string(repo), "args", strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		return stdout.String(), errors.ErrGitCommand.
			WithError(err).
			WithContext("repo", string(repo)).
			WithContext("args", args).
			WithContext("stderr", strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// RevParse resolves ref in the upstream repository to a full commit id.
func (s *GitService) RevParse(ctx context.Context, ref string) (string, error) {
	out, err := s.Run(ctx, RepoUpstream, "", "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", errors.ErrResolveRef.WithError(err).WithContext("ref", ref)
	}
	return strings.TrimSpace(out), nil
}

// FormatPatch returns the mailbox-formatted patch of the single commit sha.
func (s *GitService) FormatPatch(ctx context.Context, sha string) (string, error) {
	out, err := s.Run(ctx, RepoUpstream, "", "format-patch", "--stdout", fmt.Sprintf("%s^..%s", sha, sha))
	if err != nil {
		return "", errors.ErrGeneratePatch.WithError(err).WithContext("sha", sha)
	}
	return out, nil
}

// CommitMessage returns the raw message of sha without git's trailing newlines.
func (s *GitService) CommitMessage(ctx context.Context, sha string) (string, error) {
	out, err := s.Run(ctx, RepoUpstream, "", "log", "--format=%B", "-n", "1", sha)
	if err != nil {
		return "", errors.ErrGeneratePatch.WithError(err).WithContext("sha", sha)
	}
	return strings.TrimRight(out, "\n"), nil
}

// Apply feeds patch to git apply or git am in the downstream repository.
func (s *GitService) Apply(ctx context.Context, method models.ApplyMethod, patch string, args ...string) error {
	full := []string{string(method)}
	if method == models.ApplyMailbox {
		full = append(full, s.SignArgs()...)
	}
	full = append(full, args...)
	_, err := s.Run(ctx, RepoDownstream, patch, full...)
	return err
}

// AmContinue finishes a mailbox apply after conflicts were resolved.
func (s *GitService) AmContinue(ctx context.Context) error {
	args := append([]string{"am"}, s.SignArgs()...)
	args = append(args, "--continue")
	_, err := s.Run(ctx, RepoDownstream, "", args...)
	return err
}

func (s *GitService) Add(ctx context.Context, paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	if _, err := s.Run(ctx, RepoDownstream, "", args...); err != nil {
		return errors.ErrAddFile.WithError(err).WithContext("file", strings.Join(paths, " "))
	}
	return nil
}

// Commit creates a commit in the downstream repository from title and body,
// passed as separate -m arguments.
func (s *GitService) Commit(ctx context.Context, title, body string) error {
	args := append([]string{"commit"}, s.SignArgs()...)
	args = append(args, "-m", title, "-m", body)
	if _, err := s.Run(ctx, RepoDownstream, "", args...); err != nil {
		return errors.ErrCreateCommit.WithError(err)
	}
	return nil
}

// Amend rewrites HEAD of the downstream repository with the staged changes
// and the given message.
func (s *GitService) Amend(ctx context.Context, title, body string) error {
	args := append([]string{"commit"}, s.SignArgs()...)
	args = append(args, "--amend", "-m", title, "-m", body)
	if _, err := s.Run(ctx, RepoDownstream, "", args...); err != nil {
		return errors.ErrAmendCommit.WithError(err)
	}
	return nil
}

// ConfigValue reads a git config entry as seen from the downstream repository.
func (s *GitService) ConfigValue(ctx context.Context, key string) (string, error) {
	out, err := s.Run(ctx, RepoDownstream, "", "config", key)
	if err != nil {
		return "", errors.ErrGetGitUser.WithError(err).WithContext("key", key)
	}
	return strings.TrimSpace(out), nil
}
