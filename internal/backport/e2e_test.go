package backport

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/matebackport/internal/git"
	"github.com/thomas-vilte/matebackport/internal/message"
	"github.com/thomas-vilte/matebackport/internal/models"
)

type repos struct {
	upstream   string
	downstream string
	shas       []string
	base       string
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

func initRepo(t *testing.T, name, email string) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.name", name)
	runGit(t, dir, "config", "user.email", email)
	runGit(t, dir, "config", "commit.gpgsign", "false")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// setupRepos creates a V8 clone with two commits on top of a base and a Node.js
// checkout vendoring the base in deps/v8.
func setupRepos(t *testing.T, nodeMajor string) repos {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	upstream := initRepo(t, "V8 Dev", "v8dev@chromium.org")
	writeFile(t, upstream, "src/a.cc", "one\n")
	runGit(t, upstream, "add", ".")
	runGit(t, upstream, "commit", "-q", "-m", "base")

	writeFile(t, upstream, "src/a.cc", "two\n")
	runGit(t, upstream, "commit", "-q", "-am", "[turbofan] Fix a\n\nBug: v8:1234")
	first := runGit(t, upstream, "rev-parse", "HEAD")

	writeFile(t, upstream, "src/b.cc", "new\n")
	runGit(t, upstream, "add", ".")
	runGit(t, upstream, "commit", "-q", "-m", "[api] Add b")
	second := runGit(t, upstream, "rev-parse", "HEAD")

	downstream := initRepo(t, "Node Dev", "dev@nodejs.org")
	writeNodeTree(t, downstream, nodeMajor)
	writeFile(t, downstream, "deps/v8/src/a.cc", "one\n")
	runGit(t, downstream, "add", ".")
	runGit(t, downstream, "commit", "-q", "-m", "initial")

	return repos{
		upstream:   upstream,
		downstream: downstream,
		shas:       []string{first, second},
		base:       runGit(t, downstream, "rev-parse", "HEAD"),
	}
}

// diverge makes deps/v8/src/a.cc differ from the upstream base so the first
// upstream patch no longer applies.
func (r *repos) diverge(t *testing.T) {
	t.Helper()
	writeFile(t, r.downstream, "deps/v8/src/a.cc", "uno\n")
	runGit(t, r.downstream, "commit", "-q", "-am", "local change")
	r.base = runGit(t, r.downstream, "rev-parse", "HEAD")
}

// fixingResolver resolves a conflict the way the operator would, by writing
// the upstream content into the vendored file.
func (r repos) fixingResolver(t *testing.T) *ackResolver {
	return &ackResolver{onResolve: func(*models.PatchRecord) error {
		writeFile(t, r.downstream, "deps/v8/src/a.cc", "two\n")
		return nil
	}}
}

func (r repos) service(t *testing.T, confirm bool, opts ...Option) *Service {
	t.Helper()
	gitService, err := git.NewGitService(
		git.WithRepoDir(git.RepoUpstream, r.upstream),
		git.WithRepoDir(git.RepoDownstream, r.downstream),
	)
	require.NoError(t, err)

	prompter := new(MockPrompter)
	prompter.On("Confirm", mock.Anything, mock.Anything, false).Return(confirm, nil).Maybe()
	return NewService(gitService, prompter, append([]Option{WithResolver(&ackResolver{})}, opts...)...)
}

func (r repos) options(shortRefs bool) models.BackportOptions {
	refs := r.shas
	if shortRefs {
		refs = []string{message.ShortSHA(r.shas[0]), message.ShortSHA(r.shas[1])}
	}
	return models.BackportOptions{
		SHAs:    refs,
		Bump:    true,
		NodeDir: r.downstream,
		V8Dir:   r.upstream,
	}
}

func TestBackportEndToEnd(t *testing.T) {
	ctx := context.Background()

	t.Run("squash lands one commit and bumps once", func(t *testing.T) {
		r := setupRepos(t, "12")
		opts := r.options(true)
		opts.Squash = true

		result, err := r.service(t, true).Backport(ctx, opts)

		require.NoError(t, err)
		assert.Equal(t, models.StrategySquash, result.Strategy)
		assert.Equal(t, r.shas, []string{result.Patches[0].SHA, result.Patches[1].SHA})

		assert.Equal(t, "2", runGit(t, r.downstream, "rev-list", "--count", "HEAD"))
		assert.Equal(t, r.base, runGit(t, r.downstream, "rev-parse", "HEAD~1"))
		assert.Equal(t, "Node Dev", runGit(t, r.downstream, "log", "-1", "--format=%an"))

		msg := runGit(t, r.downstream, "log", "-1", "--format=%B")
		assert.True(t, strings.HasPrefix(msg, "deps: V8: cherry-pick "+message.ShortSHA(r.shas[0])+" and "+message.ShortSHA(r.shas[1])))
		assert.Contains(t, msg, "Cherry-pick "+message.ShortSHA(r.shas[0])+".")
		assert.Contains(t, msg, "    [turbofan] Fix a")
		assert.Contains(t, msg, "Refs: https://github.com/v8/v8/commit/"+r.shas[1])

		assert.Equal(t, "two", runGit(t, r.downstream, "show", "HEAD:deps/v8/src/a.cc"))
		assert.Equal(t, "new", runGit(t, r.downstream, "show", "HEAD:deps/v8/src/b.cc"))
		assert.Contains(t, runGit(t, r.downstream, "show", "HEAD:common.gypi"), "'-node.13'")
		assert.Empty(t, runGit(t, r.downstream, "status", "--porcelain"))
	})

	t.Run("declined squash leaves the checkout untouched", func(t *testing.T) {
		r := setupRepos(t, "12")
		opts := r.options(false)
		opts.Squash = true

		_, err := r.service(t, false).Backport(ctx, opts)

		require.Error(t, err)
		assert.Equal(t, r.base, runGit(t, r.downstream, "rev-parse", "HEAD"))
		assert.Empty(t, runGit(t, r.downstream, "status", "--porcelain"))
	})

	t.Run("preserve author keeps upstream authorship per commit", func(t *testing.T) {
		r := setupRepos(t, "12")
		opts := r.options(false)
		opts.PreserveOriginalAuthor = true

		_, err := r.service(t, false).Backport(ctx, opts)

		require.NoError(t, err)
		assert.Equal(t, "3", runGit(t, r.downstream, "rev-list", "--count", "HEAD"))
		assert.Equal(t, "V8 Dev\nV8 Dev", runGit(t, r.downstream, "log", "-2", "--format=%an"))
		assert.Equal(t, "Node Dev", runGit(t, r.downstream, "log", "-1", "--format=%cn"))

		assert.Equal(t, "deps: V8: cherry-pick "+message.ShortSHA(r.shas[1]), runGit(t, r.downstream, "log", "-1", "--format=%s"))
		assert.Equal(t, "deps: V8: cherry-pick "+message.ShortSHA(r.shas[0]), runGit(t, r.downstream, "log", "-1", "--format=%s", "HEAD~1"))
		assert.NotContains(t, runGit(t, r.downstream, "log", "-1", "--format=%B"), "Co-authored-by")

		assert.Contains(t, runGit(t, r.downstream, "show", "HEAD~1:common.gypi"), "'-node.13'")
		assert.Contains(t, runGit(t, r.downstream, "show", "HEAD:common.gypi"), "'-node.14'")
		assert.Empty(t, runGit(t, r.downstream, "status", "--porcelain"))
	})

	t.Run("default commits each patch as the operator", func(t *testing.T) {
		r := setupRepos(t, "8")
		opts := r.options(true)
		opts.NodeMajorVersion = 8

		result, err := r.service(t, false).Backport(ctx, opts)

		require.NoError(t, err)
		assert.Equal(t, models.StrategyPatchThenCommit, result.Strategy)
		assert.Equal(t, 29, result.Version.Patch)

		assert.Equal(t, "3", runGit(t, r.downstream, "rev-list", "--count", "HEAD"))
		assert.Equal(t, "Node Dev\nNode Dev", runGit(t, r.downstream, "log", "-2", "--format=%an"))

		// git strips the trailing indent of the blank line.
		body := runGit(t, r.downstream, "log", "-1", "--format=%B", "HEAD~1")
		want := "deps: V8: cherry-pick " + message.ShortSHA(r.shas[0]) + "\n\n" +
			"Original commit message:\n\n" +
			"    [turbofan] Fix a\n\n" +
			"    Bug: v8:1234\n\n" +
			"Refs: https://github.com/v8/v8/commit/" + r.shas[0]
		assert.Equal(t, want, body)

		assert.Contains(t, runGit(t, r.downstream, "show", "HEAD~1:deps/v8/include/v8-version.h"), "#define V8_PATCH_LEVEL 28")
		assert.Contains(t, runGit(t, r.downstream, "show", "HEAD:deps/v8/include/v8-version.h"), "#define V8_PATCH_LEVEL 29")
		assert.Empty(t, runGit(t, r.downstream, "status", "--porcelain"))
	})

	t.Run("an unknown reference fails before touching the checkout", func(t *testing.T) {
		r := setupRepos(t, "12")
		opts := r.options(false)
		opts.SHAs = []string{r.shas[0], "does-not-exist"}

		_, err := r.service(t, false).Backport(ctx, opts)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "does-not-exist")
		assert.Equal(t, r.base, runGit(t, r.downstream, "rev-parse", "HEAD"))
	})

	t.Run("a conflicting mailbox patch is continued and co-authored", func(t *testing.T) {
		r := setupRepos(t, "12")
		r.diverge(t)
		resolver := r.fixingResolver(t)
		opts := r.options(false)
		opts.SHAs = r.shas[:1]
		opts.PreserveOriginalAuthor = true

		result, err := r.service(t, false, WithResolver(resolver)).Backport(ctx, opts)

		require.NoError(t, err)
		assert.True(t, result.Patches[0].HadConflicts)
		assert.Equal(t, r.shas[:1], resolver.resolved)

		assert.Equal(t, r.base, runGit(t, r.downstream, "rev-parse", "HEAD~1"))
		assert.Equal(t, "V8 Dev", runGit(t, r.downstream, "log", "-1", "--format=%an"))
		assert.Equal(t, "deps: V8: backport "+message.ShortSHA(r.shas[0]), runGit(t, r.downstream, "log", "-1", "--format=%s"))
		body := runGit(t, r.downstream, "log", "-1", "--format=%B")
		assert.True(t, strings.HasSuffix(body, "Co-authored-by: Node Dev <dev@nodejs.org>"), body)

		assert.Equal(t, "two", runGit(t, r.downstream, "show", "HEAD:deps/v8/src/a.cc"))
		assert.Contains(t, runGit(t, r.downstream, "show", "HEAD:common.gypi"), "'-node.13'")
		assert.Empty(t, runGit(t, r.downstream, "status", "--porcelain"))
	})

	t.Run("a conflicting patch is titled as a backport", func(t *testing.T) {
		r := setupRepos(t, "12")
		r.diverge(t)
		opts := r.options(false)

		result, err := r.service(t, false, WithResolver(r.fixingResolver(t))).Backport(ctx, opts)

		require.NoError(t, err)
		assert.True(t, result.Patches[0].HadConflicts)
		assert.False(t, result.Patches[1].HadConflicts)

		assert.Equal(t, "deps: V8: cherry-pick "+message.ShortSHA(r.shas[1]), runGit(t, r.downstream, "log", "-1", "--format=%s"))
		assert.Equal(t, "deps: V8: backport "+message.ShortSHA(r.shas[0]), runGit(t, r.downstream, "log", "-1", "--format=%s", "HEAD~1"))
		assert.Equal(t, "Node Dev\nNode Dev", runGit(t, r.downstream, "log", "-2", "--format=%an"))
		assert.Empty(t, runGit(t, r.downstream, "status", "--porcelain"))
	})
}
