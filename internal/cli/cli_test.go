package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freqmod/gitfx/internal/git"
	"github.com/freqmod/gitfx/internal/logrefs"
	"github.com/freqmod/gitfx/internal/submodule"
	"github.com/freqmod/gitfx/internal/testutil"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the user's config and git environment out of the test and
// disables prompting.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("GITFX_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GIT_DIR", "")
	t.Setenv("GIT_WORK_TREE", "")

	orig := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }
	t.Cleanup(func() { stdinIsTerminal = orig })
}

func execute(args ...string) (string, string, error) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	root := NewRootCmd()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// diskRepo creates a repository in a temp dir with master at t=100 and
// feature at t=200.
func diskRepo(t *testing.T) (string, *testutil.Repo) {
	t.Helper()
	dir := t.TempDir()
	tr := testutil.NewDiskRepo(t, dir)
	base := tr.Commit("file.txt", "base", "base")
	feature := plumbing.NewBranchReferenceName("feature")
	tr.SetRef(feature, base)
	tip := tr.Commit("file.txt", "tip", "tip")

	tr.WriteReflog(plumbing.Master, testutil.ReflogLine(base, tip, 100, "commit: tip"))
	tr.WriteReflog(feature, testutil.ReflogLine(plumbing.ZeroHash, base, 200, "branch: Created from master"))
	return dir, tr
}

func TestLogrefsWithIndex(t *testing.T) {
	isolate(t)
	dir, tr := diskRepo(t)

	stdout, _, err := execute("--work-dir", dir, "logrefs", "--index", "0")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Current ref: ")
	assert.Contains(t, stdout, "master")
	assert.Contains(t, stdout, "000 feature: branch: Created from master\n")
	assert.Equal(t, plumbing.NewBranchReferenceName("feature"), tr.Head().Target())
}

func TestLogrefsFromSubdirectory(t *testing.T) {
	isolate(t)
	dir, tr := diskRepo(t)
	tr.Commit("sub/x.txt", "x", "x")

	_, _, err := execute("--work-dir", filepath.Join(dir, "sub"), "logrefs", "-i", "0")

	require.NoError(t, err)
	assert.Equal(t, plumbing.NewBranchReferenceName("feature"), tr.Head().Target())
}

func TestLogrefsWithExplicitGitDir(t *testing.T) {
	isolate(t)
	dir, tr := diskRepo(t)

	_, _, err := execute("--git-dir", filepath.Join(dir, ".git"), "--work-dir", dir, "logrefs", "--index", "0")

	require.NoError(t, err)
	assert.Equal(t, plumbing.NewBranchReferenceName("feature"), tr.Head().Target())
}

func TestLogrefsGitDirFromEnv(t *testing.T) {
	isolate(t)
	dir, tr := diskRepo(t)
	t.Setenv("GIT_DIR", filepath.Join(dir, ".git"))
	t.Setenv("GIT_WORK_TREE", dir)

	_, _, err := execute("logrefs", "--index", "0")

	require.NoError(t, err)
	assert.Equal(t, plumbing.NewBranchReferenceName("feature"), tr.Head().Target())
}

func TestLogrefsRequiresIndexWhenNotInteractive(t *testing.T) {
	isolate(t)
	dir, tr := diskRepo(t)

	stdout, _, err := execute("--work-dir", dir, "logrefs")

	assert.ErrorIs(t, err, logrefs.ErrIndexRequired)
	assert.Empty(t, stdout)
	assert.Equal(t, plumbing.Master, tr.Head().Target())
}

func TestLogrefsIndexOutOfRange(t *testing.T) {
	isolate(t)
	dir, tr := diskRepo(t)

	stdout, _, err := execute("--work-dir", dir, "logrefs", "--index", "5")

	assert.ErrorIs(t, err, git.ErrReferenceResolution)
	assert.Contains(t, stdout, "000 feature:")
	assert.Equal(t, plumbing.Master, tr.Head().Target())
}

func TestLogrefsFlagsOverrideConfig(t *testing.T) {
	isolate(t)
	dir, tr := diskRepo(t)
	head, err := tr.Repo.Head()
	require.NoError(t, err)
	tr.SetRef(plumbing.NewTagReferenceName("v1"), head.Hash())
	tr.WriteReflog(plumbing.NewTagReferenceName("v1"), testutil.ReflogLine(plumbing.ZeroHash, plumbing.ZeroHash, 300, "tagged"))
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("logrefs:\n  max_print_refs: 0\n  tags: true\n"), 0644))

	stdout, _, err := execute("--config", cfg, "--work-dir", dir, "logrefs", "--index", "5")
	assert.Error(t, err)
	assert.NotContains(t, stdout, "000 ")

	stdout, _, err = execute("--config", cfg, "--work-dir", dir, "logrefs", "--index", "5", "--max-print-refs", "5")
	assert.Error(t, err)
	assert.Contains(t, stdout, "000 v1: tagged\n001 feature:")

	stdout, _, err = execute("--config", cfg, "--work-dir", dir, "logrefs", "--index", "5", "--max-print-refs", "5", "--tags=false")
	assert.Error(t, err)
	assert.NotContains(t, stdout, "v1")
}

func TestLogrefsNegativeMaxPrintRefs(t *testing.T) {
	isolate(t)
	dir, _ := diskRepo(t)

	_, _, err := execute("--work-dir", dir, "logrefs", "--index", "0", "--max-print-refs", "-1")

	assert.ErrorContains(t, err, "--max-print-refs")
}

func TestLogrefsNotARepository(t *testing.T) {
	isolate(t)

	_, _, err := execute("--work-dir", t.TempDir(), "logrefs", "--index", "0")

	var be *git.BackendError
	assert.ErrorAs(t, err, &be)
}

func TestRunLogrefsWithPrompt(t *testing.T) {
	isolate(t)
	dir, tr := diskRepo(t)
	repo, err := git.Open(git.OpenOptions{WorkDir: dir})
	require.NoError(t, err)

	cmd := NewRootCmd()
	stdout := new(bytes.Buffer)
	cmd.SetOut(stdout)
	var asked string
	prompt := func(p string) (string, error) {
		asked = p
		return "0", nil
	}

	err = runLogrefs(cmd, repo, logrefs.Options{MaxPrintRefs: 20}, prompt, nil)

	require.NoError(t, err)
	assert.Equal(t, logrefs.PromptMarker, asked)
	assert.Equal(t, plumbing.NewBranchReferenceName("feature"), tr.Head().Target())
}

func TestSubmodsyncWithoutSubmodules(t *testing.T) {
	isolate(t)
	dir, _ := diskRepo(t)

	stdout, _, err := execute("--work-dir", dir, "submodsync")

	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestSubmodsyncRejectsUnknownDirtyCheck(t *testing.T) {
	isolate(t)
	dir, _ := diskRepo(t)

	_, _, err := execute("--work-dir", dir, "submodsync", "--dirty-check", "workdir")

	assert.ErrorContains(t, err, "unknown dirty check")
}

type stubRepo struct{ subs []submodule.Submodule }

func (s stubRepo) Submodules() ([]submodule.Submodule, error) { return s.subs, nil }

func TestRunSubmodsyncEmptyTree(t *testing.T) {
	require.NoError(t, runSubmodsync(context.Background(), stubRepo{}, submodule.Options{ForceCommit: true}, nil))
}

func TestLogLevelAndFormatFlags(t *testing.T) {
	isolate(t)
	dir, _ := diskRepo(t)

	_, stderr, err := execute("--log-level", "debug", "--log-format", "json", "--work-dir", dir, "logrefs", "--index", "0")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	require.NotEmpty(t, lines)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
}

func TestInvalidLogLevel(t *testing.T) {
	isolate(t)
	dir, _ := diskRepo(t)

	_, _, err := execute("--log-level", "loud", "--work-dir", dir, "logrefs", "--index", "0")

	assert.ErrorContains(t, err, "log.level")
}

func TestMissingConfigFile(t *testing.T) {
	isolate(t)
	dir, _ := diskRepo(t)

	_, _, err := execute("--config", filepath.Join(t.TempDir(), "missing.yaml"), "--work-dir", dir, "submodsync")

	assert.ErrorContains(t, err, "failed to read config file")
}

func TestVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "abc1234", "2026-01-01")
	t.Cleanup(func() { SetVersionInfo("dev", "none", "unknown") })

	stdout, _, err := execute("version")

	require.NoError(t, err)
	assert.Equal(t, "gitfx 1.2.3 (commit: abc1234, built: 2026-01-01)\n", stdout)
}
