package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blang/semver"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExec records which steps ran and lets tests script their outcomes.
type fakeExec struct {
	lookPathErr   error
	version       string
	installCode   int
	installOutput string
	installErr    error
	childCode     int

	installCalled bool
	startCalled   bool
	startedEnv    []string
	startedArgs   []string
}

func (f *fakeExec) wire(l *Launcher) {
	l.lookPath = func(file string) (string, error) {
		if f.lookPathErr != nil {
			return "", f.lookPathErr
		}
		return "/usr/bin/" + file, nil
	}
	l.probe = func(ctx context.Context, path string) (semver.Version, error) {
		if f.version == "" {
			return semver.Version{}, errors.New("no version scripted")
		}
		return semver.MustParse(f.version), nil
	}
	l.install = func(ctx context.Context, interpreter, manifest, dir string) (int, string, error) {
		f.installCalled = true
		return f.installCode, f.installOutput, f.installErr
	}
	l.start = func(ctx context.Context, interpreter string, args []string, dir string, env []string) (int, error) {
		f.startCalled = true
		f.startedArgs = args
		f.startedEnv = env
		return f.childCode, nil
	}
}

func newTestLauncher(t *testing.T, opts Options, fake *fakeExec) *Launcher {
	t.Helper()

	if opts.Entrypoint == "" {
		opts.Entrypoint = "main.py"
	}
	if opts.Manifest == "" {
		opts.Manifest = "requirements.txt"
	}

	l := New(opts, zerolog.Nop())
	fake.wire(l)
	return l
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func envValue(env []string, key string) (string, bool) {
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			return v, true
		}
	}
	return "", false
}

func TestRunMissingRuntime(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "python-telegram-bot\n")

	fake := &fakeExec{lookPathErr: errors.New("executable file not found in $PATH")}
	l := newTestLauncher(t, Options{WorkingDir: dir}, fake)

	_, err := l.Run(context.Background())

	var rerr *RuntimeNotFoundError
	require.ErrorAs(t, err, &rerr)
	assert.False(t, fake.installCalled, "installer must not run without a runtime")
	assert.False(t, fake.startCalled, "child must not start without a runtime")
}

func TestRunMissingManifest(t *testing.T) {
	dir := t.TempDir()

	fake := &fakeExec{}
	l := newTestLauncher(t, Options{WorkingDir: dir}, fake)

	_, err := l.Run(context.Background())

	var merr *ManifestMissingError
	require.ErrorAs(t, err, &merr)
	assert.Contains(t, merr.Path, "requirements.txt")
	assert.False(t, fake.installCalled, "installer must not run without a manifest")
	assert.False(t, fake.startCalled)
}

func TestRunInstallFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "python-telegram-bot\n")

	fake := &fakeExec{installCode: 1, installOutput: "No matching distribution found"}
	l := newTestLauncher(t, Options{WorkingDir: dir}, fake)

	_, err := l.Run(context.Background())

	var ierr *InstallError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, 1, ierr.ExitCode)
	assert.Contains(t, ierr.Error(), "No matching distribution found")
	assert.False(t, fake.startCalled, "child must not start after a failed install")
}

func TestRunVersionGate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "python-telegram-bot\n")

	fake := &fakeExec{version: "3.8.10"}
	l := newTestLauncher(t, Options{WorkingDir: dir, PythonRange: ">=3.9.0 <3.13.0"}, fake)

	_, err := l.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
	assert.False(t, fake.installCalled)
}

func TestRunOverlayMergedIntoChildEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "python-telegram-bot\n")
	writeFile(t, dir, ".env", "BOT_TOKEN=abc123\nA=1\nA=2\n")

	fake := &fakeExec{childCode: 0}
	l := newTestLauncher(t, Options{WorkingDir: dir, EnvFile: ".env", TokenVar: "BOT_TOKEN"}, fake)
	l.environ = func() []string { return []string{"PATH=/usr/bin"} }

	code, err := l.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	require.True(t, fake.startCalled)

	token, ok := envValue(fake.startedEnv, "BOT_TOKEN")
	require.True(t, ok)
	assert.Equal(t, "abc123", token)

	a, ok := envValue(fake.startedEnv, "A")
	require.True(t, ok)
	assert.Equal(t, "2", a, "last duplicate in the overlay file wins")
}

func TestRunProcessEnvironmentWinsOverOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "python-telegram-bot\n")
	writeFile(t, dir, ".env", "BOT_TOKEN=from_file\n")

	fake := &fakeExec{}
	l := newTestLauncher(t, Options{WorkingDir: dir, EnvFile: ".env", TokenVar: "BOT_TOKEN"}, fake)
	l.environ = func() []string { return []string{"BOT_TOKEN=from_process"} }

	_, err := l.Run(context.Background())

	require.NoError(t, err)
	token, _ := envValue(fake.startedEnv, "BOT_TOKEN")
	assert.Equal(t, "from_process", token)
}

func TestRunMalformedOverlayAbortsLaunch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "python-telegram-bot\n")
	writeFile(t, dir, ".env", "NOT A VALID LINE\n")

	fake := &fakeExec{}
	l := newTestLauncher(t, Options{WorkingDir: dir, EnvFile: ".env"}, fake)

	_, err := l.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
	assert.False(t, fake.startCalled)
}

func TestRunMissingTokenWarnsAndContinues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "python-telegram-bot\n")

	fake := &fakeExec{childCode: 0}
	l := newTestLauncher(t, Options{WorkingDir: dir, TokenVar: "BOT_TOKEN"}, fake)
	l.environ = func() []string { return []string{"PATH=/usr/bin"} }

	_, err := l.Run(context.Background())

	require.NoError(t, err)
	assert.True(t, fake.startCalled, "a missing token must not stop the launch by default")
}

func TestRunMissingTokenFatalWhenRequired(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "python-telegram-bot\n")

	fake := &fakeExec{}
	l := newTestLauncher(t, Options{WorkingDir: dir, TokenVar: "BOT_TOKEN", RequireToken: true}, fake)
	l.environ = func() []string { return []string{"PATH=/usr/bin"} }

	_, err := l.Run(context.Background())

	var cerr *CredentialError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "BOT_TOKEN", cerr.Variable)
	assert.False(t, fake.startCalled)
}

func TestRunProxiesChildExitCode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "python-telegram-bot\n")

	fake := &fakeExec{childCode: 3}
	l := newTestLauncher(t, Options{WorkingDir: dir}, fake)
	l.environ = func() []string { return []string{"PATH=/usr/bin"} }

	code, err := l.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, []string{"main.py"}, fake.startedArgs)
}

func TestRunSkipInstall(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "python-telegram-bot\n")

	fake := &fakeExec{}
	l := newTestLauncher(t, Options{WorkingDir: dir, SkipInstall: true}, fake)
	l.environ = func() []string { return []string{"PATH=/usr/bin"} }

	_, err := l.Run(context.Background())

	require.NoError(t, err)
	assert.False(t, fake.installCalled)
	assert.True(t, fake.startCalled)
}

func TestOutputTail(t *testing.T) {
	var lines []string
	for i := 1; i <= 8; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}

	tail := outputTail([]byte(strings.Join(lines, "\n")))

	assert.NotContains(t, tail, "line 3")
	assert.Contains(t, tail, "line 4")
	assert.Contains(t, tail, "line 8")
}
