package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/blang/semver"
	"github.com/rs/zerolog"

	"github.com/ruslanv/botstrap/envfile"
	"github.com/ruslanv/botstrap/pyruntime"
)

// Options configures a launch.
type Options struct {
	Entrypoint   string
	WorkingDir   string
	Interpreter  string // explicit interpreter path, optional
	Manifest     string
	EnvFile      string
	SkipInstall  bool
	PythonRange  string
	TokenVar     string
	RequireToken bool
}

// Launcher runs the launch sequence. The exec seams are overridable in
// tests so the sequence can be exercised without a real interpreter.
type Launcher struct {
	opts   Options
	logger zerolog.Logger

	lookPath func(file string) (string, error)
	probe    func(ctx context.Context, path string) (semver.Version, error)
	install  func(ctx context.Context, interpreter, manifest, dir string) (int, string, error)
	start    func(ctx context.Context, interpreter string, args []string, dir string, env []string) (int, error)
	environ  func() []string
}

// New creates a Launcher for the given options.
func New(opts Options, logger zerolog.Logger) *Launcher {
	if opts.WorkingDir == "" {
		opts.WorkingDir = "."
	}

	return &Launcher{
		opts:     opts,
		logger:   logger,
		lookPath: exec.LookPath,
		probe:    probeVersion,
		install:  runInstaller,
		start:    startChild,
		environ:  os.Environ,
	}
}

// Run executes the launch sequence and returns the child's exit code. Any
// non-nil error means the child was never started.
func (l *Launcher) Run(ctx context.Context) (int, error) {
	interpreter, err := l.resolveRuntime(ctx)
	if err != nil {
		return 0, err
	}

	manifest := l.resolvePath(l.opts.Manifest)
	if _, err := os.Stat(manifest); err != nil {
		if os.IsNotExist(err) {
			return 0, &ManifestMissingError{Path: manifest}
		}
		return 0, fmt.Errorf("failed to check manifest %s: %w", manifest, err)
	}

	if l.opts.SkipInstall {
		l.logger.Debug().Msg("Skipping dependency installation")
	} else {
		l.logger.Info().Str("manifest", manifest).Msg("Installing dependencies")
		code, output, err := l.install(ctx, interpreter, manifest, l.opts.WorkingDir)
		if err != nil {
			return 0, fmt.Errorf("failed to run dependency installer: %w", err)
		}
		if code != 0 {
			return 0, &InstallError{ExitCode: code, Output: output}
		}
	}

	env, err := l.buildEnv()
	if err != nil {
		return 0, err
	}

	if err := l.checkToken(env); err != nil {
		return 0, err
	}

	l.logger.Info().Str("entrypoint", l.opts.Entrypoint).Msg("Starting bot")
	return l.start(ctx, interpreter, []string{l.opts.Entrypoint}, l.opts.WorkingDir, env)
}

// resolveRuntime finds the interpreter and gates on the supported version
// range when one is configured.
func (l *Launcher) resolveRuntime(ctx context.Context) (string, error) {
	interpreter, err := l.resolveInterpreterPath()
	if err != nil {
		return "", err
	}

	if l.opts.PythonRange != "" {
		version, err := l.probe(ctx, interpreter)
		if err != nil {
			return "", fmt.Errorf("failed to determine python version: %w", err)
		}
		if err := pyruntime.CheckRange(version, l.opts.PythonRange); err != nil {
			return "", err
		}
		l.logger.Debug().Str("interpreter", interpreter).Str("version", version.String()).Msg("Runtime version accepted")
	}

	return interpreter, nil
}

func (l *Launcher) resolveInterpreterPath() (string, error) {
	if l.opts.Interpreter != "" {
		path, err := l.lookPath(l.opts.Interpreter)
		if err != nil {
			return "", &RuntimeNotFoundError{Candidates: []string{l.opts.Interpreter}, Err: err}
		}
		return path, nil
	}

	for _, name := range pyruntime.Candidates {
		if path, err := l.lookPath(name); err == nil {
			return path, nil
		}
	}

	return "", &RuntimeNotFoundError{Candidates: pyruntime.Candidates, Err: pyruntime.ErrNotFound}
}

// buildEnv merges the overlay file, if present, into the process
// environment. Variables already exported always win over file values.
func (l *Launcher) buildEnv() ([]string, error) {
	base := l.environ()

	if l.opts.EnvFile == "" {
		return base, nil
	}

	path := l.resolvePath(l.opts.EnvFile)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			// Optional file: nothing to merge.
			return base, nil
		}
		return nil, fmt.Errorf("failed to check overlay file %s: %w", path, err)
	}

	overlay, err := envfile.Load(path)
	if err != nil {
		return nil, err
	}

	l.logger.Debug().Str("file", path).Int("variables", overlay.Len()).Msg("Loaded environment overlay")
	return envfile.Merge(base, overlay), nil
}

// checkToken warns (or fails, with RequireToken) when the token variable is
// unset. The bot itself fails later if the token is truly required; this
// check exists to make that failure legible before the process starts.
func (l *Launcher) checkToken(env []string) error {
	if l.opts.TokenVar == "" {
		return nil
	}

	for _, kv := range env {
		if key, value, ok := strings.Cut(kv, "="); ok && key == l.opts.TokenVar && value != "" {
			return nil
		}
	}

	if l.opts.RequireToken {
		return &CredentialError{Variable: l.opts.TokenVar}
	}

	l.logger.Warn().Str("variable", l.opts.TokenVar).Msg("Bot token is not set, the bot will likely fail to authenticate")
	return nil
}

func (l *Launcher) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.opts.WorkingDir, path)
}

// probeVersion is the default version probe.
func probeVersion(ctx context.Context, path string) (semver.Version, error) {
	interpreter, err := pyruntime.Probe(ctx, path)
	if err != nil {
		return semver.Version{}, err
	}
	return interpreter.Version, nil
}

// runInstaller invokes pip against the manifest with routine output
// suppressed, and reports pip's exit code along with the tail of its output
// for diagnostics.
func runInstaller(ctx context.Context, interpreter, manifest, dir string) (int, string, error) {
	cmd := exec.CommandContext(ctx, interpreter, "-m", "pip", "install", "-r", manifest, "--quiet", "--disable-pip-version-check")
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err == nil {
		return 0, "", nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), outputTail(output), nil
	}

	return 0, "", err
}

// startChild starts the entry point with the merged environment, forwards
// interrupt and termination signals, and blocks until the child exits.
func startChild(ctx context.Context, interpreter string, args []string, dir string, env []string) (int, error) {
	cmd := exec.Command(interpreter, args...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", strings.Join(args, " "), err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	done := make(chan struct{})
	go func() {
		ctxDone := ctx.Done()
		for {
			select {
			case sig := <-signals:
				// Best effort: the child decides how to shut down.
				_ = cmd.Process.Signal(sig)
			case <-ctxDone:
				_ = cmd.Process.Signal(syscall.SIGTERM)
				ctxDone = nil
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	close(done)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, fmt.Errorf("failed waiting for child: %w", err)
	}

	return 0, nil
}

// outputTail keeps the last few lines of installer output for error
// messages without dumping the whole pip transcript.
func outputTail(output []byte) string {
	const maxLines = 5

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
