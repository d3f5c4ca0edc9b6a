// Package driver invokes the generated Makefile and reports progress while
// it runs, by polling the progress descriptor the generate package wrote
// rather than instrumenting Make itself.
package driver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/fsandhei/yambs-sub000/src/cli/logging"
	"github.com/fsandhei/yambs-sub000/src/core"
	"github.com/fsandhei/yambs-sub000/src/fs"
)

var log = logging.Log

// makeWhitelist is searched before falling back to PATH.
var makeWhitelist = []string{"/usr/bin/make", "/usr/local/bin/make"}

// LocateMake finds a make executable: the whitelist first, then PATH.
func LocateMake() (string, error) {
	for _, p := range makeWhitelist {
		if fs.FileExists(p) {
			return p, nil
		}
	}
	path, err := exec.LookPath("make")
	if err != nil {
		return "", &core.Error{Kind: core.KindFileSystem, Msg: "no make executable found on the whitelist or PATH", Err: err}
	}
	return path, nil
}

// DefaultJobCount is 2x the logical CPU count, falling back to
// runtime.NumCPU if the platform CPU count can't be read.
func DefaultJobCount() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		n = runtime.NumCPU()
	}
	return 2 * n
}

// Options configures one invocation of Make.
type Options struct {
	Make         string // path to the make executable
	BuildTypeDir string // cwd for the child process; also where progress.json lives
	Jobs         int    // -j value; 0 means DefaultJobCount()
	Target       string // optional single target; empty means the default "all" goal
	RunLogPath   string // where the captured command line + output is written
}

// Result is what a completed (or killed) Make invocation reports.
type Result struct {
	ExitCode int
	Errors   error // non-nil if any output line matched the error pattern, or the child failed to spawn/exited non-zero
}

var (
	errorPattern   = regexp.MustCompile(`.*error:.*`)
	warningPattern = regexp.MustCompile(`.*\[-W.*\]\s*$`)
	arChatter      = regexp.MustCompile(`^ar: `)
)

// Run spawns Make in opts.BuildTypeDir, polls progress.json until the
// child exits, filters its output, and writes the run log. ctx cancellation
// (e.g. from SIGINT) kills the child and returns a non-zero Result.
func Run(ctx context.Context, opts Options) (Result, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = DefaultJobCount()
	}
	args := []string{"-j", strconv.Itoa(jobs)}
	if opts.Target != "" {
		args = append(args, opts.Target)
	}

	cmd := exec.CommandContext(ctx, opts.Make, args...)
	cmd.Dir = opts.BuildTypeDir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{ExitCode: 1}, &core.Error{Kind: core.KindFileSystem, Msg: "failed to open stdout pipe", Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{ExitCode: 1}, &core.Error{Kind: core.KindFileSystem, Msg: "failed to open stderr pipe", Err: err}
	}

	commandLine := opts.Make + " " + strings.Join(args, " ")
	log.Notice("Running: %s (in %s)", commandLine, opts.BuildTypeDir)
	start := time.Now()

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: 1}, &core.Error{Kind: core.KindBuild, Msg: "failed to start make", Err: err}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	pollCtx, cancelPoll := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pollProgress(pollCtx, filepath.Join(opts.BuildTypeDir, "progress.json"))
	}()

	var capturedOut, capturedErr strings.Builder
	var merrOut, merrErr *multierror.Error
	var outWg sync.WaitGroup
	outWg.Add(2)
	go func() { defer outWg.Done(); drain(stdout, &capturedOut, &merrOut) }()
	go func() { defer outWg.Done(); drain(stderr, &capturedErr, &merrErr) }()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	select {
	case <-sigCh:
		log.Warning("Interrupted, killing make")
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		waitErr = <-done
	case waitErr = <-done:
	}
	cancelPoll()
	wg.Wait()
	outWg.Wait()

	captured := capturedOut.String() + capturedErr.String()
	merr := mergeErrors(merrOut, merrErr)

	exitCode := 0
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 1
		}
	}

	runLog := fmt.Sprintf("Command line: %s\n%s", commandLine, captured)
	if opts.RunLogPath != "" {
		if err := fs.WriteFileAtomic([]byte(runLog), opts.RunLogPath, 0644); err != nil {
			log.Warning("failed to write run log: %s", err)
		}
	}

	result := Result{ExitCode: exitCode}
	if exitCode != 0 {
		result.Errors = &core.Error{Kind: core.KindBuild, Msg: fmt.Sprintf("make exited with status %d", exitCode), Err: merr.ErrorOrNil()}
	} else if merr.ErrorOrNil() != nil {
		result.Errors = merr.ErrorOrNil()
	}
	log.Info("Build started %s, finished with exit code %d", humanize.Time(start), exitCode)
	return result, nil
}

// mergeErrors combines the stdout and stderr drains' independently
// accumulated error lists once both goroutines have finished, so neither
// drain ever touches the other's accumulator.
func mergeErrors(a, b *multierror.Error) *multierror.Error {
	var merr *multierror.Error
	if a != nil {
		merr = multierror.Append(merr, a.Errors...)
	}
	if b != nil {
		merr = multierror.Append(merr, b.Errors...)
	}
	return merr
}

// drain reads r line by line, dropping ar: chatter and classifying the
// rest, appending everything (undropped) to captured and any error-kind
// line to merr.
func drain(r io.Reader, captured *strings.Builder, merr **multierror.Error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if arChatter.MatchString(line) {
			continue
		}
		captured.WriteString(line)
		captured.WriteByte('\n')
		switch {
		case errorPattern.MatchString(line):
			*merr = multierror.Append(*merr, fmt.Errorf("%s", line))
			log.Error("%s", color.RedString(line))
		case warningPattern.MatchString(line):
			log.Warning("%s", color.YellowString(line))
		default:
			log.Debug("%s", line)
		}
	}
}
