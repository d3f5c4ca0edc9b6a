package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/fsandhei/yambs-sub000/src/buildcache"
	"github.com/fsandhei/yambs-sub000/src/cli"
	"github.com/fsandhei/yambs-sub000/src/cli/logging"
	"github.com/fsandhei/yambs-sub000/src/core"
	"github.com/fsandhei/yambs-sub000/src/driver"
	"github.com/fsandhei/yambs-sub000/src/generate"
	"github.com/fsandhei/yambs-sub000/src/graph"
	"github.com/fsandhei/yambs-sub000/src/manifest"
	"github.com/fsandhei/yambs-sub000/src/pkgconfig"
	"github.com/fsandhei/yambs-sub000/src/toolchain"
)

// version is overwritten at link time with -ldflags "-X main.version=...".
var version = "dev"

var log = logging.Log

var opts struct {
	Usage string `usage:"yambs is a project-level build generator and driver for C++ source trees.\n\nIt reads a yambs.toml manifest, resolves the toolchain and target graph, generates a Make build tree under a build directory, and drives the build while reporting progress."`

	OutputFlags struct {
		Verbosity cli.Verbosity `short:"v" long:"verbosity" description:"Verbosity of output (error, warning, notice, info, debug)" default:"warning"`
		LogFile   string        `long:"log_file" description:"File to additionally echo all logging output to"`
	} `group:"Options controlling output & logging"`

	Build struct {
		ManifestDirectory string   `long:"manifest-directory" default:"." description:"Directory containing yambs.toml"`
		BuildType         string   `long:"build-type" choice:"debug" choice:"release" default:"debug" description:"Build profile"`
		Std               string   `long:"std" default:"c++17" description:"C++ standard, e.g. c++17"`
		Sanitizer         []string `long:"sanitizer" description:"Sanitizer to enable: address, thread, leak or undefined; may be repeated"`
		Jobs              int      `short:"j" long:"jobs" description:"Number of parallel make jobs; default is 2x logical CPUs"`
		BuildDir          string   `short:"b" long:"build-dir" default:"build" description:"Directory to write generated build files and caches into"`
		DottieGraph       bool     `long:"dottie-graph" description:"Print the dependency graph in Graphviz dot format instead of building"`
		Verbose           bool     `long:"verbose" description:"Equivalent to --verbosity=debug"`
		Target            string   `long:"target" description:"Build only this target instead of the default all goal"`
	} `command:"build" description:"Generate build files from the manifest and drive the build"`

	Remake struct {
		BuildDir  string `short:"b" long:"build-dir" default:"build" description:"Directory the previous run wrote its log into"`
		BuildType string `long:"build-type" default:"debug" description:"Build profile whose run log to read"`
	} `command:"remake" description:"Re-print the command line of the previous run without running anything"`

	Dottie struct {
		ManifestDirectory string `long:"manifest-directory" default:"." description:"Directory containing yambs.toml"`
	} `command:"dottie" description:"Print the dependency graph in Graphviz dot format"`
}

func main() {
	parser, _ := cli.ParseFlagsOrDie("yambs", version, &opts)

	verbosity := opts.OutputFlags.Verbosity
	if opts.Build.Verbose {
		verbosity = cli.Debug
	}
	cli.InitLogging(verbosity)
	if opts.OutputFlags.LogFile != "" {
		if _, err := cli.InitFileLogging(opts.OutputFlags.LogFile); err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %s\n", err)
			os.Exit(1)
		}
	}

	if parser.Active == nil {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	var err error
	switch parser.Active.Name {
	case "build":
		err = runBuild()
	case "remake":
		err = runRemake()
	case "dottie":
		err = runDottie()
	default:
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		if e, ok := err.(*core.Error); ok && e.Kind == core.KindBuild {
			os.Exit(exitCodeOf(e))
		}
		os.Exit(1)
	}
}

func exitCodeOf(e *core.Error) int {
	if r, ok := e.Err.(interface{ ExitCode() int }); ok {
		return r.ExitCode()
	}
	return 1
}

// runBuild is the `build` subcommand: resolve toolchain, parse the
// manifest, build the target graph (or reuse it from cache), generate the
// Make tree, and drive the build.
func runBuild() error {
	manifestDir, err := filepath.Abs(opts.Build.ManifestDirectory)
	if err != nil {
		return core.FailedToCanonicalizePath(opts.Build.ManifestDirectory, err)
	}
	buildDir, err := filepath.Abs(opts.Build.BuildDir)
	if err != nil {
		return core.FailedToCanonicalizePath(opts.Build.BuildDir, err)
	}

	cache, err := buildcache.New(buildDir)
	if err != nil {
		return err
	}

	scratchDir := filepath.Join(buildDir, "scratch", uuid.NewString())

	var cachedToolchain *toolchain.Toolchain
	if cache.Load(buildcache.ToolchainFile, &cachedToolchain) && cachedToolchain != nil {
		log.Debug("Loaded cached toolchain")
	}
	tc, err := toolchain.ResolveAndValidate(context.Background(), manifestDir, scratchDir, cachedToolchain)
	if err != nil {
		return err
	}
	if err := cache.Store(buildcache.ToolchainFile, tc); err != nil {
		return err
	}

	var registry *core.Registry
	var manifestTimes buildcache.ManifestTimes
	reuseCache := cache.Load(buildcache.ManifestFile, &manifestTimes) && !buildcache.ManifestsStale(manifestTimes)
	if reuseCache {
		if restored, ok := cache.LoadRegistry(); ok {
			registry = restored
			for _, t := range registry.All() {
				t.SetState(core.Registered) // this process hasn't generated build files yet
			}
			log.Info("Manifest cache is fresh, reusing cached target graph")
		}
	}
	if registry == nil {
		registry = core.NewRegistry()
		builder := graph.NewBuilder(registry, graph.ParserFunc(manifest.Parse))
		if _, err := builder.Build(manifestDir); err != nil {
			return err
		}
		if err := writeManifestTimes(cache, registry); err != nil {
			return err
		}
		if err := cache.StoreRegistry(registry); err != nil {
			return err
		}
	}

	for _, t := range registry.Filter(func(t *core.Target) bool { return t.SourceKind == core.PkgConfigSource }) {
		if err := pkgconfig.Resolve(t, pkgconfigBuildType()); err != nil {
			return err
		}
	}

	if opts.Build.DottieGraph {
		fmt.Print(renderDot(registry))
		return nil
	}

	gen := generate.New(buildDir, tc, registry)
	cfg := generate.Config{
		BuildType:  generateBuildType(),
		CxxStd:     opts.Build.Std,
		Sanitizers: opts.Build.Sanitizer,
	}
	buildTypeDir, err := gen.Generate(cfg)
	if err != nil {
		return err
	}

	makeExe, err := driver.LocateMake()
	if err != nil {
		return err
	}
	result, err := driver.Run(context.Background(), driver.Options{
		Make:         makeExe,
		BuildTypeDir: buildTypeDir,
		Jobs:         opts.Build.Jobs,
		Target:       opts.Build.Target,
		RunLogPath:   filepath.Join(buildDir, opts.Build.BuildType+".log"),
	})
	if err != nil {
		return err
	}
	if result.Errors != nil {
		return result.Errors
	}
	return nil
}

func writeManifestTimes(cache *buildcache.Cache, registry *core.Registry) error {
	times := buildcache.ManifestTimes{}
	for _, t := range registry.Filter(func(t *core.Target) bool { return t.SourceKind == core.FromSource }) {
		if t.Manifest != nil {
			times[t.Manifest.Directory] = t.Manifest.ModTime
		}
	}
	return cache.Store(buildcache.ManifestFile, times)
}

func pkgconfigBuildType() pkgconfig.BuildType {
	if opts.Build.BuildType == "release" {
		return pkgconfig.Release
	}
	return pkgconfig.Debug
}

func generateBuildType() generate.BuildType {
	if opts.Build.BuildType == "release" {
		return generate.Release
	}
	return generate.Debug
}

// runRemake is the `remake` subcommand: print the previous run's command
// line without executing anything.
func runRemake() error {
	buildDir, err := filepath.Abs(opts.Remake.BuildDir)
	if err != nil {
		return core.FailedToCanonicalizePath(opts.Remake.BuildDir, err)
	}
	logPath := filepath.Join(buildDir, opts.Remake.BuildType+".log")
	line, err := driver.ReadCommandLine(logPath)
	if err != nil {
		return err
	}
	fmt.Println(line)
	return nil
}

// runDottie is the `dottie` subcommand: parse the manifest, build the
// graph, and print it in Graphviz dot format.
func runDottie() error {
	manifestDir, err := filepath.Abs(opts.Dottie.ManifestDirectory)
	if err != nil {
		return core.FailedToCanonicalizePath(opts.Dottie.ManifestDirectory, err)
	}
	registry := core.NewRegistry()
	builder := graph.NewBuilder(registry, graph.ParserFunc(manifest.Parse))
	if _, err := builder.Build(manifestDir); err != nil {
		return err
	}
	fmt.Print(renderDot(registry))
	return nil
}

func renderDot(registry *core.Registry) string {
	out := "digraph yambs {\n"
	for _, t := range registry.All() {
		for _, dep := range t.Dependencies {
			if dep.Target != nil {
				out += fmt.Sprintf("  %q -> %q;\n", t.ID.Type.Name, dep.Target.ID.Type.Name)
			}
		}
	}
	out += "}\n"
	return out
}
