package core

import "fmt"

// Kind classifies an Error into one of the domain-level error kinds:
// CommandLine, Parse, FileSystem, Toolchain, Graph, Cache, Build.
// Callers branch on Kind with errors.As, not on message text.
type Kind int

const (
	// KindCommandLine covers bad flag values and illegal option combinations,
	// e.g. requesting both the thread and address sanitizers together.
	KindCommandLine Kind = iota
	// KindParse covers manifest syntax errors and unknown fields.
	KindParse
	// KindFileSystem covers missing files, canonicalization failures and
	// subprocess spawn failures.
	KindFileSystem
	// KindToolchain covers missing compilers, failed version probes and
	// stale cached toolchains.
	KindToolchain
	// KindGraph covers dependency cycles.
	KindGraph
	// KindCache covers cache (de)serialization failures.
	KindCache
	// KindBuild covers a non-zero exit from the underlying Make child.
	KindBuild
)

func (k Kind) String() string {
	switch k {
	case KindCommandLine:
		return "CommandLine"
	case KindParse:
		return "Parse"
	case KindFileSystem:
		return "FileSystem"
	case KindToolchain:
		return "Toolchain"
	case KindGraph:
		return "Graph"
	case KindCache:
		return "Cache"
	case KindBuild:
		return "Build"
	default:
		return "Unknown"
	}
}

// Error is the single error type returned by every fallible operation in
// this module. Context (file path, target name) is attached as it
// propagates up through layers rather than being folded into the message
// at the point of origin, so a caller higher up can add its own context
// without losing what's already there.
type Error struct {
	Kind   Kind
	Path   string // offending file or directory path, if any
	Target string // offending target name, if any
	Msg    string
	Err    error // wrapped cause, if any
}

func (e *Error) Error() string {
	s := e.Kind.String() + ": "
	if e.Target != "" {
		s += "target " + e.Target + ": "
	}
	if e.Path != "" {
		s += e.Path + ": "
	}
	s += e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error with a formatted message.
func NewError(kind Kind, path string, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Path: path, Msg: fmt.Sprintf(format, args...), Err: err}
}

// FailedToCanonicalizePath reports a source or include path that does not
// exist relative to the manifest directory.
func FailedToCanonicalizePath(path string, err error) *Error {
	return &Error{Kind: KindFileSystem, Path: path, Msg: "failed to canonicalize path", Err: err}
}

// Circulation reports a dependency cycle found between two manifest
// directories during graph construction.
func Circulation(depPath, selfPath string) *Error {
	return &Error{Kind: KindGraph, Msg: fmt.Sprintf("dependency cycle: %s -> %s -> %s", selfPath, depPath, selfPath)}
}

// InvalidCompiler reports a compiler executable whose basename matches
// neither the GCC nor the Clang pattern.
func InvalidCompiler(path string) *Error {
	return &Error{Kind: KindToolchain, Path: path, Msg: "could not classify compiler as GCC or Clang"}
}

// FailedToFindVersionPattern reports a compiler --version output that does
// not contain a recognisable X.Y.Z version string.
func FailedToFindVersionPattern(path, output string) *Error {
	return &Error{Kind: KindToolchain, Path: path, Msg: "could not find a version pattern in: " + output}
}

// StaleToolchain reports that the cached toolchain differs from the one
// just detected; the user must clean the build directory.
func StaleToolchain(cached, current string) *Error {
	return &Error{Kind: KindToolchain, Msg: fmt.Sprintf(
		"cached toolchain (%s) differs from the detected one (%s); object files may be stale, run with a clean build directory",
		cached, current)}
}

// IllegalSanitizerCombination reports the thread+address sanitizer
// combination being requested together.
func IllegalSanitizerCombination(a, b string) *Error {
	return &Error{Kind: KindCommandLine, Msg: fmt.Sprintf("sanitizers %s and %s cannot be combined", a, b)}
}

// AssociatedFileErrorCouldNotSpecifyFileType reports a source file whose
// extension isn't recognised.
func AssociatedFileErrorCouldNotSpecifyFileType(path string) *Error {
	return &Error{Kind: KindParse, Path: path, Msg: "could not determine file type from extension"}
}
