// Package cli contains helper functions related to flag parsing and logging.
package cli

import (
	"os"
	"path/filepath"

	"golang.org/x/term"
	"gopkg.in/op/go-logging.v1"
)

var log = logging.MustGetLogger("cli")

// StdErrIsATerminal is true if the process' stderr is an interactive TTY.
var StdErrIsATerminal = term.IsTerminal(int(os.Stderr.Fd()))

// A Verbosity is used as a flag to define logging verbosity; it's a thin
// rename of the underlying logging level so command-line flag structs don't
// need to import the logging package directly.
type Verbosity logging.Level

// UnmarshalFlag implements flags.Unmarshaler so a Verbosity flag accepts a
// level name such as "warning" or "debug".
func (v *Verbosity) UnmarshalFlag(in string) error {
	level, err := logging.LogLevel(in)
	if err != nil {
		return err
	}
	*v = Verbosity(level)
	return nil
}

// Re-exports of the log levels so callers can write cli.Warning etc.
const (
	Critical Verbosity = Verbosity(logging.CRITICAL)
	Error    Verbosity = Verbosity(logging.ERROR)
	Warning  Verbosity = Verbosity(logging.WARNING)
	Notice   Verbosity = Verbosity(logging.NOTICE)
	Info     Verbosity = Verbosity(logging.INFO)
	Debug    Verbosity = Verbosity(logging.DEBUG)
)

var fileBackend logging.Backend

// InitLogging initialises the stderr logging backend at the given verbosity.
func InitLogging(verbosity Verbosity) {
	setLogBackend(logging.Level(verbosity))
}

// InitFileLogging additionally tees all log output, at DEBUG level, to the
// given file. This file is separate from the Build Driver's run log, which
// holds the command line that `remake` reads back.
func InitFileLogging(logFile string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), os.ModeDir|0775); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0664)
	if err != nil {
		return nil, err
	}
	fileBackend = logging.NewLogBackend(file, "", 0)
	setLogBackend(logging.GetLevel(""))
	return file, nil
}

func logFormatter(coloured bool) logging.Formatter {
	formatStr := "%{time:15:04:05.000} %{level:7s}: %{message}"
	if coloured {
		formatStr = "%{color}" + formatStr + "%{color:reset}"
	}
	return logging.MustStringFormatter(formatStr)
}

func setLogBackend(level logging.Level) {
	stderr := logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), logFormatter(StdErrIsATerminal))
	stderrLeveled := logging.AddModuleLevel(stderr)
	stderrLeveled.SetLevel(level, "")
	if fileBackend == nil {
		logging.SetBackend(stderrLeveled)
		return
	}
	file := logging.NewBackendFormatter(fileBackend, logFormatter(false))
	fileLeveled := logging.AddModuleLevel(file)
	fileLeveled.SetLevel(logging.DEBUG, "")
	logging.SetBackend(stderrLeveled, fileLeveled)
}
