package driver

import (
	"bufio"
	"os"
	"strings"

	"github.com/fsandhei/yambs-sub000/src/core"
)

// commandLinePrefix is the first line Run writes to the run log.
const commandLinePrefix = "Command line: "

// ReadCommandLine reads the first "Command line: …" line from a previous
// run's log, for the remake subcommand, which reprints it without running
// anything.
func ReadCommandLine(runLogPath string) (string, error) {
	f, err := os.Open(runLogPath)
	if err != nil {
		return "", &core.Error{Kind: core.KindFileSystem, Path: runLogPath, Msg: "failed to open run log", Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", &core.Error{Kind: core.KindFileSystem, Path: runLogPath, Msg: "run log is empty"}
	}
	line := scanner.Text()
	if !strings.HasPrefix(line, commandLinePrefix) {
		return "", &core.Error{Kind: core.KindFileSystem, Path: runLogPath, Msg: "run log does not start with a command line"}
	}
	return strings.TrimPrefix(line, commandLinePrefix), nil
}
