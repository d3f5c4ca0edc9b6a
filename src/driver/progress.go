package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/fsandhei/yambs-sub000/src/fs"
)

// progressFile mirrors the shape generate.Generator writes to
// progress.json: enough to recompute (built, total) without needing the
// generate package's types.
type progressFile struct {
	Targets []struct {
		Target      string   `json:"target"`
		ObjectFiles []string `json:"object_files"`
	} `json:"targets"`
}

const pollInterval = 200 * time.Millisecond

// pollProgress re-reads progressPath every pollInterval and prints a bar
// to stderr until ctx is cancelled. It tolerates the file being briefly
// absent (the generator may not have finished writing it the instant the
// child starts).
func pollProgress(ctx context.Context, progressPath string) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	bar := color.New(color.FgGreen)
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr)
			return
		case <-ticker.C:
			built, total := countProgress(progressPath)
			if total > 0 {
				bar.Fprintf(os.Stderr, "\r[%d/%d] object files built", built, total)
			}
		}
	}
}

func countProgress(path string) (built, total int) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0
	}
	var doc progressFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, 0
	}
	for _, entry := range doc.Targets {
		if entry.Target == "all" {
			continue
		}
		for _, obj := range entry.ObjectFiles {
			total++
			if fs.FileExists(obj) {
				built++
			}
		}
	}
	return built, total
}
