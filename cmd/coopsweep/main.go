package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Every result file was processed
	ExitSkipped = 1 // Files were skipped and --strict was set
	ExitError   = 2 // Configuration or runtime error
)

// SkippedFilesError indicates that the sweep completed and was reported,
// but some result files were skipped while --strict was set.
type SkippedFilesError struct {
	Count int
}

func (e *SkippedFilesError) Error() string {
	return fmt.Sprintf("%d result file(s) skipped", e.Count)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var skippedErr *SkippedFilesError
		if errors.As(err, &skippedErr) {
			os.Exit(ExitSkipped)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
