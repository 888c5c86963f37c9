package commands

import (
	"errors"
	"fmt"
	"io"

	"aws-alias/internal/output"
)

type exitCoder interface {
	ExitCode() int
}

// ExitStatus returns the process status for an Execute error. Errors that never
// reached the reporter, such as unknown flags, are printed to stderr; reported ones
// are already on stdout as a failure object.
func ExitStatus(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var reported *output.ReportedError
	if !errors.As(err, &reported) {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		if code := coder.ExitCode(); code != 0 {
			return code
		}
	}
	return 1
}
