// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os/exec"
)

// ExitError makes the process exit with Code instead of 1. RunE handlers
// return it rather than calling os.Exit.
type ExitError struct {
	Code int
	Err  error
}

// exitErrorFrom turns a failed child process into an ExitError carrying its
// exit code. Other errors are returned unchanged.
func exitErrorFrom(err error) error {
	var procErr *exec.ExitError
	if errors.As(err, &procErr) && procErr.ExitCode() > 0 {
		return &ExitError{Code: procErr.ExitCode(), Err: err}
	}
	return err
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }
