// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"

	"github.com/pastesettings/pastesettings/internal/config"
	"github.com/pastesettings/pastesettings/internal/issue"
	"github.com/pastesettings/pastesettings/pkg/pastedeploy"
	"github.com/pastesettings/pastesettings/pkg/settings"
	"github.com/pastesettings/pastesettings/pkg/testdb"
	"github.com/pastesettings/pastesettings/pkg/testrunner"

	"github.com/charmbracelet/log"
)

// ServiceError is an error that carries rendering information for the CLI
// layer: a pre-styled message and an optional issue catalog entry.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError maps a command failure to its issue catalog entry and a
// styled one-line message. Zero means no catalog entry applies.
func classifyError(err error, verbose bool) (issueID issue.Id, styledMsg string) {
	var (
		exitErr *exec.ExitError
		ae      *issue.ActionableError
	)

	switch {
	case errors.As(err, &ae) && ae.Issue != 0:
		issueID = ae.Issue
	case errors.Is(err, errConfigURIMissing), errors.Is(err, testrunner.ErrNotEnabled):
		issueID = issue.ConfigURIMissingId
	case errors.Is(err, pastedeploy.ErrInvalidURI):
		issueID = issue.InvalidConfigURIId
	case errors.Is(err, pastedeploy.ErrAppNotFound), errors.Is(err, pastedeploy.ErrUndefinedGlobal):
		issueID = issue.AppNotFoundId
	case errors.Is(err, pastedeploy.ErrFactoryNotFound), errors.Is(err, pastedeploy.ErrMissingFactory):
		issueID = issue.FactoryNotFoundId
	case errors.Is(err, settings.ErrMissingSettingsModule):
		issueID = issue.SettingsModuleMissingId
	case errors.Is(err, settings.ErrSettingsModuleNotFound):
		issueID = issue.SettingsModuleNotFoundId
	case errors.Is(err, settings.ErrBadDebugFlag):
		issueID = issue.BadDebugFlagId
	case errors.Is(err, settings.ErrUnsupportedSetting):
		issueID = issue.UnsupportedSettingId
	case errors.Is(err, settings.ErrInvalidSettingValue):
		issueID = issue.InvalidSettingValueId
	case errors.Is(err, testrunner.ErrDatabaseSetup), errors.Is(err, testdb.ErrUnknownEngine):
		issueID = issue.TestDatabaseFailedId
	case errors.Is(err, config.ErrInvalidConfig):
		issueID = issue.ConfigLoadFailedId
	case errors.As(err, &exitErr):
		issueID = issue.TestRunFailedId
	case errors.Is(err, fs.ErrNotExist):
		// Checked last: settings module lookups also fail with missing files.
		issueID = issue.DescriptorNotFoundId
	}

	return issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the optional issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, style string, logger *log.Logger) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(style)
		if renderErr != nil {
			logger.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
