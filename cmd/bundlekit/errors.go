// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/bundlekit/bundlekit/internal/depfile"
	"github.com/bundlekit/bundlekit/internal/fslock"
	"github.com/bundlekit/bundlekit/internal/issue"
	"github.com/bundlekit/bundlekit/pkg/archive"
	"github.com/bundlekit/bundlekit/pkg/locate"
	"github.com/bundlekit/bundlekit/pkg/resolve"
)

// classifyError maps a failure to the catalog entry that explains it, or 0.
func classifyError(err error) issue.Id {
	switch {
	case errors.Is(err, archive.ErrUnsafePath):
		return issue.ArchiveUnsafePathId
	case errors.Is(err, locate.ErrIncompatiblePackaging):
		return issue.IncompatiblePackagingId
	case errors.Is(err, resolve.ErrUnsupportedPlatform):
		return issue.UnsupportedPlatformId
	case errors.Is(err, resolve.ErrIntegrity):
		return issue.IntegrityMismatchId
	case errors.Is(err, resolve.ErrUnresolved):
		return issue.ResolutionFailedId
	case errors.Is(err, depfile.ErrInvalid), errors.Is(err, depfile.ErrUnknownKind):
		return issue.ProjectFileInvalidId
	case errors.Is(err, fslock.ErrLocked):
		return issue.LockBusyId
	default:
		var ae *issue.ActionableError
		if errors.As(err, &ae) && (ae.Operation == "load configuration" || ae.Operation == "validate configuration") {
			return issue.ConfigInvalidId
		}
		return 0
	}
}

// actionable wraps err for display unless it already carries context. An
// existing ActionableError without suggestions adopts the given ones.
func actionable(err error, operation, resource string, suggestions ...string) error {
	if err == nil {
		return nil
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		if !ae.HasSuggestions() {
			ae.Suggestions = suggestions
		}
		return err
	}
	return issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithSuggestions(suggestions...).
		WithIssue(classifyError(err)).
		Wrap(err).
		BuildError()
}

// renderError prints err the way every command reports failures.
func renderError(w io.Writer, err error, verbose bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		// The command already reported the failure.
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}

// formatErrorForDisplay uses the ActionableError layout when available.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		if ae.Issue == 0 {
			ae.Issue = classifyError(err)
		}
		return ae.Format(verbose)
	}
	if id := classifyError(err); id != 0 {
		return fmt.Sprintf("%s\n\n  • Run 'bundlekit issue %s' for details", err, id)
	}
	return err.Error()
}
