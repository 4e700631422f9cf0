// Package domain defines the core domain models for imgcarve.
package domain

import (
	"errors"
	"fmt"
)

// CarveError is a coded error carrying the filesystem path it concerns.
//
// Codes follow the format IC-<AREA>-<NNNN>. Errors compare equal under
// errors.Is when their codes match, so the sentinels below can be used as
// targets regardless of path or cause. Run-level failures are IC-IO and
// IC-CFG; IC-ART failures concern one artifact and never abort a run.
type CarveError struct {
	Code    string
	Message string
	Path    string
	Cause   error
}

func (e *CarveError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *CarveError) Unwrap() error {
	return e.Cause
}

// Is matches any CarveError with the same code.
func (e *CarveError) Is(target error) bool {
	t, ok := target.(*CarveError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewCarveError creates a new CarveError with the given code and message.
func NewCarveError(code, message string) *CarveError {
	return &CarveError{
		Code:    code,
		Message: message,
	}
}

// At returns a copy of the error bound to path and wrapping cause.
func (e *CarveError) At(path string, cause error) *CarveError {
	return &CarveError{
		Code:    e.Code,
		Message: e.Message,
		Path:    path,
		Cause:   cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *CarveError) WithCause(cause error) *CarveError {
	return &CarveError{
		Code:    e.Code,
		Message: e.Message,
		Path:    e.Path,
		Cause:   cause,
	}
}

// GetErrorCode returns the code of the first CarveError in err's chain, or
// "" when there is none.
func GetErrorCode(err error) string {
	var ce *CarveError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// ============================================================================
// Run-level I/O errors (IO). These abort the whole carve or merge.
// ============================================================================

var (
	// ErrInputRead indicates the input file could not be opened or read.
	ErrInputRead = NewCarveError("IC-IO-4001", "cannot read input file")

	// ErrOutputDir indicates the output directory could not be created.
	ErrOutputDir = NewCarveError("IC-IO-4002", "cannot create output directory")

	// ErrFragmentDir indicates the merge source directory could not be read.
	ErrFragmentDir = NewCarveError("IC-IO-4003", "cannot read fragment directory")

	// ErrMergeOutput indicates the merge destination could not be created.
	ErrMergeOutput = NewCarveError("IC-IO-4004", "cannot create merge output")

	// ErrFragmentIO indicates a fragment could not be read or appended.
	ErrFragmentIO = NewCarveError("IC-IO-4005", "cannot copy fragment")

	// ErrManifestWrite indicates the run manifest could not be written.
	ErrManifestWrite = NewCarveError("IC-IO-4006", "cannot write manifest")
)

// ============================================================================
// Per-artifact errors (ART). Reported individually, never fatal.
// ============================================================================

var (
	// ErrArtifactCreate indicates an artifact file could not be created.
	ErrArtifactCreate = NewCarveError("IC-ART-5001", "cannot create artifact")

	// ErrArtifactWrite indicates artifact bytes could not be written.
	ErrArtifactWrite = NewCarveError("IC-ART-5002", "cannot write artifact")

	// ErrArtifactDecode indicates the segment did not decode as an image.
	ErrArtifactDecode = NewCarveError("IC-ART-5003", "cannot decode image")

	// ErrArtifactSave indicates the decoded image could not be re-encoded.
	ErrArtifactSave = NewCarveError("IC-ART-5004", "cannot save image")
)

// ============================================================================
// Configuration errors (CFG)
// ============================================================================

var (
	// ErrInvalidConfig indicates a configuration value is invalid.
	ErrInvalidConfig = NewCarveError("IC-CFG-4000", "invalid configuration")
)
