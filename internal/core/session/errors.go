package session

import (
	"errors"
	"fmt"
)

// ErrStaleOutcome is returned when a request outcome arrives but no matching
// request is in flight. The outcome is not applied.
var ErrStaleOutcome = errors.New("no matching request in flight")

// ErrRejected is returned by Driver when the controller refuses an intent in
// the current state
var ErrRejected = errors.New("action not allowed in current state")

// UploadError reports a failed upload. The session is idle again and keeps
// whatever paragraphs it had.
type UploadError struct {
	Reason string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("error uploading file: %s", e.Reason)
}

// ExportError reports a failed deck export
type ExportError struct {
	Reason string
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("error downloading deck: %s", e.Reason)
}

// ResetError reports that the server artifact could not be deleted. Local
// state has already been cleared when this is returned.
type ResetError struct {
	Ref    string
	Reason string
}

func (e *ResetError) Error() string {
	return fmt.Sprintf("error deleting file: %s", e.Reason)
}
