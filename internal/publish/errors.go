package publish

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTokens means a GitHub token, or a Vercel token with no
	// configured default, was not supplied.
	ErrMissingTokens = errors.New("github and vercel tokens are required")
	// ErrRemotePublish matches every *Error.
	ErrRemotePublish = errors.New("remote publish failed")

	ErrInvalidName = errors.New("invalid site name")
)

// Stage names the step of the publish pipeline that failed.
type Stage string

const (
	StageCreateRepo    Stage = "create_repo"
	StagePushFiles     Stage = "push_files"
	StageCreateProject Stage = "create_project"
)

// Error describes a failed remote call. RepoURL is set when the repository
// was created before the failure; nothing is rolled back.
type Error struct {
	Stage   Stage
	Path    string
	Status  int
	Body    string
	RepoURL string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("publish %s", e.Stage)
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrRemotePublish }

// upstreamError carries the HTTP status and body of a rejected provider call.
type upstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *upstreamError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("upstream status %d", e.Status)
}

func (e *upstreamError) Unwrap() error { return e.Err }
