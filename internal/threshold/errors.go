package threshold

import "errors"

var (
	// ErrSessionDone is returned by Step when the session already finished.
	ErrSessionDone = errors.New("threshold: session is done")
)
