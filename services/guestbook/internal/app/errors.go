package app

import "errors"

var (
	// ErrStore marks a failed Entry Store call: unreachable, rejected, or timed out.
	ErrStore = errors.New("entry store failure")
)
