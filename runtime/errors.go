package runtime

import "errors"

// ErrRunning is returned by Run when the loop is already running.
var ErrRunning = errors.New("runtime: loop already running")
