package cache

import "errors"

// ErrNotFound is returned by fetchers that have no content for a key.
var ErrNotFound = errors.New("cache: key not found")
