package domain

import "errors"

// ErrRunNotFound is returned by run stores for an unknown run ID.
var ErrRunNotFound = errors.New("sizing run not found")
