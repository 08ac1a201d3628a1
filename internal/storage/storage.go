// Package storage holds what the storage backends share.
package storage

import "errors"

// ErrNotFound is returned by every backend when a job id is unknown.
var ErrNotFound = errors.New("job not found in storage")
