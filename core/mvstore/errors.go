package mvstore

import "errors"

// Error classes of the page layer. Read-path failures wrap ErrFileCorrupt
// with the chunk id and the expected/actual values; ErrInternal marks logic
// bugs (e.g. serializing an already stored page) and is never recoverable.
var (
	ErrFileCorrupt = errors.New("file corrupted")
	ErrInternal    = errors.New("internal error")
)
