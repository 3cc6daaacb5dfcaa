package league

import "errors"

// Error kinds shared by the session provider and the export pipeline.
// Callers match them with errors.Is; every returned error wraps exactly one.
var (
	// ErrConfig reports missing or malformed credentials, ids or options.
	ErrConfig = errors.New("config error")

	// ErrSession reports a failed session construction or upstream query.
	ErrSession = errors.New("session error")

	// ErrInvalidWeek reports a week outside the league's season.
	ErrInvalidWeek = errors.New("invalid week")

	// ErrIndexOutOfRange reports a team index outside 1..team count.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrIO reports a directory or file failure while writing an export.
	ErrIO = errors.New("io error")
)
