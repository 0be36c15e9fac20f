// Package recorder persists holdings snapshots for later analysis. It is
// write-only from the proxy's point of view: nothing on the serving path
// ever reads it back.
package recorder

import "upfolio/internal/holdings"

// Recorder stores one holdings snapshot per poll.
type Recorder interface {
	RecordSnapshot(snap holdings.Snapshot) error
	Close() error
}
