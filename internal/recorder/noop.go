package recorder

import "upfolio/internal/holdings"

// NoopRecorder is used when no SQLite path is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshot(_ holdings.Snapshot) error { return nil }
func (n *NoopRecorder) Close() error                             { return nil }
