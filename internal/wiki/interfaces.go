package wiki

import (
	"context"
	"errors"
)

// ErrLogEntryNotFound is returned when a log id resolves to nothing.
// Entries can legitimately be deleted or suppressed after the change
// event was observed, so callers treat this as a clean skip.
var ErrLogEntryNotFound = errors.New("log entry not found")

// ErrFileNotFound is returned when no current file version exists for
// an uploaded page.
var ErrFileNotFound = errors.New("file not found")

// LogStore looks up administrative log entries on the wiki's replica
// database.
type LogStore interface {
	GetEntry(ctx context.Context, logID int64) (*LogEntry, error)
}

// FileRepo resolves the current full URL of an uploaded file by its
// page title.
type FileRepo interface {
	FileURL(ctx context.Context, title string) (string, error)
}
