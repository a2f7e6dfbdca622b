package wiki

import "time"

// LogEntry is one row of the wiki's administrative log, resolved by id.
type LogEntry struct {
	ID        int64
	Type      string
	Action    string
	Timestamp time.Time
	Performer string
	Title     string
	Comment   string
}
