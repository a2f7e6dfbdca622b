package event

import "time"

// Source categories as emitted by MediaWiki recent-change feeds.
const (
	SourceEdit = "edit"
	SourceNew  = "new"
	SourceLog  = "log"
)

type Kind int

const (
	KindIgnored Kind = iota
	KindEdit
	KindNewPage
	KindLogAction
)

func (k Kind) String() string {
	switch k {
	case KindEdit:
		return "edit"
	case KindNewPage:
		return "new"
	case KindLogAction:
		return "log"
	default:
		return "ignored"
	}
}

// Length carries the page byte size before and after the change.
type Length struct {
	Old int `json:"old"`
	New int `json:"new"`
}

// Revision carries the revision ids around the change.
type Revision struct {
	Old int64 `json:"old"`
	New int64 `json:"new"`
}

// ChangeEvent is one observed wiki change. The JSON shape follows the
// mediawiki.recentchange stream schema, extended with page_id which the
// in-wiki hook supplies when posting events directly.
type ChangeEvent struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Namespace int    `json:"namespace"`
	Title     string `json:"title"`
	TitleURL  string `json:"title_url,omitempty"`
	PageID    int64  `json:"page_id,omitempty"`
	Comment   string `json:"comment"`
	Timestamp int64  `json:"timestamp"`
	User      string `json:"user"`
	Bot       bool   `json:"bot"`
	Minor     bool   `json:"minor,omitempty"`

	Length   *Length   `json:"length,omitempty"`
	Revision *Revision `json:"revision,omitempty"`

	LogID     int64  `json:"log_id,omitempty"`
	LogType   string `json:"log_type,omitempty"`
	LogAction string `json:"log_action,omitempty"`

	ServerURL  string `json:"server_url,omitempty"`
	ServerName string `json:"server_name,omitempty"`
	Wiki       string `json:"wiki,omitempty"`
}

// Kind classifies the event by its source category. Unrecognized
// categories (e.g. "categorize", "external") map to KindIgnored.
func (e *ChangeEvent) Kind() Kind {
	switch e.Type {
	case SourceEdit:
		return KindEdit
	case SourceNew:
		return KindNewPage
	case SourceLog:
		return KindLogAction
	default:
		return KindIgnored
	}
}

// LengthDelta is newLen - oldLen for edits. Zero when no length block
// is present.
func (e *ChangeEvent) LengthDelta() int {
	if e.Length == nil {
		return 0
	}
	return e.Length.New - e.Length.Old
}

func (e *ChangeEvent) Time() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}
