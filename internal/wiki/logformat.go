package wiki

import "fmt"

// logActionPhrases maps log type/action pairs to a past-tense verb
// phrase. The phrases follow the wiki's own log line wording.
var logActionPhrases = map[string]string{
	"delete/delete":        "deleted page",
	"delete/restore":       "restored page",
	"move/move":            "moved page",
	"move/move_redir":      "moved page over redirect",
	"upload/upload":        "uploaded",
	"upload/overwrite":     "uploaded a new version of",
	"upload/revert":        "reverted",
	"block/block":          "blocked",
	"block/reblock":        "changed block settings for",
	"block/unblock":        "unblocked",
	"protect/protect":      "protected page",
	"protect/unprotect":    "removed protection from",
	"protect/modify":       "changed protection settings of",
	"newusers/create":      "created account",
	"newusers/autocreate":  "automatically created account",
	"rights/rights":        "changed group membership for",
	"import/upload":        "imported",
	"patrol/patrol":        "marked as patrolled",
	"contentmodel/change":  "changed content model of",
	"managetags/create":    "created tag on",
	"merge/merge":          "merged",
	"suppress/delete":      "suppressed page",
}

// ActionText renders a plain-text, human-readable description of a log
// entry, e.g. "Admin deleted page Sandbox".
func ActionText(entry *LogEntry) string {
	phrase, ok := logActionPhrases[entry.Type+"/"+entry.Action]
	if !ok {
		phrase = fmt.Sprintf("performed %s/%s on", entry.Type, entry.Action)
	}
	return fmt.Sprintf("%s %s %s", entry.Performer, phrase, entry.Title)
}
