package wiki

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// mwTimestampLayout is the TS_MW format the wiki stores in log_timestamp.
const mwTimestampLayout = "20060102150405"

// Repository reads the wiki's replica database. It implements LogStore
// and FileRepo against the standard logging/actor/comment/image tables.
type Repository struct {
	db   *sql.DB
	site *Site
}

func NewRepository(db *sql.DB, site *Site) *Repository {
	return &Repository{db: db, site: site}
}

func (r *Repository) GetEntry(ctx context.Context, logID int64) (*LogEntry, error) {
	if r.db == nil {
		// No replica configured; every lookup behaves as not-found so
		// log-action events are skipped cleanly.
		return nil, ErrLogEntryNotFound
	}

	query := `
		SELECT l.log_id, l.log_type, l.log_action, l.log_timestamp, l.log_title,
		       COALESCE(a.actor_name, ''), COALESCE(c.comment_text, '')
		FROM logging l
		LEFT JOIN actor a ON a.actor_id = l.log_actor
		LEFT JOIN comment c ON c.comment_id = l.log_comment_id
		WHERE l.log_id = $1
	`

	var entry LogEntry
	var ts string
	err := r.db.QueryRowContext(ctx, query, logID).Scan(
		&entry.ID,
		&entry.Type,
		&entry.Action,
		&ts,
		&entry.Title,
		&entry.Performer,
		&entry.Comment,
	)
	if err == sql.ErrNoRows {
		return nil, ErrLogEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query log entry %d: %w", logID, err)
	}

	entry.Title = strings.ReplaceAll(entry.Title, "_", " ")
	if parsed, perr := time.Parse(mwTimestampLayout, ts); perr == nil {
		entry.Timestamp = parsed.UTC()
	}

	return &entry, nil
}

func (r *Repository) FileURL(ctx context.Context, title string) (string, error) {
	if r.db == nil {
		return "", ErrFileNotFound
	}

	name := fileName(title)

	var imgName string
	err := r.db.QueryRowContext(ctx,
		`SELECT img_name FROM image WHERE img_name = $1`, name,
	).Scan(&imgName)
	if err == sql.ErrNoRows {
		return "", ErrFileNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query image %s: %w", name, err)
	}

	return r.site.uploadURL(imgName), nil
}

// fileName strips the namespace prefix and replaces spaces, matching the
// img_name key of the image table.
func fileName(title string) string {
	if i := strings.Index(title, ":"); i >= 0 {
		title = title[i+1:]
	}
	return strings.ReplaceAll(title, " ", "_")
}

// uploadURL builds the hashed upload path the wiki serves files from:
// <script path>/images/<x>/<xy>/<name> where x and xy come from the md5
// of the file name.
func (s *Site) uploadURL(name string) string {
	sum := md5.Sum([]byte(name))
	h := hex.EncodeToString(sum[:])
	return fmt.Sprintf("%s%s/images/%s/%s/%s", s.serverURL, s.scriptPath, h[:1], h[:2], EncodeTitle(name))
}
