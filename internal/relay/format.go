package relay

import (
	"context"
	"fmt"
	"time"

	"wikirelay/internal/event"
	"wikirelay/internal/wiki"
)

// Formatter turns classified change events into notification embeds.
// The wiki collaborators are injected so the pipeline can be exercised
// against deterministic fakes.
type Formatter struct {
	site  *wiki.Site
	logs  wiki.LogStore
	files wiki.FileRepo
}

func NewFormatter(site *wiki.Site, logs wiki.LogStore, files wiki.FileRepo) *Formatter {
	return &Formatter{
		site:  site,
		logs:  logs,
		files: files,
	}
}

// EditEmbed formats an edit event. The description links the diff and
// history views and carries the signed length delta.
func (f *Formatter) EditEmbed(ctx context.Context, ev *event.ChangeEvent) (*Embed, error) {
	embed, err := f.baseEmbed(ev)
	if err != nil {
		return nil, err
	}

	var oldRev int64
	if ev.Revision != nil {
		oldRev = ev.Revision.Old
	}
	diffLink := f.site.IndexURL(ev.Title, fmt.Sprintf("curid=%d&diff=0&oldid=%d", ev.PageID, oldRev))
	histLink := f.site.IndexURL(ev.Title, fmt.Sprintf("action=history&curid=%d", ev.PageID))

	delta := ev.LengthDelta()
	deltaText := fmt.Sprintf("%d", delta)
	if delta > 0 {
		deltaText = "+" + deltaText
	}

	// The comment is escaped before the links are spliced in; escaping
	// the composed string would mangle underscores inside the URLs.
	description := fmt.Sprintf("(%s | %s) (%s)", mdLink("diff", diffLink), mdLink("hist", histLink), deltaText)
	if ev.Comment != "" {
		description = EscapeMarkdown(ev.Comment) + " " + description
	}

	switch {
	case delta > 0:
		embed.Color = ColorGrowth
	case delta < 0:
		embed.Color = ColorShrink
	default:
		embed.Color = ColorNeutral
	}
	embed.Description = description
	embed.Footer = EmbedFooter{Text: event.SourceEdit}

	return embed, nil
}

// NewPageEmbed formats a page creation. Creations have no length delta
// semantics, so the color is always neutral.
func (f *Formatter) NewPageEmbed(ctx context.Context, ev *event.ChangeEvent) (*Embed, error) {
	embed, err := f.baseEmbed(ev)
	if err != nil {
		return nil, err
	}

	histLink := f.site.IndexURL(ev.Title, fmt.Sprintf("action=history&curid=%d", ev.PageID))

	var newLen int
	if ev.Length != nil {
		newLen = ev.Length.New
	}
	description := fmt.Sprintf("(%s) (%d)", mdLink("hist", histLink), newLen)
	if ev.Comment != "" {
		description = EscapeMarkdown(ev.Comment) + " " + description
	}

	embed.Color = ColorNeutral
	embed.Description = description
	embed.Footer = EmbedFooter{Text: event.SourceNew}

	return embed, nil
}

// LogEmbed formats an administrative log action. The full entry is
// resolved from the log store; wiki.ErrLogEntryNotFound propagates so
// the caller can skip the event cleanly.
func (f *Formatter) LogEmbed(ctx context.Context, ev *event.ChangeEvent) (*Embed, error) {
	embed, err := f.baseEmbed(ev)
	if err != nil {
		return nil, err
	}

	entry, err := f.logs.GetEntry(ctx, ev.LogID)
	if err != nil {
		return nil, err
	}

	description := wiki.ActionText(entry)
	if entry.Comment != "" {
		description = description + ": " + entry.Comment
	}

	embed.Color = ColorNeutral
	embed.Description = EscapeMarkdown(description)
	embed.Footer = EmbedFooter{Text: event.SourceLog}

	if ev.LogType == "upload" {
		fileURL, err := f.files.FileURL(ctx, ev.Title)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve uploaded file for %q: %w", ev.Title, err)
		}
		embed.Image = &EmbedImage{URL: fileURL}
	}

	return embed, nil
}

// baseEmbed fills the fields shared by all three formatters. A missing
// title or performer aborts the event; no partial notification is sent.
func (f *Formatter) baseEmbed(ev *event.ChangeEvent) (*Embed, error) {
	if ev.Title == "" {
		return nil, fmt.Errorf("event %d has no resolvable title", ev.ID)
	}
	if ev.User == "" {
		return nil, fmt.Errorf("event %d has no resolvable performer", ev.ID)
	}

	pageURL := ev.TitleURL
	if pageURL == "" {
		pageURL = f.site.PageURL(ev.Title)
	}

	return &Embed{
		Title: ev.Title,
		URL:   pageURL,
		Author: EmbedAuthor{
			Name: ev.User,
			URL:  f.site.UserURL(ev.User),
		},
		Timestamp: ev.Time().Format(time.RFC3339),
	}, nil
}
