package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikirelay/internal/config"
	"wikirelay/internal/event"
	"wikirelay/internal/wiki"
)

type fakeLogStore struct {
	entry *wiki.LogEntry
	err   error
}

func (f *fakeLogStore) GetEntry(ctx context.Context, logID int64) (*wiki.LogEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entry, nil
}

type fakeFileRepo struct {
	url string
	err error
}

func (f *fakeFileRepo) FileURL(ctx context.Context, title string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func testSite() *wiki.Site {
	return wiki.NewSite(config.WikiConfig{
		ServerURL:   "https://wiki.example.org",
		ArticlePath: "/wiki/$1",
		ScriptPath:  "/w",
	})
}

func TestFormatter_EditEmbed(t *testing.T) {
	f := NewFormatter(testSite(), &fakeLogStore{}, &fakeFileRepo{})

	ev := &event.ChangeEvent{
		ID:        1,
		Type:      event.SourceEdit,
		Title:     "Main Page",
		PageID:    42,
		User:      "Alice",
		Comment:   "fix typo",
		Timestamp: 1700000000,
		Length:    &event.Length{Old: 100, New: 150},
		Revision:  &event.Revision{Old: 900, New: 901},
	}

	embed, err := f.EditEmbed(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, "Main Page", embed.Title)
	assert.Equal(t, "https://wiki.example.org/wiki/Main_Page", embed.URL)
	assert.Equal(t, "Alice", embed.Author.Name)
	assert.Equal(t, "https://wiki.example.org/wiki/User:Alice", embed.Author.URL)
	assert.Equal(t, ColorGrowth, embed.Color)
	assert.Equal(t, "edit", embed.Footer.Text)
	assert.Equal(t, "2023-11-14T22:13:20Z", embed.Timestamp)

	expected := "fix typo " +
		"([diff](https://wiki.example.org/w/index.php?title=Main_Page&curid=42&diff=0&oldid=900)" +
		" | " +
		"[hist](https://wiki.example.org/w/index.php?title=Main_Page&action=history&curid=42))" +
		" (+50)"
	assert.Equal(t, expected, embed.Description)
}

func TestFormatter_EditEmbed_Colors(t *testing.T) {
	f := NewFormatter(testSite(), &fakeLogStore{}, &fakeFileRepo{})

	tests := []struct {
		name  string
		old   int
		new   int
		color int
		delta string
	}{
		{name: "growth is green", old: 10, new: 30, color: ColorGrowth, delta: "(+20)"},
		{name: "shrink is red", old: 30, new: 10, color: ColorShrink, delta: "(-20)"},
		{name: "no change is neutral", old: 30, new: 30, color: ColorNeutral, delta: "(0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &event.ChangeEvent{
				Type:   event.SourceEdit,
				Title:  "Sandbox",
				User:   "Bob",
				Length: &event.Length{Old: tt.old, New: tt.new},
			}
			embed, err := f.EditEmbed(context.Background(), ev)
			require.NoError(t, err)
			assert.Equal(t, tt.color, embed.Color)
			assert.Contains(t, embed.Description, tt.delta)
		})
	}
}

func TestFormatter_EditEmbed_EscapesCommentNotLinks(t *testing.T) {
	f := NewFormatter(testSite(), &fakeLogStore{}, &fakeFileRepo{})

	ev := &event.ChangeEvent{
		Type:    event.SourceEdit,
		Title:   "Main Page",
		User:    "Alice",
		Comment: "*important* fix",
		Length:  &event.Length{Old: 1, New: 2},
	}

	embed, err := f.EditEmbed(context.Background(), ev)
	require.NoError(t, err)

	assert.Contains(t, embed.Description, "\\*important\\* fix")
	// The link URLs keep their underscores.
	assert.Contains(t, embed.Description, "title=Main_Page&")
	assert.NotContains(t, embed.Description, "Main\\_Page")
}

func TestFormatter_EditEmbed_ParensInTitleEncodedInLinks(t *testing.T) {
	f := NewFormatter(testSite(), &fakeLogStore{}, &fakeFileRepo{})

	ev := &event.ChangeEvent{
		Type:  event.SourceEdit,
		Title: "Go (language)",
		User:  "Alice",
	}

	embed, err := f.EditEmbed(context.Background(), ev)
	require.NoError(t, err)

	assert.Contains(t, embed.Description, "title=Go_%28language%29")
	assert.NotContains(t, embed.Description, "title=Go_(language)")
	// The plain embed URL is not markdown-embedded, so it keeps its parens.
	assert.Equal(t, "https://wiki.example.org/wiki/Go_(language)", embed.URL)
}

func TestFormatter_EditEmbed_PrefersTitleURL(t *testing.T) {
	f := NewFormatter(testSite(), &fakeLogStore{}, &fakeFileRepo{})

	ev := &event.ChangeEvent{
		Type:     event.SourceEdit,
		Title:    "Main Page",
		TitleURL: "https://other.example.org/Main_Page",
		User:     "Alice",
	}

	embed, err := f.EditEmbed(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.org/Main_Page", embed.URL)
}

func TestFormatter_NewPageEmbed(t *testing.T) {
	f := NewFormatter(testSite(), &fakeLogStore{}, &fakeFileRepo{})

	ev := &event.ChangeEvent{
		Type:    event.SourceNew,
		Title:   "Fresh Article",
		PageID:  7,
		User:    "Carol",
		Comment: "created",
		Length:  &event.Length{Old: 0, New: 512},
	}

	embed, err := f.NewPageEmbed(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, ColorNeutral, embed.Color)
	assert.Equal(t, "new", embed.Footer.Text)

	expected := "created " +
		"([hist](https://wiki.example.org/w/index.php?title=Fresh_Article&action=history&curid=7))" +
		" (512)"
	assert.Equal(t, expected, embed.Description)
}

func TestFormatter_LogEmbed(t *testing.T) {
	logs := &fakeLogStore{
		entry: &wiki.LogEntry{
			ID:        5,
			Type:      "delete",
			Action:    "delete",
			Performer: "Admin",
			Title:     "Spam Page",
			Comment:   "spam",
		},
	}
	f := NewFormatter(testSite(), logs, &fakeFileRepo{})

	ev := &event.ChangeEvent{
		Type:    event.SourceLog,
		Title:   "Spam Page",
		User:    "Admin",
		LogID:   5,
		LogType: "delete",
	}

	embed, err := f.LogEmbed(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, ColorNeutral, embed.Color)
	assert.Equal(t, "log", embed.Footer.Text)
	assert.Equal(t, "Admin deleted page Spam Page: spam", embed.Description)
	assert.Nil(t, embed.Image)
}

func TestFormatter_LogEmbed_EntryNotFound(t *testing.T) {
	logs := &fakeLogStore{err: wiki.ErrLogEntryNotFound}
	f := NewFormatter(testSite(), logs, &fakeFileRepo{})

	ev := &event.ChangeEvent{
		Type:  event.SourceLog,
		Title: "Gone Page",
		User:  "Admin",
		LogID: 99,
	}

	_, err := f.LogEmbed(context.Background(), ev)
	assert.ErrorIs(t, err, wiki.ErrLogEntryNotFound)
}

func TestFormatter_LogEmbed_UploadAttachesImage(t *testing.T) {
	logs := &fakeLogStore{
		entry: &wiki.LogEntry{
			Type:      "upload",
			Action:    "upload",
			Performer: "Dave",
			Title:     "File:Photo.png",
		},
	}
	files := &fakeFileRepo{url: "https://wiki.example.org/images/a/ab/Photo.png"}
	f := NewFormatter(testSite(), logs, files)

	ev := &event.ChangeEvent{
		Type:    event.SourceLog,
		Title:   "File:Photo.png",
		User:    "Dave",
		LogID:   3,
		LogType: "upload",
	}

	embed, err := f.LogEmbed(context.Background(), ev)
	require.NoError(t, err)

	require.NotNil(t, embed.Image)
	assert.Equal(t, "https://wiki.example.org/images/a/ab/Photo.png", embed.Image.URL)
	assert.Equal(t, "Dave uploaded File:Photo.png", embed.Description)
}

func TestFormatter_LogEmbed_UploadFileLookupFailure(t *testing.T) {
	logs := &fakeLogStore{
		entry: &wiki.LogEntry{Type: "upload", Action: "upload", Performer: "Dave", Title: "File:X.png"},
	}
	files := &fakeFileRepo{err: errors.New("replica unavailable")}
	f := NewFormatter(testSite(), logs, files)

	ev := &event.ChangeEvent{
		Type:    event.SourceLog,
		Title:   "File:X.png",
		User:    "Dave",
		LogType: "upload",
	}

	_, err := f.LogEmbed(context.Background(), ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve uploaded file")
}

func TestFormatter_BaseEmbed_RejectsIncompleteEvents(t *testing.T) {
	f := NewFormatter(testSite(), &fakeLogStore{}, &fakeFileRepo{})

	_, err := f.EditEmbed(context.Background(), &event.ChangeEvent{User: "Alice"})
	assert.Error(t, err)

	_, err = f.EditEmbed(context.Background(), &event.ChangeEvent{Title: "Page"})
	assert.Error(t, err)
}
