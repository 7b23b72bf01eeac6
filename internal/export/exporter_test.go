package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dayuer/chatpacer/internal/discord"
	"github.com/dayuer/chatpacer/internal/pacing"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMessages() []discord.Message {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []discord.Message{
		{
			ID:        "2",
			ChannelID: "c1",
			Author:    discord.User{ID: "u2", Username: "bob"},
			Content:   "<b>bold</b> & more",
			Timestamp: ts.Add(time.Minute),
			Embeds:    []discord.Embed{{Title: "Link", Description: "preview"}},
			Reactions: []discord.Reaction{{Emoji: discord.Emoji{Name: "👍"}, Count: 3}},
			Pinned:    true,
		},
		{
			ID:          "1",
			ChannelID:   "c1",
			Author:      discord.User{ID: "u1", Username: "alice"},
			Content:     "hello, world",
			Timestamp:   ts,
			Attachments: []discord.Attachment{{Filename: "cat.png", URL: "https://cdn.example/cat.png"}},
		},
	}
}

func ids(msgs []discord.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestNormalize_DedupAndOrder(t *testing.T) {
	in := []discord.Message{{ID: "30"}, {ID: "100"}, {ID: "9"}, {ID: "30", Content: "dup"}}
	got := Normalize(in)

	if diff := cmp.Diff([]string{"9", "30", "100"}, ids(got)); diff != "" {
		t.Errorf("Normalize order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "", got[1].Content, "first occurrence wins")
	assert.Equal(t, "30", in[0].ID, "input untouched")
}

func TestWriterFor(t *testing.T) {
	for _, name := range []string{"json", "HTML", "txt", "csv"} {
		w, err := WriterFor(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, w.Ext())
	}
	_, err := WriterFor("xml")
	assert.Error(t, err)
	assert.Equal(t, []string{"csv", "html", "json", "txt"}, Formats())
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jsonWriter{}.Write(&buf, "c1", sampleMessages()))

	assert.Contains(t, buf.String(), "<b>bold</b> & more", "no HTML escaping")
	var decoded []discord.Message
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "bob", decoded[0].Author.Username)
}

func TestJSONWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jsonWriter{}.Write(&buf, "c1", nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestHTMLWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, htmlWriter{}.Write(&buf, "c1", sampleMessages()))
	out := buf.String()

	assert.Contains(t, out, "Channel c1")
	assert.Contains(t, out, "&lt;b&gt;bold&lt;/b&gt; &amp; more")
	assert.Contains(t, out, `href="https://cdn.example/cat.png"`)
	assert.Contains(t, out, "cat.png")
	assert.Contains(t, out, "embed-title")
	assert.Contains(t, out, "👍 3")
	assert.Contains(t, out, "Pinned")
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, textWriter{}.Write(&buf, "c1", sampleMessages()))
	out := buf.String()

	assert.Contains(t, out, "Chat export: Channel c1\n=====")
	assert.Contains(t, out, "[2024-03-01T10:00:00Z] alice:\nhello, world\n[Attachment: cat.png]\n")
	assert.Contains(t, out, "[Embeds]")
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, csvWriter{}.Write(&buf, "c1", sampleMessages()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Timestamp", "Author", "Content", "Attachments", "Embeds", "Reactions"}, rows[0])
	assert.Equal(t, []string{"2024-03-01T10:01:00Z", "bob", "<b>bold</b> & more", "0", "1", "1"}, rows[1])
	assert.Equal(t, "hello, world", rows[2][2])
}

type staticLister struct {
	pages [][]discord.Message
	err   error
	calls int
}

func (s *staticLister) Messages(context.Context, string, discord.MessageQuery) ([]discord.Message, error) {
	if s.calls >= len(s.pages) {
		s.calls++
		return nil, s.err
	}
	p := s.pages[s.calls]
	s.calls++
	return p, nil
}

func newTestExporter(t *testing.T, api MessageLister) (*Exporter, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "exports")
	clock := pacing.NewManualClock(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
	f := NewFetcher(api, &pacing.Recorder{}, FetchConfig{PageSize: 2}, nil)
	return NewExporter(f, dir, clock, nil), dir
}

func TestExporter_WritesFile(t *testing.T) {
	api := &staticLister{pages: [][]discord.Message{sampleMessages(), {}}}
	e, dir := newTestExporter(t, api)

	res, err := e.Export(context.Background(), Request{ChannelID: "c1", Limit: 100, Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "channel_c1_20240506_070809.json"), res.Path)
	assert.Equal(t, 2, res.Count)
	assert.False(t, res.Partial)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	var decoded []discord.Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"1", "2"}, ids(decoded), "oldest first")
}

func TestExporter_SameSecondDoesNotOverwrite(t *testing.T) {
	api := &staticLister{pages: [][]discord.Message{sampleMessages(), {}}}
	e, dir := newTestExporter(t, api)
	req := Request{ChannelID: "c1", Limit: 100, Format: "json"}

	first, err := e.Export(context.Background(), req)
	require.NoError(t, err)
	api.calls = 0
	second, err := e.Export(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "channel_c1_20240506_070809.json"), first.Path)
	assert.Equal(t, filepath.Join(dir, "channel_c1_20240506_070809_1.json"), second.Path)
	for _, p := range []string{first.Path, second.Path} {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		var decoded []discord.Message
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Len(t, decoded, 2, p)
	}
}

func TestExporter_PartialOnError(t *testing.T) {
	api := &staticLister{
		pages: [][]discord.Message{sampleMessages()},
		err:   &discord.APIError{Op: "get messages", Status: 403},
	}
	e, _ := newTestExporter(t, api)

	res, err := e.Export(context.Background(), Request{ChannelID: "c1", Limit: 100, Format: "csv"})
	require.Error(t, err)
	assert.True(t, discord.IsRateLimitOrAuth(err))
	assert.True(t, res.Partial)
	assert.Equal(t, 2, res.Count)
	assert.FileExists(t, res.Path)
}

func TestExporter_ErrorWithNothingWritesNothing(t *testing.T) {
	api := &staticLister{err: &discord.TransportError{Op: "get messages", Err: context.DeadlineExceeded}}
	e, dir := newTestExporter(t, api)

	res, err := e.Export(context.Background(), Request{ChannelID: "c1", Limit: 100, Format: "txt"})
	require.Error(t, err)
	assert.Empty(t, res.Path)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExporter_Validation(t *testing.T) {
	e, _ := newTestExporter(t, &staticLister{})

	_, err := e.Export(context.Background(), Request{ChannelID: "c1", Format: "pdf"})
	assert.Error(t, err)
	_, err = e.Export(context.Background(), Request{Format: "json"})
	assert.Error(t, err)
}

func TestParseBound(t *testing.T) {
	got, err := ParseBound("")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = ParseBound("1234567890")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", got)

	got, err = ParseBound("2023-06-01")
	require.NoError(t, err)
	assert.Equal(t, discord.SnowflakeFromTime(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)), got)

	_, err = ParseBound("yesterday")
	assert.Error(t, err)
}
