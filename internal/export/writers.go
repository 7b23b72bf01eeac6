package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dayuer/chatpacer/internal/discord"
)

// Writer encodes an ordered batch of messages.
type Writer interface {
	Format() string
	Ext() string
	Write(w io.Writer, channelID string, msgs []discord.Message) error
}

var writers = map[string]Writer{
	"json": jsonWriter{},
	"html": htmlWriter{},
	"txt":  textWriter{},
	"csv":  csvWriter{},
}

// WriterFor returns the writer registered for format.
func WriterFor(format string) (Writer, error) {
	w, ok := writers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("unsupported export format %q (want one of %s)", format, strings.Join(Formats(), ", "))
	}
	return w, nil
}

// Formats lists the supported format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(writers))
	for name := range writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// --- json ---

type jsonWriter struct{}

func (jsonWriter) Format() string { return "json" }
func (jsonWriter) Ext() string    { return "json" }

func (jsonWriter) Write(w io.Writer, _ string, msgs []discord.Message) error {
	if msgs == nil {
		msgs = []discord.Message{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(msgs)
}

// --- html ---

var htmlTemplate = template.Must(template.New("export").Funcs(template.FuncMap{
	"stamp": stamp,
}).Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Chat Export - Channel {{.ChannelID}}</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; background: #36393f; color: #dcddde; }
    .message { margin-bottom: 20px; padding: 10px; border-bottom: 1px solid #2f3136; }
    .author { font-weight: bold; color: #7289da; }
    .timestamp { color: #72767d; font-size: 0.8em; }
    .content { margin: 5px 0; white-space: pre-wrap; }
    .attachment { color: #7289da; }
    .embed { background: #2f3136; border-left: 4px solid #7289da; padding: 10px; margin: 5px 0; }
    .reaction { display: inline-block; margin: 0 5px; }
    .pinned { color: #faa61a; }
  </style>
</head>
<body>
  <h1>Chat export: Channel {{.ChannelID}}</h1>
{{- range .Messages}}
  <div class="message" id="m{{.ID}}">
    <div class="author">{{.Author.Username}}</div>
    <div class="timestamp">{{stamp .Timestamp}}</div>
    {{- if .Content}}
    <div class="content">{{.Content}}</div>
    {{- end}}
    {{- if .Attachments}}
    <div class="attachments">
      {{- range .Attachments}}
      <div class="attachment">📎 <a href="{{.URL}}">{{.Filename}}</a></div>
      {{- end}}
    </div>
    {{- end}}
    {{- if .Embeds}}
    <div class="embeds">
      {{- range .Embeds}}
      <div class="embed">
        {{- if .Title}}<div class="embed-title">{{.Title}}</div>{{end}}
        {{- if .Description}}<div class="embed-description">{{.Description}}</div>{{end}}
      </div>
      {{- end}}
    </div>
    {{- end}}
    {{- if .Reactions}}
    <div class="reactions">
      {{- range .Reactions}}
      <span class="reaction">{{.Emoji.Name}} {{.Count}}</span>
      {{- end}}
    </div>
    {{- end}}
    {{- if .Pinned}}
    <div class="pinned">📌 Pinned</div>
    {{- end}}
  </div>
{{- end}}
</body>
</html>
`))

type htmlWriter struct{}

func (htmlWriter) Format() string { return "html" }
func (htmlWriter) Ext() string    { return "html" }

func (htmlWriter) Write(w io.Writer, channelID string, msgs []discord.Message) error {
	return htmlTemplate.Execute(w, struct {
		ChannelID string
		Messages  []discord.Message
	}{channelID, msgs})
}

// --- txt ---

type textWriter struct{}

func (textWriter) Format() string { return "txt" }
func (textWriter) Ext() string    { return "txt" }

func (textWriter) Write(w io.Writer, channelID string, msgs []discord.Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Chat export: Channel %s\n", channelID)
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
	for _, m := range msgs {
		fmt.Fprintf(&b, "[%s] %s:\n", stamp(m.Timestamp), m.Author.Username)
		if m.Content != "" {
			b.WriteString(m.Content)
			b.WriteString("\n")
		}
		for _, a := range m.Attachments {
			fmt.Fprintf(&b, "[Attachment: %s]\n", a.Filename)
		}
		if len(m.Embeds) > 0 {
			b.WriteString("[Embeds]\n")
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// --- csv ---

type csvWriter struct{}

func (csvWriter) Format() string { return "csv" }
func (csvWriter) Ext() string    { return "csv" }

func (csvWriter) Write(w io.Writer, _ string, msgs []discord.Message) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Timestamp", "Author", "Content", "Attachments", "Embeds", "Reactions"}); err != nil {
		return err
	}
	for _, m := range msgs {
		row := []string{
			stamp(m.Timestamp),
			m.Author.Username,
			m.Content,
			strconv.Itoa(len(m.Attachments)),
			strconv.Itoa(len(m.Embeds)),
			strconv.Itoa(len(m.Reactions)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
