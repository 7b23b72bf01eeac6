// Package discord is a small REST client for the chat platform's v9 HTTP API,
// used with an end-user session token.
//
// It knows nothing about exporting or auto-replying; callers get typed values
// or one of the errors in errors.go.
package discord

import "time"

// User is an account on the platform.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator,omitempty"`
	GlobalName    string `json:"global_name,omitempty"`
	Bot           bool   `json:"bot,omitempty"`
}

// Tag returns "name#1234", or just the name for accounts without a discriminator.
func (u User) Tag() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

// Guild is a server the current user belongs to.
type Guild struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner bool   `json:"owner,omitempty"`
}

// Attachment is a file uploaded with a message.
type Attachment struct {
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size,omitempty"`
}

// Embed is a rich preview block.
type Embed struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Emoji identifies a reaction emoji.
type Emoji struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Reaction is an emoji and how many people used it.
type Reaction struct {
	Emoji Emoji `json:"emoji"`
	Count int   `json:"count"`
}

// Message is a channel message as returned by the API. Treat it as read-only.
type Message struct {
	ID          string       `json:"id"`
	ChannelID   string       `json:"channel_id"`
	GuildID     string       `json:"guild_id,omitempty"`
	Author      User         `json:"author"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Pinned      bool         `json:"pinned,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Embeds      []Embed      `json:"embeds,omitempty"`
	Reactions   []Reaction   `json:"reactions,omitempty"`
}

// MessageReference points a new message at an existing one (a reply).
type MessageReference struct {
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id,omitempty"`
	GuildID   string `json:"guild_id,omitempty"`
}

// ReferenceTo builds the reply reference for m.
func ReferenceTo(m Message) *MessageReference {
	return &MessageReference{
		MessageID: m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
	}
}

// MessageQuery bounds a message listing. Empty cursors are omitted.
type MessageQuery struct {
	Limit  int
	Before string
	After  string
}
