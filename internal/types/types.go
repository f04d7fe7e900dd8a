package types

import (
	"time"
)

type User struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

const (
	AttachmentImage = "image"
	AttachmentVideo = "video"
)

type Attachment struct {
	Kind     string `json:"kind"`
	Url      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

type Message struct {
	Id         string      `json:"id"`
	From       string      `json:"from"`
	To         string      `json:"to"`
	Sender     *User       `json:"sender,omitempty"`
	Content    string      `json:"content,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Read       bool        `json:"read"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Conversation is the derived per-counterpart summary; it is computed
// from stored messages and never persisted.
type Conversation struct {
	User        User    `json:"user"`
	LastMessage Message `json:"last_message"`
	UnreadCount int     `json:"unread_count"`
}
