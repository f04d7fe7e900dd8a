package database

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	FollowPending  = "pending"
	FollowAccepted = "accepted"
	FollowRejected = "rejected"
)

type Message struct {
	Id         primitive.ObjectID `bson:"_id,omitempty"`
	From       string             `bson:"from"`
	To         string             `bson:"to"`
	Content    string             `bson:"content,omitempty"`
	Attachment *Attachment        `bson:"attachment,omitempty"`
	Read       bool               `bson:"read"`
	CreatedAt  time.Time          `bson:"created_at"`
}

type Attachment struct {
	Kind     string `bson:"kind"`
	Url      string `bson:"url"`
	Filename string `bson:"filename,omitempty"`
}

// FollowRequest rows are owned by the follow-request service; this
// package only ever reads them.
type FollowRequest struct {
	Id        primitive.ObjectID `bson:"_id,omitempty"`
	From      string             `bson:"from"`
	To        string             `bson:"to"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
}

// User rows are owned by the profile service; read here only to enrich
// outbound messages and conversation views.
type User struct {
	Id       string `bson:"_id"`
	Username string `bson:"username"`
	Name     string `bson:"name"`
	Avatar   string `bson:"avatar"`
}

type CreateMessageParams struct {
	From       string
	To         string
	Content    string
	Attachment *Attachment
}

// ConversationView is derived from the messages collection on demand,
// one entry per counterpart the user has exchanged messages with.
type ConversationView struct {
	User        User
	LastMessage Message
	UnreadCount int
}
