package server

import (
	"net/http"
	"time"

	"github.com/reelchat/reelchat/internal/types"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ClientMessage struct {
	BaseMessage
	Register *Register `json:"register,omitempty"`
	Join     *Join     `json:"join,omitempty"`
	Publish  *Publish  `json:"publish,omitempty"`
	Typing   *Typing   `json:"typing,omitempty"`
	client   *Client
}

type Register struct {
	UserId string `json:"user_id"`
}

type Join struct {
	UserId      string `json:"user_id"`
	OtherUserId string `json:"other_user_id"`
}

type Publish struct {
	From       string            `json:"from"`
	To         string            `json:"to"`
	Content    string            `json:"content,omitempty"`
	Attachment *types.Attachment `json:"attachment,omitempty"`
}

// Typing covers both the start and stop signals; Active distinguishes
// them. Typing events are never authorized or persisted.
type Typing struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Active bool   `json:"active"`
}

type ServerMessage struct {
	BaseMessage
	Response     *Response      `json:"response,omitempty"`
	Message      *types.Message `json:"message,omitempty"`
	Notification *Notification  `json:"notification,omitempty"`
	SkipClient   *Client        `json:"-"`
}

type Response struct {
	ResponseCode int            `json:"response_code"`
	Error        string         `json:"error,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
}

type Notification struct {
	Presence *PresenceEvent `json:"presence,omitempty"`
	Typing   *TypingEvent   `json:"typing,omitempty"`
}

type PresenceEvent struct {
	UserId string `json:"user_id"`
	Online bool   `json:"online"`
}

type TypingEvent struct {
	UserId string `json:"user_id"`
	RoomId string `json:"room_id"`
	Active bool   `json:"active"`
}

func NoErrOK(id int, data map[string]any) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
			Data:         data,
		},
	}
}

func ErrNotAuthorized(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusForbidden,
			Error:        "can only chat with mutual followers",
		},
	}
}

func ErrInvalidMessage(id int, reason string) *ServerMessage {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        reason,
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

// ErrTransient reports a store or oracle failure as retryable; no
// session state changed, so the client may simply resend.
func ErrTransient(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusServiceUnavailable,
			Error:        "temporarily unable to complete request",
		},
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
