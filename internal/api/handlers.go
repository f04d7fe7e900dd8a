package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/reelchat/reelchat/internal/database"
	"github.com/reelchat/reelchat/internal/server"
	"github.com/reelchat/reelchat/internal/types"
	"github.com/teris-io/shortid"
)

type MarkReadRequest struct {
	UserId string `json:"user_id"`
}

func (s *ChatApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.log.Errorw("health check", "error", err)
		http.Error(w, "database unreachable", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *ChatApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorw("json encode", "error", err)
	}
}

// getMessages returns the full history between the caller and the user
// in the query string, oldest first.
func (s *ChatApp) getMessages(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	otherUserId := r.URL.Query().Get("user_id")
	if otherUserId == "" || otherUserId == userId {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbMessages, err := s.db.GetConversation(r.Context(), userId, otherUserId)
	if err != nil {
		s.log.Errorw("get conversation", "user", userId, "other", otherUserId, "error", err)
		errResp := NewServiceUnavailableError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages := make([]types.Message, 0, len(dbMessages))
	for _, msg := range dbMessages {
		messages = append(messages, toWireMessage(msg))
	}

	s.writeJson(w, http.StatusOK, messages)
}

func (s *ChatApp) getConversations(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	views, err := s.db.ListConversations(r.Context(), userId)
	if err != nil {
		s.log.Errorw("list conversations", "user", userId, "error", err)
		errResp := NewServiceUnavailableError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	conversations := make([]types.Conversation, 0, len(views))
	for _, view := range views {
		conversations = append(conversations, types.Conversation{
			User: types.User{
				Id:       view.User.Id,
				Username: view.User.Username,
				Name:     view.User.Name,
				Avatar:   view.User.Avatar,
			},
			LastMessage: toWireMessage(view.LastMessage),
			UnreadCount: view.UnreadCount,
		})
	}

	s.writeJson(w, http.StatusOK, conversations)
}

// markRead flips every unread message from the given user to the
// caller; repeat calls are no-ops.
func (s *ChatApp) markRead(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	updated, err := s.db.MarkConversationRead(r.Context(), req.UserId, userId)
	if err != nil {
		s.log.Errorw("mark conversation read", "user", userId, "other", req.UserId, "error", err)
		errResp := NewServiceUnavailableError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]any{"updated": updated})
}

// getUnreadCount reports how many unread messages the given user has
// sent the caller; the frontend polls it for the conversation badge.
func (s *ChatApp) getUnreadCount(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	otherUserId := r.URL.Query().Get("user_id")
	if otherUserId == "" || otherUserId == userId {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	unread, err := s.db.CountUnread(r.Context(), otherUserId, userId)
	if err != nil {
		s.log.Errorw("count unread", "user", userId, "other", otherUserId, "error", err)
		errResp := NewServiceUnavailableError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]any{"unread": unread})
}

// getEligibility reports whether the caller and the given user are
// mutual followers and therefore allowed to chat.
func (s *ChatApp) getEligibility(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	otherUserId := r.URL.Query().Get("user_id")
	if otherUserId == "" || otherUserId == userId {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.GetUserById(r.Context(), otherUserId); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			errResp := NewNotFoundError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		s.log.Errorw("lookup user", "user", otherUserId, "error", err)
		errResp := NewServiceUnavailableError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	canChat, err := s.cs.MutualFollow(r.Context(), userId, otherUserId)
	if err != nil {
		s.log.Errorw("mutual follow check", "user", userId, "other", otherUserId, "error", err)
		errResp := NewServiceUnavailableError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]any{"can_chat": canChat})
}

// serveWs upgrades the connection; identity is declared later via the
// register event, so no auth is required here.
func (s *ChatApp) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorw("error upgrading connection", "error", err)
		return
	}

	connId, err := shortid.Generate()
	if err != nil {
		s.log.Errorw("generate connection id", "error", err)
		conn.Close()
		return
	}

	client := server.NewClient(connId, conn, s.cs, s.log)
	s.cs.RegisterClient(client)
	go client.Write()
	go client.Read()
}

func toWireMessage(msg database.Message) types.Message {
	out := types.Message{
		Id:        msg.Id.Hex(),
		From:      msg.From,
		To:        msg.To,
		Content:   msg.Content,
		Read:      msg.Read,
		Timestamp: msg.CreatedAt,
	}

	if msg.Attachment != nil {
		out.Attachment = &types.Attachment{
			Kind:     msg.Attachment.Kind,
			Url:      msg.Attachment.Url,
			Filename: msg.Attachment.Filename,
		}
	}

	return out
}
