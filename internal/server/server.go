package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/reelchat/reelchat/internal/database"
	"github.com/reelchat/reelchat/internal/events"
	"github.com/reelchat/reelchat/internal/stats"
	"github.com/reelchat/reelchat/internal/types"
	"go.uber.org/zap"
)

const (
	StatActiveConnections = "ActiveConnections"
	StatOnlineUsers       = "OnlineUsers"
	StatMessagesPersisted = "MessagesPersisted"
	StatAuthDenials       = "AuthDenials"
	StatBroadcastsDropped = "BroadcastsDropped"
)

const DefaultOpTimeout = 5 * time.Second

// ChatServer orchestrates the live messaging core: it owns the
// presence registry and the room table, gates every join and send on
// the mutual-follow check, writes through to the message store and
// fans events out to subscribed connections.
type ChatServer struct {
	log         *zap.SugaredLogger
	db          database.ChatRepository
	events      events.Publisher
	stats       stats.StatsProvider
	presence    *presenceRegistry
	rooms       *roomTable
	clients     map[*Client]struct{}
	clientsLock sync.Mutex
	opTimeout   time.Duration
}

func NewChatServer(logger *zap.SugaredLogger, db database.ChatRepository, pub events.Publisher,
	statsProvider stats.StatsProvider, opTimeout time.Duration) (*ChatServer, error) {
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}

	cs := &ChatServer{
		log:       logger,
		db:        db,
		events:    pub,
		stats:     statsProvider,
		presence:  newPresenceRegistry(),
		rooms:     newRoomTable(),
		clients:   make(map[*Client]struct{}),
		opTimeout: opTimeout,
	}

	for _, name := range []string{StatActiveConnections, StatOnlineUsers} {
		cs.stats.RegisterGauge(name)
	}
	for _, name := range []string{StatMessagesPersisted, StatAuthDenials, StatBroadcastsDropped} {
		cs.stats.RegisterCounter(name)
	}

	return cs, nil
}

// MutualFollow is the authorization oracle: true only if both
// directions of the follow relationship are accepted. Store failure is
// returned as an error so callers can distinguish "not authorized"
// from "could not determine". Results are never cached; an unfollow
// must block the very next send.
func (cs *ChatServer) MutualFollow(ctx context.Context, userId, otherUserId string) (bool, error) {
	ok, err := cs.db.HasAcceptedFollow(ctx, userId, otherUserId)
	if err != nil {
		return false, fmt.Errorf("follow lookup: %w", err)
	}
	if !ok {
		return false, nil
	}

	ok, err = cs.db.HasAcceptedFollow(ctx, otherUserId, userId)
	if err != nil {
		return false, fmt.Errorf("follow lookup: %w", err)
	}

	return ok, nil
}

func (cs *ChatServer) IsOnline(userId string) bool {
	return cs.presence.isOnline(userId)
}

func (cs *ChatServer) RegisterClient(c *Client) {
	cs.clientsLock.Lock()
	cs.clients[c] = struct{}{}
	cs.clientsLock.Unlock()

	cs.stats.Incr(StatActiveConnections)
	cs.log.Infow("connection established", "conn", c.id)
}

func (cs *ChatServer) handleRegister(msg *ClientMessage) {
	c := msg.client
	userId := msg.Register.UserId
	if userId == "" {
		c.queueMessage(ErrInvalidMessage(msg.Id, "user_id is required"))
		return
	}

	replaced, released, wasOnline := cs.presence.register(userId, c)
	c.setUserId(userId)

	if released != "" {
		// the connection switched identity; its old user goes offline
		cs.stats.Decr(StatOnlineUsers)
		cs.log.Infow("user offline", "user", released, "conn", c.id)
		cs.broadcastAll(&ServerMessage{
			BaseMessage: BaseMessage{Timestamp: Now()},
			Notification: &Notification{
				Presence: &PresenceEvent{UserId: released, Online: false},
			},
		})
	}

	if replaced != nil {
		cs.log.Infow("presence superseded", "user", userId, "old_conn", replaced.id, "new_conn", c.id)
	}
	if !wasOnline {
		cs.stats.Incr(StatOnlineUsers)
	}

	cs.log.Infow("user online", "user", userId, "conn", c.id)
	cs.broadcastAll(&ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Notification: &Notification{
			Presence: &PresenceEvent{UserId: userId, Online: true},
		},
	})
}

func (cs *ChatServer) handleJoin(msg *ClientMessage) {
	c := msg.client
	join := msg.Join
	if join.UserId == "" || join.OtherUserId == "" {
		c.queueMessage(ErrInvalidMessage(msg.Id, "user_id and other_user_id are required"))
		return
	}
	if join.UserId == join.OtherUserId {
		c.queueMessage(ErrInvalidMessage(msg.Id, "cannot chat with yourself"))
		return
	}

	ctx, cancel := cs.opCtx()
	defer cancel()

	ok, err := cs.MutualFollow(ctx, join.UserId, join.OtherUserId)
	if err != nil {
		cs.log.Errorw("mutual follow check", "user", join.UserId, "other", join.OtherUserId, "error", err)
		c.queueMessage(ErrTransient(msg.Id))
		return
	}
	if !ok {
		cs.stats.Incr(StatAuthDenials)
		c.queueMessage(ErrNotAuthorized(msg.Id))
		return
	}

	roomId := RoomID(join.UserId, join.OtherUserId)
	cs.rooms.getOrCreate(roomId).addClient(c)
	cs.log.Infow("joined room", "user", join.UserId, "room", roomId, "conn", c.id)

	c.queueMessage(NoErrOK(msg.Id, map[string]any{
		"room_id":           roomId,
		"other_user_online": cs.presence.isOnline(join.OtherUserId),
	}))
}

func (cs *ChatServer) handleSend(msg *ClientMessage) {
	c := msg.client
	pub := msg.Publish
	if pub.From == "" || pub.To == "" {
		c.queueMessage(ErrInvalidMessage(msg.Id, "from and to are required"))
		return
	}
	if pub.From == pub.To {
		c.queueMessage(ErrInvalidMessage(msg.Id, "cannot chat with yourself"))
		return
	}
	if pub.Content == "" && pub.Attachment == nil {
		c.queueMessage(ErrInvalidMessage(msg.Id, "message requires content or an attachment"))
		return
	}
	if pub.Attachment != nil &&
		pub.Attachment.Kind != types.AttachmentImage && pub.Attachment.Kind != types.AttachmentVideo {
		c.queueMessage(ErrInvalidMessage(msg.Id, "unsupported attachment kind"))
		return
	}

	ctx, cancel := cs.opCtx()
	defer cancel()

	// authorization is re-checked on every send; a join grants nothing
	ok, err := cs.MutualFollow(ctx, pub.From, pub.To)
	if err != nil {
		cs.log.Errorw("mutual follow check", "user", pub.From, "other", pub.To, "error", err)
		c.queueMessage(ErrTransient(msg.Id))
		return
	}
	if !ok {
		cs.stats.Incr(StatAuthDenials)
		c.queueMessage(ErrNotAuthorized(msg.Id))
		return
	}

	sender := cs.lookupSender(ctx, pub.From)

	roomId := RoomID(pub.From, pub.To)
	rm := cs.rooms.getOrCreate(roomId)

	// the send mutex spans commit and fanout so subscribers observe
	// messages in store-commit order
	rm.sendMu.Lock()
	stored, err := cs.db.CreateMessage(ctx, database.CreateMessageParams{
		From:       pub.From,
		To:         pub.To,
		Content:    pub.Content,
		Attachment: toStoreAttachment(pub.Attachment),
	})
	if err != nil {
		rm.sendMu.Unlock()
		cs.log.Errorw("save message", "room", roomId, "error", err)
		c.queueMessage(ErrTransient(msg.Id))
		return
	}

	cs.stats.Incr(StatMessagesPersisted)
	rm.broadcast(&ServerMessage{
		BaseMessage: BaseMessage{Id: msg.Id, Timestamp: stored.CreatedAt},
		Message:     toWireMessage(stored, sender),
	})
	rm.sendMu.Unlock()

	cs.log.Infow("message sent", "room", roomId, "message", stored.Id.Hex())

	if !rm.hasUser(pub.To) {
		// recipient has no live subscription; the store already has
		// the message, this only nudges the notification service
		ev := events.MessageStored{
			MessageId: stored.Id.Hex(),
			From:      stored.From,
			To:        stored.To,
			RoomId:    roomId,
			CreatedAt: stored.CreatedAt,
		}
		if err := cs.events.PublishMessageStored(ctx, ev); err != nil {
			cs.log.Warnw("publish message stored event", "message", ev.MessageId, "error", err)
		}
	}
}

func (cs *ChatServer) handleTyping(msg *ClientMessage) {
	typing := msg.Typing
	if typing.From == "" || typing.To == "" || typing.From == typing.To {
		return
	}

	roomId := RoomID(typing.From, typing.To)
	rm := cs.rooms.get(roomId)
	if rm == nil {
		return
	}

	rm.broadcast(&ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Notification: &Notification{
			Typing: &TypingEvent{UserId: typing.From, RoomId: roomId, Active: typing.Active},
		},
		SkipClient: msg.client,
	})
}

func (cs *ChatServer) handleDisconnect(c *Client) {
	cs.rooms.leaveAll(c)

	cs.clientsLock.Lock()
	delete(cs.clients, c)
	cs.clientsLock.Unlock()
	cs.stats.Decr(StatActiveConnections)

	userId, ok := cs.presence.unregister(c)
	if !ok {
		// never registered, or already superseded by a newer connection
		return
	}

	cs.stats.Decr(StatOnlineUsers)
	cs.log.Infow("user offline", "user", userId, "conn", c.id)
	cs.broadcastAll(&ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Notification: &Notification{
			Presence: &PresenceEvent{UserId: userId, Online: false},
		},
	})
}

func (cs *ChatServer) broadcastAll(msg *ServerMessage) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()

	for c := range cs.clients {
		if c == msg.SkipClient {
			continue
		}

		c.queueMessage(msg)
	}
}

// lookupSender fetches the sender's profile for message enrichment.
// The profile store is a collaborator; failure degrades to an
// unenriched message rather than blocking the send.
func (cs *ChatServer) lookupSender(ctx context.Context, userId string) *types.User {
	user, err := cs.db.GetUserById(ctx, userId)
	if err != nil {
		if err != database.ErrNotFound {
			cs.log.Warnw("lookup sender", "user", userId, "error", err)
		}
		return nil
	}

	return &types.User{
		Id:       user.Id,
		Username: user.Username,
		Name:     user.Name,
		Avatar:   user.Avatar,
	}
}

func (cs *ChatServer) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cs.opTimeout)
}

func (cs *ChatServer) Shutdown() {
	cs.log.Info("shutting down chat server")

	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()
	for c := range cs.clients {
		c.stopClient()
	}
}

func toStoreAttachment(att *types.Attachment) *database.Attachment {
	if att == nil {
		return nil
	}

	return &database.Attachment{
		Kind:     att.Kind,
		Url:      att.Url,
		Filename: att.Filename,
	}
}

func toWireMessage(msg database.Message, sender *types.User) *types.Message {
	out := &types.Message{
		Id:        msg.Id.Hex(),
		From:      msg.From,
		To:        msg.To,
		Sender:    sender,
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
