package database

import "context"

type ChatRepository interface {
	Ping(ctx context.Context) error
	CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error)
	GetConversation(ctx context.Context, userId, otherUserId string) ([]Message, error)
	MarkConversationRead(ctx context.Context, fromUserId, toUserId string) (int64, error)
	CountUnread(ctx context.Context, fromUserId, toUserId string) (int64, error)
	ListConversations(ctx context.Context, userId string) ([]ConversationView, error)
	HasAcceptedFollow(ctx context.Context, fromUserId, toUserId string) (bool, error)
	GetUserById(ctx context.Context, userId string) (User, error)
}
