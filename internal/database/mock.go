package database

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockChatRepository) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) GetConversation(ctx context.Context, userId, otherUserId string) ([]Message, error) {
	args := m.Called(ctx, userId, otherUserId)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockChatRepository) MarkConversationRead(ctx context.Context, fromUserId, toUserId string) (int64, error) {
	args := m.Called(ctx, fromUserId, toUserId)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockChatRepository) CountUnread(ctx context.Context, fromUserId, toUserId string) (int64, error) {
	args := m.Called(ctx, fromUserId, toUserId)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockChatRepository) ListConversations(ctx context.Context, userId string) ([]ConversationView, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]ConversationView), args.Error(1)
}
func (m *MockChatRepository) HasAcceptedFollow(ctx context.Context, fromUserId, toUserId string) (bool, error) {
	args := m.Called(ctx, fromUserId, toUserId)
	return args.Bool(0), args.Error(1)
}
func (m *MockChatRepository) GetUserById(ctx context.Context, userId string) (User, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).(User), args.Error(1)
}
