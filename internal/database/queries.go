package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoChatRepository) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	msg := Message{
		From:       params.From,
		To:         params.To,
		Content:    params.Content,
		Attachment: params.Attachment,
		Read:       false,
		CreatedAt:  time.Now().UTC().Round(time.Millisecond),
	}

	res, err := r.messages.InsertOne(ctx, msg)
	if err != nil {
		return Message{}, err
	}

	msg.Id = res.InsertedID.(primitive.ObjectID)
	return msg, nil
}

// GetConversation returns every message exchanged between the two
// users, oldest first.
func (r *MongoChatRepository) GetConversation(ctx context.Context, userId, otherUserId string) ([]Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"from": userId, "to": otherUserId},
		bson.M{"from": otherUserId, "to": userId},
	}}

	cur, err := r.messages.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}

	return msgs, nil
}

// MarkConversationRead flips the read flag on every unread message from
// fromUserId to toUserId. The filter only matches read=false documents,
// so repeated calls are no-ops.
func (r *MongoChatRepository) MarkConversationRead(ctx context.Context, fromUserId, toUserId string) (int64, error) {
	res, err := r.messages.UpdateMany(ctx,
		bson.M{"from": fromUserId, "to": toUserId, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}

	return res.ModifiedCount, nil
}

func (r *MongoChatRepository) CountUnread(ctx context.Context, fromUserId, toUserId string) (int64, error) {
	return r.messages.CountDocuments(ctx,
		bson.M{"from": fromUserId, "to": toUserId, "read": false})
}

func (r *MongoChatRepository) HasAcceptedFollow(ctx context.Context, fromUserId, toUserId string) (bool, error) {
	err := r.follows.FindOne(ctx, bson.M{
		"from":   fromUserId,
		"to":     toUserId,
		"status": FollowAccepted,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *MongoChatRepository) GetUserById(ctx context.Context, userId string) (User, error) {
	var user User
	if err := r.users.FindOne(ctx, bson.M{"_id": userId}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	return user, nil
}

func (r *MongoChatRepository) getUsersByIds(ctx context.Context, userIds []string) (map[string]User, error) {
	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": userIds}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := make(map[string]User, len(userIds))
	for cur.Next(ctx) {
		var user User
		if err := cur.Decode(&user); err != nil {
			return nil, err
		}
		users[user.Id] = user
	}

	return users, cur.Err()
}
