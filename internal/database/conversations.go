package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListConversations derives the user's conversation list: one entry per
// counterpart holding the newest message between the pair and the
// number of unread messages sent by the counterpart.
func (r *MongoChatRepository) ListConversations(ctx context.Context, userId string) ([]ConversationView, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"from": userId},
		bson.M{"to": userId},
	}}

	cur, err := r.messages.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}

	views := reduceConversations(msgs, userId)
	if len(views) == 0 {
		return views, nil
	}

	ids := make([]string, len(views))
	for i, view := range views {
		ids[i] = view.User.Id
	}

	users, err := r.getUsersByIds(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range views {
		if user, ok := users[views[i].User.Id]; ok {
			views[i].User = user
		}
	}

	return views, nil
}

// reduceConversations folds a newest-first message list into one view
// per counterpart. The first message seen for a counterpart is its
// latest, which also keeps the result ordered most-recently-active
// first. Unread counts only consider counterpart-to-user messages.
func reduceConversations(msgs []Message, userId string) []ConversationView {
	var views []ConversationView
	index := make(map[string]int)

	for _, msg := range msgs {
		counterpart := msg.From
		if msg.From == userId {
			counterpart = msg.To
		}

		i, ok := index[counterpart]
		if !ok {
			index[counterpart] = len(views)
			views = append(views, ConversationView{
				User:        User{Id: counterpart},
				LastMessage: msg,
			})
			i = index[counterpart]
		}

		if msg.From == counterpart && !msg.Read {
			views[i].UnreadCount++
		}
	}

	return views
}
