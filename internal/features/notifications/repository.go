package notifications

import (
	"context"
	"time"

	apperrors "github.com/openlore/lorebase/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository struct {
	collection *mongo.Collection
	devices    *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("notifications")

	// Create indexes
	collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "recipientId", Value: 1},
				{Key: "isRead", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: 1}},
		},
	})

	return &Repository{
		collection: collection,
		devices:    db.Collection("device_tokens"),
	}
}

// CreateNotification creates a single notification
func (r *Repository) CreateNotification(ctx context.Context, notification *Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	notification.IsRead = false

	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// ListByRecipient returns one page of a user's notifications, newest first
func (r *Repository) ListByRecipient(ctx context.Context, recipientID primitive.ObjectID, unreadOnly bool, page, limit int) ([]Notification, int64, error) {
	filter := bson.M{"recipientId": recipientID}
	if unreadOnly {
		filter["isRead"] = false
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var items []Notification
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UnreadCount counts unread notifications for a user
func (r *Repository) UnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipientId": recipientID, "isRead": false})
}

// MarkRead marks one notification read; only the recipient can do it
func (r *Repository) MarkRead(ctx context.Context, notificationID, recipientID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": notificationID, "recipientId": recipientID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification for a user
func (r *Repository) MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"recipientId": recipientID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// RegisterDevice stores an FCM device token for push delivery
func (r *Repository) RegisterDevice(ctx context.Context, userID primitive.ObjectID, token string) error {
	_, err := r.devices.UpdateOne(ctx,
		bson.M{"userId": userID, "token": token},
		bson.M{"$set": bson.M{"userId": userID, "token": token, "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}

// DeviceTokens returns every registered push token for a user
func (r *Repository) DeviceTokens(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	cursor, err := r.devices.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Token string `bson:"token"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(docs))
	for _, d := range docs {
		tokens = append(tokens, d.Token)
	}
	return tokens, nil
}
