package contents

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
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("contents")

	// Create indexes
	collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "ownerId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	})

	return &Repository{collection: collection}
}

// Create inserts a new submission in pending state
func (r *Repository) Create(ctx context.Context, content *Content) error {
	content.ID = primitive.NewObjectID()
	content.Status = StatusPending
	content.CreatedAt = time.Now()
	content.UpdatedAt = content.CreatedAt

	_, err := r.collection.InsertOne(ctx, content)
	return err
}

// GetByID returns the content item, or nil when it does not exist
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Content, error) {
	var content Content
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&content)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &content, nil
}

// ListByOwner returns one page of the owner's submissions, newest first
func (r *Repository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, status string, page, limit int) ([]Content, int64, error) {
	filter := bson.M{"ownerId": ownerID}
	if status != "" {
		filter["status"] = status
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

	var items []Content
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// AddFile appends an attachment to a pending submission. Returns
// ErrNotPending when the item has already been decided.
func (r *Repository) AddFile(ctx context.Context, id primitive.ObjectID, file File) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusPending},
		bson.M{
			"$push": bson.M{"files": file},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return apperrors.ErrNotPending
	}
	return nil
}

// SetApproved publishes the item. The filter insists the item is still
// pending, so two concurrent review attempts cannot both succeed: the
// loser sees ModifiedCount == 0 and treats the run as a no-op.
func (r *Repository) SetApproved(ctx context.Context, id primitive.ObjectID) (bool, error) {
	now := time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusPending},
		bson.M{
			"$set":   bson.M{"status": StatusPublic, "updatedAt": now, "reviewedAt": now},
			"$unset": bson.M{"rejectionReason": ""},
		},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// SetRejected hides the item and records why. Same pending-only guard as
// SetApproved.
func (r *Repository) SetRejected(ctx context.Context, id primitive.ObjectID, reason string) (bool, error) {
	now := time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusPending},
		bson.M{
			"$set": bson.M{
				"status":          StatusRejected,
				"rejectionReason": reason,
				"updatedAt":       now,
				"reviewedAt":      now,
			},
		},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}
