package review

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("review_reports")

	// Create indexes
	collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "contentId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "decision", Value: 1}},
		},
	})

	return &Repository{collection: collection}
}

// CreateReport persists one report. The store is append-only: there is
// deliberately no update method on this repository.
func (r *Repository) CreateReport(ctx context.Context, report *Report) error {
	report.ID = primitive.NewObjectID()
	report.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, report)
	return err
}

// GetByID returns one report, or nil when it does not exist
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Report, error) {
	var report Report
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// GetLatestByContent returns the most recent report for a content item
func (r *Repository) GetLatestByContent(ctx context.Context, contentID primitive.ObjectID) (*Report, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var report Report
	err := r.collection.FindOne(ctx, bson.M{"contentId": contentID}, opts).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}
