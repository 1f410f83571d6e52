package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EnsureIndexes creates the indexes review listing relies on.
func EnsureIndexes(ctx context.Context, db *mongodrv.Database) error {
	_, err := db.Collection(CollectionReviews).Indexes().CreateMany(ctx, []mongodrv.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_created_at"),
		},
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "dish", Value: 1}},
			Options: options.Index().SetName("user_dish").SetUnique(true),
		},
	})
	return wrapError(err)
}
