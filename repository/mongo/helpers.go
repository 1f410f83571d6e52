package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fastygo/restaurant/domain"
)

// wrapError converts driver errors to domain errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongodrv.ErrNoDocuments) {
		return domain.NewError(domain.ErrCodeNotFound, "document not found")
	}
	if mongodrv.IsDuplicateKeyError(err) {
		return domain.WrapError(domain.ErrCodeConflict, "duplicate document", err)
	}
	var cmdErr mongodrv.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 2 { // BadValue
		return domain.WrapError(domain.ErrCodeInvalid, "invalid query", err)
	}
	return err
}

// findMany decodes every document matched by filter.
func findMany[T any](ctx context.Context, col *mongodrv.Collection, filter any, opts ...options.Lister[options.FindOptions]) ([]T, error) {
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	results := []T{}
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapError(err)
	}
	return results, nil
}

// idString renders an _id or reference as a string whether stored as ObjectID or text.
func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case bson.ObjectID:
		return id.Hex()
	default:
		return fmt.Sprint(id)
	}
}
