package mongo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fastygo/restaurant/domain"
	"github.com/fastygo/restaurant/repository"
)

const CollectionReviews = "reviews"

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindTime
)

// reviewFields maps API field names to document keys and value kinds.
var reviewFields = map[string]struct {
	key  string
	kind fieldKind
}{
	"id":        {"_id", kindString},
	"user":      {"user", kindString},
	"dish":      {"dish", kindString},
	"rating":    {"rating", kindNumber},
	"review":    {"review", kindString},
	"createdAt": {"createdAt", kindTime},
}

var comparisonOperators = map[string]bool{"$gte": true, "$gt": true, "$lte": true, "$lt": true}

type reviewDocument struct {
	ID        any       `bson:"_id"`
	User      any       `bson:"user"`
	Dish      any       `bson:"dish"`
	Rating    float64   `bson:"rating"`
	Review    string    `bson:"review"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d reviewDocument) toDomain() domain.Review {
	return domain.Review{
		ID:        idString(d.ID),
		User:      idString(d.User),
		Dish:      idString(d.Dish),
		Rating:    d.Rating,
		Review:    d.Review,
		CreatedAt: d.CreatedAt,
	}
}

type reviewRepository struct {
	col *mongodrv.Collection
}

// NewReviewRepository returns a MongoDB-backed review repository.
func NewReviewRepository(db *mongodrv.Database) repository.ReviewRepository {
	return &reviewRepository{col: db.Collection(CollectionReviews)}
}

func (r *reviewRepository) ListByUser(ctx context.Context, query repository.ReviewQuery) ([]domain.Review, error) {
	filter, err := buildReviewFilter(query.UserID, query.Filter)
	if err != nil {
		return nil, err
	}
	projection, err := buildProjection(query.Fields)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(buildSort(query.Pagination.Sort)).
		SetSkip(int64(query.Pagination.Skip)).
		SetLimit(int64(query.Pagination.Limit))
	if len(projection) > 0 {
		opts.SetProjection(projection)
	}

	docs, err := findMany[reviewDocument](ctx, r.col, filter, opts)
	if err != nil {
		return nil, err
	}
	reviews := make([]domain.Review, 0, len(docs))
	for _, d := range docs {
		reviews = append(reviews, d.toDomain())
	}
	return reviews, nil
}

// buildReviewFilter turns a request filter into a Mongo query scoped to userID.
// Single-element lists match by equality, longer lists use $in, and operator
// maps keep their comparison operators.
func buildReviewFilter(userID string, filter domain.Filter) (bson.M, error) {
	query := bson.M{}
	for name, raw := range filter {
		field, ok := reviewFields[name]
		if !ok {
			return nil, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("cannot filter by %q", name))
		}
		cond, err := buildCondition(name, field.kind, raw)
		if err != nil {
			return nil, err
		}
		query[field.key] = cond
	}
	query["user"] = userID
	return query, nil
}

func buildCondition(name string, kind fieldKind, raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return convertValue(name, kind, v)
	case []string:
		values := make([]any, 0, len(v))
		for _, s := range v {
			converted, err := convertValue(name, kind, s)
			if err != nil {
				return nil, err
			}
			values = append(values, converted)
		}
		if len(values) == 1 {
			return values[0], nil
		}
		return bson.M{"$in": values}, nil
	case map[string]any:
		cond := bson.M{}
		for op, operand := range v {
			if !comparisonOperators[op] {
				return nil, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unsupported operator %q on %q", op, name))
			}
			s, ok := operand.(string)
			if !ok {
				return nil, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("operator %s on %q expects a single value", op, name))
			}
			converted, err := convertValue(name, kind, s)
			if err != nil {
				return nil, err
			}
			cond[op] = converted
		}
		return cond, nil
	default:
		return nil, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("invalid value for %q", name))
	}
}

func convertValue(name string, kind fieldKind, value string) (any, error) {
	switch kind {
	case kindNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInvalid, fmt.Sprintf("%q expects a number", name), err)
		}
		return n, nil
	case kindTime:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}
		}
		return nil, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("%q expects a date", name))
	default:
		return value, nil
	}
}

// buildProjection accepts either inclusions ("rating") or exclusions ("-review"), not both.
func buildProjection(fields []string) (bson.D, error) {
	var (
		projection bson.D
		include    *bool
	)
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		value := 1
		if name, ok := strings.CutPrefix(f, "-"); ok {
			f, value = name, 0
		}
		field, ok := reviewFields[f]
		if !ok {
			return nil, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unknown field %q", f))
		}
		isInclude := value == 1
		if field.key == "_id" {
			projection = append(projection, bson.E{Key: field.key, Value: value})
			continue
		}
		if include != nil && *include != isInclude {
			return nil, domain.NewError(domain.ErrCodeInvalid, "cannot mix included and excluded fields")
		}
		include = &isInclude
		projection = append(projection, bson.E{Key: field.key, Value: value})
	}
	return projection, nil
}

func buildSort(sort []string) bson.D {
	var doc bson.D
	for _, s := range sort {
		direction := 1
		if name, ok := strings.CutPrefix(s, "-"); ok {
			s, direction = name, -1
		}
		field, ok := reviewFields[s]
		if !ok {
			continue
		}
		doc = append(doc, bson.E{Key: field.key, Value: direction})
	}
	if len(doc) == 0 {
		doc = bson.D{{Key: "createdAt", Value: -1}}
	}
	return doc
}
