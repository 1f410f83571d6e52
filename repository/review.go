package repository

import (
	"context"

	"github.com/fastygo/restaurant/domain"
)

// ReviewQuery selects a page of reviews written by one user.
type ReviewQuery struct {
	UserID     string
	Filter     domain.Filter
	Fields     []string
	Pagination domain.Pagination
}

type ReviewRepository interface {
	ListByUser(ctx context.Context, query ReviewQuery) ([]domain.Review, error)
}
