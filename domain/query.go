package domain

// Filter is a per-request set of constraints taken from the query string.
// Values are either []string or nested map[string]any whose comparison
// keys carry a "$" prefix ($gte, $gt, $lte, $lt).
type Filter map[string]any

// Pagination bounds and orders a list query.
type Pagination struct {
	Skip  int
	Limit int
	// Sort holds field names, a leading "-" meaning descending.
	Sort []string
}

const (
	DefaultPage  = 1
	DefaultLimit = 30
)

// NewPagination converts a 1-based page and a page size into skip/limit.
func NewPagination(page, limit int) Pagination {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Pagination{Skip: (page - 1) * limit, Limit: limit}
}
