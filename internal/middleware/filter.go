package middleware

import (
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/restaurant/domain"
)

const (
	filterValueKey = "filters"

	maxKeyDepth = 5
)

// reservedParams drive pagination and formatting and never reach the filter.
var reservedParams = map[string]struct{}{
	"page":     {},
	"sort":     {},
	"limit":    {},
	"fields":   {},
	"currency": {},
}

var comparisonKeys = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

// Filter parses the query string into a domain.Filter for the handler.
func Filter(ctx *fasthttp.RequestCtx) error {
	ctx.SetUserValue(filterValueKey, ParseFilters(ctx.QueryArgs()))
	return nil
}

// Filters returns the filter stored by the Filter step, or an empty one.
func Filters(ctx *fasthttp.RequestCtx) domain.Filter {
	if f, ok := ctx.UserValue(filterValueKey).(domain.Filter); ok {
		return f
	}
	return domain.Filter{}
}

// ParseFilters builds a filter from query args. Bracketed keys nest
// (rating[gte]=4), repeated keys collect into lists, top-level strings are
// split on commas and comparison keys gain a "$" prefix at any depth.
func ParseFilters(args *fasthttp.Args) domain.Filter {
	parsed := map[string]any{}
	if args != nil {
		args.VisitAll(func(k, v []byte) {
			path := splitKey(string(k))
			if _, reserved := reservedParams[path[0]]; reserved {
				return
			}
			insert(parsed, path, string(v))
		})
	}

	filter := make(domain.Filter, len(parsed))
	for key, value := range parsed {
		if op, ok := comparisonKeys[key]; ok {
			key = op
		}
		if s, ok := value.(string); ok {
			filter[key] = strings.Split(s, ",")
			continue
		}
		filter[key] = renameOperators(value)
	}
	return filter
}

// splitKey turns "a[b][c]" into [a b c]. Malformed brackets keep the key literal.
func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return []string{key}
	}
	path := []string{key[:open]}
	rest := key[open:]
	for rest != "" {
		if len(path) > maxKeyDepth {
			path = append(path, rest)
			break
		}
		if rest[0] != '[' {
			return []string{key}
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return []string{key}
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return path
}

func insert(node map[string]any, path []string, value string) {
	key := path[0]
	leaf := len(path) == 1
	appendLeaf := len(path) == 2 && path[1] == ""

	if leaf || appendLeaf {
		switch cur := node[key].(type) {
		case nil:
			if appendLeaf {
				node[key] = []string{value}
			} else {
				node[key] = value
			}
		case string:
			node[key] = []string{cur, value}
		case []string:
			node[key] = append(cur, value)
		}
		return
	}

	child, ok := node[key].(map[string]any)
	if !ok {
		if node[key] != nil {
			return
		}
		child = map[string]any{}
		node[key] = child
	}
	insert(child, path[1:], value)
}

func renameOperators(value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if op, isOp := comparisonKeys[k]; isOp {
			k = op
		}
		out[k] = renameOperators(v)
	}
	return out
}
