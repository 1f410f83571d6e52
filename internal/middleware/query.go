package middleware

import (
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/restaurant/domain"
)

const fieldsValueKey = "fields"

// Fields reads the comma separated "fields" parameter into a projection list.
func Fields(ctx *fasthttp.RequestCtx) error {
	ctx.SetUserValue(fieldsValueKey, splitList(ctx.QueryArgs().PeekMulti("fields")))
	return nil
}

// SelectedFields returns the projection stored by the Fields step.
func SelectedFields(ctx *fasthttp.RequestCtx) []string {
	fields, _ := ctx.UserValue(fieldsValueKey).([]string)
	return fields
}

// Paginate converts page, limit and sort parameters. Missing, non-numeric or
// non-positive page and limit fall back to the defaults.
func Paginate(args *fasthttp.Args) domain.Pagination {
	p := domain.NewPagination(positiveInt(args.Peek("page")), positiveInt(args.Peek("limit")))
	p.Sort = splitList(args.PeekMulti("sort"))
	return p
}

func positiveInt(raw []byte) int {
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func splitList(values [][]byte) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(string(v), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
