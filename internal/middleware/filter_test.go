package middleware

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/restaurant/domain"
)

func parseQuery(t *testing.T, query string) domain.Filter {
	t.Helper()
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Parse(query)
	return ParseFilters(args)
}

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  domain.Filter
	}{
		{
			name:  "single value becomes a list",
			query: "name=a",
			want:  domain.Filter{"name": []string{"a"}},
		},
		{
			name:  "comma separated values",
			query: "dish=d1,d2",
			want:  domain.Filter{"dish": []string{"d1", "d2"}},
		},
		{
			name:  "reserved keys removed",
			query: "page=2&limit=5&sort=-rating&fields=rating&currency=EUR&dish=d1",
			want:  domain.Filter{"dish": []string{"d1"}},
		},
		{
			name:  "comparison operators prefixed",
			query: "rating[gte]=4&rating[lt]=5",
			want:  domain.Filter{"rating": map[string]any{"$gte": "4", "$lt": "5"}},
		},
		{
			name:  "repeated keys collect into a list",
			query: "dish=a&dish=b",
			want:  domain.Filter{"dish": []string{"a", "b"}},
		},
		{
			name:  "repeated values are not comma split",
			query: "dish=a,b&dish=c",
			want:  domain.Filter{"dish": []string{"a,b", "c"}},
		},
		{
			name:  "explicit list suffix",
			query: "tags[]=x",
			want:  domain.Filter{"tags": []string{"x"}},
		},
		{
			name:  "nested operators renamed at any depth",
			query: "meta[score][gt]=1",
			want:  domain.Filter{"meta": map[string]any{"score": map[string]any{"$gt": "1"}}},
		},
		{
			name:  "identifiers containing operator names untouched",
			query: "greater=gt&ltd[gte]=1&price[gtx]=2",
			want: domain.Filter{
				"greater": []string{"gt"},
				"ltd":     map[string]any{"$gte": "1"},
				"price":   map[string]any{"gtx": "2"},
			},
		},
		{
			name:  "operator names as top level keys renamed",
			query: "gt=1",
			want:  domain.Filter{"$gt": []string{"1"}},
		},
		{
			name:  "every top level comparison key renamed",
			query: "gte=5&lt=3&lte=2,4&gt[gte]=1",
			want: domain.Filter{
				"$gte": []string{"5"},
				"$lt":  []string{"3"},
				"$lte": []string{"2", "4"},
				"$gt":  map[string]any{"$gte": "1"},
			},
		},
		{
			name:  "nested reserved key removed",
			query: "page[gte]=1&limit[lt]=3",
			want:  domain.Filter{},
		},
		{
			name:  "malformed bracket kept literal",
			query: "rating[gte=4",
			want:  domain.Filter{"rating[gte": []string{"4"}},
		},
		{
			name:  "empty query",
			query: "",
			want:  domain.Filter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseQuery(t, tt.query))
		})
	}
}

func TestParseFilters_ReservedKeysNeverSurvive(t *testing.T) {
	values := []string{"1", "a,b", "", "-x"}
	for key := range reservedParams {
		for _, v := range values {
			for _, form := range []string{"%s=%s", "%s[gte]=%s", "%s[]=%s"} {
				q := fmt.Sprintf(form, key, url.QueryEscape(v)) + "&keep=1"
				got := parseQuery(t, q)
				assert.NotContains(t, got, key, q)
				assert.Contains(t, got, "keep", q)
			}
		}
	}
}

func TestParseFilters_StringValuesAlwaysLists(t *testing.T) {
	for _, q := range []string{"a=1", "a=1,2,3", "a=", "a=x&b=y"} {
		for key, v := range parseQuery(t, q) {
			_, isList := v.([]string)
			assert.True(t, isList, "%s: %s", q, key)
		}
	}
}

func TestSplitKey(t *testing.T) {
	assert.Equal(t, []string{"a"}, splitKey("a"))
	assert.Equal(t, []string{"a", "b", "c"}, splitKey("a[b][c]"))
	assert.Equal(t, []string{"a", ""}, splitKey("a[]"))
	assert.Equal(t, []string{"[a]"}, splitKey("[a]"))
	assert.Equal(t, []string{"a[b]c"}, splitKey("a[b]c"))
	assert.Equal(t, []string{"a", "1", "2", "3", "4", "5", "[6]"}, splitKey("a[1][2][3][4][5][6]"))
}

func TestFilterStep(t *testing.T) {
	ctx := newRequestCtx(fasthttp.MethodGet, "/reviews?rating[gte]=3&page=2", nil)
	assert.Empty(t, Filters(ctx))

	assert.NoError(t, Filter(ctx))
	assert.Equal(t, domain.Filter{"rating": map[string]any{"$gte": "3"}}, Filters(ctx))
}
