package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/restaurant/api/transport"
	"github.com/fastygo/restaurant/domain"
)

func TestValidate_Register(t *testing.T) {
	body := []byte(`{
		"firstName": "Jan", "lastName": "Kowalski", "login": "jank",
		"email": "jan@example.com", "password": "secret123",
		"addresses": [{"country": "PL", "city": "Kraków", "street": "Rynek 1", "zipCode": "31-000"}],
		"defaultCurrency": "EUR"
	}`)
	ctx := newRequestCtx(fasthttp.MethodPost, "/register", body)

	require.NoError(t, Validate[transport.RegisterRequest]()(ctx))
	req, err := Body[transport.RegisterRequest](ctx)
	require.NoError(t, err)
	assert.Equal(t, "jank", req.Login)
	assert.Len(t, req.Addresses, 1)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed json", `{"email":`, "malformed JSON body"},
		{"empty body", ``, "email is required"},
		{"bad email", `{"email":"nope","password":"x"}`, "email must be a valid email"},
		{"short password", `{"firstName":"a","lastName":"b","login":"abc","email":"a@b.co","password":"short"}`, "password must be at least 8 characters"},
		{"bad currency", `{"firstName":"a","lastName":"b","login":"abc","email":"a@b.co","password":"long-enough","defaultCurrency":"JPY"}`, "defaultCurrency is not a supported currency"},
		{"nested address", `{"firstName":"a","lastName":"b","login":"abc","email":"a@b.co","password":"long-enough","addresses":[{"country":"PL"}]}`, "addresses[0].city is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newRequestCtx(fasthttp.MethodPost, "/", []byte(tt.body))
			var err error
			if tt.name == "bad email" || tt.name == "empty body" {
				err = Validate[transport.LoginRequest]()(ctx)
			} else {
				err = Validate[transport.RegisterRequest]()(ctx)
			}
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidate_CurrencyCaseSensitive(t *testing.T) {
	register := newRequestCtx(fasthttp.MethodPost, "/register", []byte(`{"firstName":"a","lastName":"b","login":"abc","email":"a@b.co","password":"long-enough","defaultCurrency":"eur"}`))
	err := Validate[transport.RegisterRequest]()(register)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defaultCurrency is not a supported currency")

	update := newRequestCtx(fasthttp.MethodPatch, "/", []byte(`{"defaultCurrency":"gbp"}`))
	err = Validate[transport.UpdateUserRequest]()(update)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestBody_Missing(t *testing.T) {
	ctx := newRequestCtx(fasthttp.MethodPost, "/", nil)
	_, err := Body[transport.LoginRequest](ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestUpdateStep(t *testing.T) {
	ctx := newRequestCtx(fasthttp.MethodPatch, "/", []byte(`{"firstName":"Janusz","defaultCurrency":"GBP"}`))
	require.NoError(t, Validate[transport.UpdateUserRequest]()(ctx))
	require.NoError(t, Update[transport.UpdateUserRequest]()(ctx))

	patch, err := UserPatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Janusz", *patch.FirstName)
	assert.Equal(t, domain.CurrencyGBP, *patch.DefaultCurrency)

	ctx = newRequestCtx(fasthttp.MethodPatch, "/", []byte(`{}`))
	require.NoError(t, Validate[transport.UpdateUserRequest]()(ctx))
	assert.True(t, domain.IsDomainError(Update[transport.UpdateUserRequest]()(ctx), domain.ErrCodeInvalid))

	ctx = newRequestCtx(fasthttp.MethodPatch, "/", []byte(`{"password":"x"}`))
	require.NoError(t, Validate[transport.UpdateUserRequest]()(ctx))
	assert.Error(t, Update[transport.UpdateUserRequest]()(ctx))

	_, err = UserPatch(newRequestCtx(fasthttp.MethodPatch, "/", nil))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestFieldsAndPaginate(t *testing.T) {
	ctx := newRequestCtx(fasthttp.MethodGet, "/?fields=rating,%20review&fields=dish&page=3&limit=10&sort=-rating,createdAt", nil)
	require.NoError(t, Fields(ctx))
	assert.Equal(t, []string{"rating", "review", "dish"}, SelectedFields(ctx))

	p := Paginate(ctx.QueryArgs())
	assert.Equal(t, domain.Pagination{Skip: 20, Limit: 10, Sort: []string{"-rating", "createdAt"}}, p)
}

func TestPaginate_Defaults(t *testing.T) {
	for _, q := range []string{"", "page=abc&limit=xyz", "page=0&limit=-5", "page=1.5&limit=2e3"} {
		args := fasthttp.AcquireArgs()
		args.Parse(q)
		p := Paginate(args)
		fasthttp.ReleaseArgs(args)
		assert.Equal(t, 0, p.Skip, q)
		assert.Equal(t, domain.DefaultLimit, p.Limit, q)
	}

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Parse("page=4")
	assert.Equal(t, domain.Pagination{Skip: 90, Limit: 30}, Paginate(args))
}
