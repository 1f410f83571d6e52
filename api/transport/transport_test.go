package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/restaurant/domain"
)

func TestSelectFields(t *testing.T) {
	user := domain.User{ID: "u1", FirstName: "Jan", LastName: "Kowalski", Email: "jan@example.com", PasswordHash: "secret"}

	got, err := SelectFields(user, []string{"firstName", "email", "unknown"})
	require.NoError(t, err)
	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1","firstName":"Jan","email":"jan@example.com"}`, string(out))

	got, err = SelectFields(user, []string{"-addresses", "-roles", "-id"})
	require.NoError(t, err)
	m := got.(map[string]json.RawMessage)
	assert.NotContains(t, m, "addresses")
	assert.NotContains(t, m, "id")
	assert.Contains(t, m, "lastName")
	assert.NotContains(t, m, "password")

	_, err = SelectFields(user, []string{"firstName", "-email"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	got, err = SelectFields(user, []string{"firstName", "-id"})
	require.NoError(t, err)
	out, err = json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"firstName":"Jan"}`, string(out))

	got, err = SelectFields(user, []string{"id"})
	require.NoError(t, err)
	out, err = json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1"}`, string(out))

	same, err := SelectFields(user, nil)
	require.NoError(t, err)
	assert.Equal(t, user, same)
}

func TestUpdateUserRequest_Patch(t *testing.T) {
	name := "Jan"
	currency := "EUR"
	patch, err := UpdateUserRequest{
		FirstName:       &name,
		DefaultCurrency: &currency,
		Addresses:       []AddressRequest{{Country: "PL", City: "Kraków", Street: "Rynek 1", ZipCode: "31-000"}},
	}.Patch()
	require.NoError(t, err)
	assert.Equal(t, "Jan", *patch.FirstName)
	assert.Equal(t, domain.CurrencyEUR, *patch.DefaultCurrency)
	require.NotNil(t, patch.Addresses)
	assert.Equal(t, "Kraków", (*patch.Addresses)[0].City)
	assert.Nil(t, patch.Email)

	empty, err := UpdateUserRequest{}.Patch()
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	pw := "new-password"
	_, err = UpdateUserRequest{Password: &pw}.Patch()
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = UpdateUserRequest{Roles: []string{"admin"}}.Patch()
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEnvelope_String(t *testing.T) {
	assert.JSONEq(t, `{"status":"success","data":{"token":"t"}}`, NewSuccess(TokenResponse{Token: "t"}, nil).String())
	assert.JSONEq(t, `{"status":"error","code":"INVALID","error":"bad"}`, NewError("INVALID", "bad", nil).String())
}
