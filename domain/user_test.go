package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrency_Valid(t *testing.T) {
	for _, c := range Currencies {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Currency("pln").Valid())
	assert.False(t, Currency("BTC").Valid())
	assert.False(t, Currency("").Valid())
}

func TestUser_HasAnyRole(t *testing.T) {
	u := &User{Roles: []Role{RoleUser}}

	assert.True(t, u.HasAnyRole(RoleAdmin, RoleUser))
	assert.False(t, u.HasAnyRole(RoleAdmin))
	assert.False(t, u.HasAnyRole())

	var nobody *User
	assert.False(t, nobody.HasAnyRole(RoleUser))
	assert.False(t, nobody.IsActive())
}

func TestUser_ChangedPasswordAfter(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, (&User{}).ChangedPasswordAfter(issued))

	before := issued.Add(-time.Second)
	assert.False(t, (&User{PasswordChangedAt: &before}).ChangedPasswordAfter(issued))

	sameSecond := issued.Add(400 * time.Millisecond)
	assert.False(t, (&User{PasswordChangedAt: &sameSecond}).ChangedPasswordAfter(issued))

	after := issued.Add(2 * time.Second)
	assert.True(t, (&User{PasswordChangedAt: &after}).ChangedPasswordAfter(issued))
}

func TestUserPatch_Apply(t *testing.T) {
	name := "Grace"
	currency := CurrencyUSD
	addrs := []Address{{Country: "PL", City: "Kraków", Street: "Floriańska 1", ZipCode: "31-019"}}
	u := &User{FirstName: "Ada", LastName: "Lovelace", DefaultCurrency: CurrencyPLN}

	assert.True(t, UserPatch{}.Empty())
	patch := UserPatch{FirstName: &name, DefaultCurrency: &currency, Addresses: &addrs}
	assert.False(t, patch.Empty())

	patch.Apply(u)
	assert.Equal(t, "Grace", u.FirstName)
	assert.Equal(t, "Lovelace", u.LastName)
	assert.Equal(t, CurrencyUSD, u.DefaultCurrency)
	assert.Equal(t, addrs, u.Addresses)

	assert.NotPanics(t, func() { patch.Apply(nil) })
}

func TestErrorClassification(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := fmt.Errorf("load user: %w", WrapError(ErrCodeInternal, "query failed", cause))

	assert.Equal(t, ErrCodeInternal, Code(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, ErrCodeNotFound, Code(fmt.Errorf("lookup: %w", ErrUserNotFound)))
	assert.Equal(t, ErrCodeInternal, Code(errors.New("plain")))
	assert.True(t, IsDomainError(ErrTooManyRequests, ErrCodeRateLimited))
	assert.False(t, IsDomainError(ErrForbidden, ErrCodeUnauthorized))
}
