package domain

import (
	"slices"
	"time"
)

// Role is one of the fixed access roles a user can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Currency is a supported display/settlement currency.
type Currency string

const (
	CurrencyPLN Currency = "PLN"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
)

// Currencies lists every accepted currency code.
var Currencies = []Currency{CurrencyPLN, CurrencyEUR, CurrencyUSD, CurrencyGBP}

func (c Currency) Valid() bool {
	return slices.Contains(Currencies, c)
}

// Address is a delivery address attached to a user.
type Address struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Street  string `json:"street"`
	ZipCode string `json:"zipCode"`
	Phone   string `json:"phone,omitempty"`
}

// User represents a registered customer or administrator.
type User struct {
	ID                string     `json:"id"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	Login             string     `json:"login"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Roles             []Role     `json:"roles"`
	Addresses         []Address  `json:"addresses"`
	DefaultCurrency   Currency   `json:"defaultCurrency"`
	Active            bool       `json:"active"`
	PasswordChangedAt *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Active
}

// HasAnyRole reports whether the user holds at least one of roles.
func (u *User) HasAnyRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if slices.Contains(u.Roles, r) {
			return true
		}
	}
	return false
}

// ChangedPasswordAfter reports whether the password was changed after a token issued at issuedAt.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u == nil || u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Truncate(time.Second).After(issuedAt)
}

// UserPatch carries the profile fields a user may change about themselves.
// Nil fields are left untouched.
type UserPatch struct {
	FirstName       *string
	LastName        *string
	Login           *string
	Email           *string
	Addresses       *[]Address
	DefaultCurrency *Currency
}

func (p UserPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Login == nil &&
		p.Email == nil && p.Addresses == nil && p.DefaultCurrency == nil
}

// Apply copies the set fields of p onto u.
func (p UserPatch) Apply(u *User) {
	if u == nil {
		return
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Login != nil {
		u.Login = *p.Login
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Addresses != nil {
		u.Addresses = *p.Addresses
	}
	if p.DefaultCurrency != nil {
		u.DefaultCurrency = *p.DefaultCurrency
	}
}
