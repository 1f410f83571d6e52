package transport

import (
	"github.com/fastygo/restaurant/domain"
)

type AddressRequest struct {
	Country string `json:"country" validate:"required,max=64"`
	City    string `json:"city" validate:"required,max=64"`
	Street  string `json:"street" validate:"required,max=128"`
	ZipCode string `json:"zipCode" validate:"required,max=16"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
}

type RegisterRequest struct {
	FirstName       string           `json:"firstName" validate:"required,max=64"`
	LastName        string           `json:"lastName" validate:"required,max=64"`
	Login           string           `json:"login" validate:"required,min=3,max=32,alphanum"`
	Email           string           `json:"email" validate:"required,email"`
	Password        string           `json:"password" validate:"required,min=8,max=72"`
	Addresses       []AddressRequest `json:"addresses" validate:"omitempty,dive"`
	DefaultCurrency string           `json:"defaultCurrency" validate:"omitempty,currency"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

type UpdatePasswordRequest struct {
	CurrPassword string `json:"currPassword" validate:"required"`
	NewPassword  string `json:"newPassword" validate:"required,min=8,max=72"`
}

// UpdateUserRequest is a partial profile update; absent fields stay unchanged.
type UpdateUserRequest struct {
	FirstName       *string          `json:"firstName" validate:"omitempty,min=1,max=64"`
	LastName        *string          `json:"lastName" validate:"omitempty,min=1,max=64"`
	Login           *string          `json:"login" validate:"omitempty,min=3,max=32,alphanum"`
	Email           *string          `json:"email" validate:"omitempty,email"`
	Addresses       []AddressRequest `json:"addresses" validate:"omitempty,dive"`
	DefaultCurrency *string          `json:"defaultCurrency" validate:"omitempty,currency"`
	Password        *string          `json:"password"`
	NewPassword     *string          `json:"newPassword"`
	Roles           []string         `json:"roles"`
	Active          *bool            `json:"active"`
}

// Patch keeps the fields a user may change about themselves.
func (r UpdateUserRequest) Patch() (domain.UserPatch, error) {
	if r.Password != nil || r.NewPassword != nil {
		return domain.UserPatch{}, domain.NewError(domain.ErrCodeInvalid, "this route is not for password updates, please use /update-password")
	}
	if r.Roles != nil || r.Active != nil {
		return domain.UserPatch{}, domain.ErrForbidden
	}
	patch := domain.UserPatch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Login:     r.Login,
		Email:     r.Email,
	}
	if r.Addresses != nil {
		addrs := ToAddresses(r.Addresses)
		patch.Addresses = &addrs
	}
	if r.DefaultCurrency != nil {
		c := domain.Currency(*r.DefaultCurrency)
		patch.DefaultCurrency = &c
	}
	return patch, nil
}

// ToAddresses converts request addresses to domain values.
func ToAddresses(in []AddressRequest) []domain.Address {
	out := make([]domain.Address, 0, len(in))
	for _, a := range in {
		out = append(out, domain.Address{
			Country: a.Country,
			City:    a.City,
			Street:  a.Street,
			ZipCode: a.ZipCode,
			Phone:   a.Phone,
		})
	}
	return out
}
