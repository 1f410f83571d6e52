package middleware

import (
	"github.com/valyala/fasthttp"

	"github.com/fastygo/restaurant/domain"
)

const patchValueKey = "user_patch"

// Patcher is a validated request body that can describe a profile change.
type Patcher interface {
	Patch() (domain.UserPatch, error)
}

// Update converts the body stored by Validate[T] into a domain.UserPatch.
func Update[T Patcher]() Step {
	return func(ctx *fasthttp.RequestCtx) error {
		body, err := Body[T](ctx)
		if err != nil {
			return err
		}
		patch, err := (*body).Patch()
		if err != nil {
			return err
		}
		if patch.Empty() {
			return domain.NewError(domain.ErrCodeInvalid, "no updatable fields provided")
		}
		ctx.SetUserValue(patchValueKey, patch)
		return nil
	}
}

// UserPatch returns the patch stored by Update.
func UserPatch(ctx *fasthttp.RequestCtx) (domain.UserPatch, error) {
	patch, ok := ctx.UserValue(patchValueKey).(domain.UserPatch)
	if !ok {
		return domain.UserPatch{}, domain.ErrInvalidPayload
	}
	return patch, nil
}
