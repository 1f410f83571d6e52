package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/restaurant/domain"
)

const bodyValueKey = "validated_body"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return domain.Currency(fl.Field().String()).Valid()
	})
	return v
}

// Validate decodes the JSON body into T, checks its validate tags and keeps
// the result for Body.
func Validate[T any]() Step {
	return func(ctx *fasthttp.RequestCtx) error {
		var payload T
		body := ctx.PostBody()
		if len(body) == 0 {
			body = []byte("{}")
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "malformed JSON body", err)
		}
		if err := validate.Struct(&payload); err != nil {
			return validationError(err)
		}
		ctx.SetUserValue(bodyValueKey, &payload)
		return nil
	}
}

// Body returns the payload stored by Validate[T].
func Body[T any](ctx *fasthttp.RequestCtx) (*T, error) {
	payload, ok := ctx.UserValue(bodyValueKey).(*T)
	if !ok || payload == nil {
		return nil, domain.ErrInvalidPayload
	}
	return payload, nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid request body", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return domain.WrapError(domain.ErrCodeInvalid, strings.Join(msgs, "; "), err)
}

func describe(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "currency":
		return field + " is not a supported currency"
	case "alphanum":
		return field + " may contain only letters and digits"
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}

// fieldPath drops the struct name prefix from the namespace ("RegisterRequest.addresses[0].city").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}
