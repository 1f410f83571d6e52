package transport

import (
	"encoding/json"
	"strings"

	"github.com/fastygo/restaurant/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Data   any    `json:"data,omitempty"`
	Error  any    `json:"error,omitempty"`
	Meta   any    `json:"meta,omitempty"`
}

// TokenResponse carries a freshly issued session token.
type TokenResponse struct {
	Token string `json:"token"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListMeta describes a page of results.
type ListMeta struct {
	Results int `json:"results"`
	Page    int `json:"page"`
	Limit   int `json:"limit"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data any, meta any) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err any, meta any) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// SelectFields projects the JSON form of v onto fields. Plain names include,
// "-name" excludes; the two cannot be mixed. "id" is kept unless excluded and
// may be dropped from either form.
func SelectFields(v any, fields []string) (any, error) {
	if len(fields) == 0 {
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "fields can only be selected on objects", err)
	}

	var (
		include, exclude []string
		keepID, dropID   bool
	)
	for _, f := range fields {
		name, excluded := strings.CutPrefix(f, "-")
		switch {
		case name == "id":
			keepID, dropID = !excluded, excluded
		case excluded:
			exclude = append(exclude, name)
		default:
			include = append(include, name)
		}
	}
	if len(include) > 0 && len(exclude) > 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "cannot mix included and excluded fields")
	}

	if len(include) == 0 && (!keepID || len(exclude) > 0) {
		for _, name := range exclude {
			delete(doc, name)
		}
		if dropID {
			delete(doc, "id")
		}
		return doc, nil
	}

	out := make(map[string]json.RawMessage, len(include)+1)
	if id, ok := doc["id"]; ok && !dropID {
		out["id"] = id
	}
	for _, name := range include {
		if value, ok := doc[name]; ok {
			out[name] = value
		}
	}
	return out, nil
}
