// Package middleware decodes HTTP request bodies under a typedjson Type before
// they reach the handler.
package middleware

import (
	"context"
	"errors"
	"net/http"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/typedjson"
)

type ctxKeyDecoded struct{}

// ContextWithDecoded attaches a decoded value to the context.
func ContextWithDecoded(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded{}, v)
}

// DecodedFromContext retrieves the value stored by ContextWithDecoded.
func DecodedFromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(ctxKeyDecoded{})
	return v, v != nil
}

// DefaultOptions returns a recommended default for HTTP JSON boundaries:
// duplicate keys are errors and nesting is capped.
func DefaultOptions() typedjson.Options {
	return typedjson.Options{
		Parse: typedjson.ParseOpt{
			Strictness: typedjson.Strictness{OnDuplicateKey: typedjson.Error},
			MaxDepth:   128,
		},
	}
}

// Config tunes Decode.
type Config struct {
	Options typedjson.Options
	// OnError writes the response for a rejected body. nil uses WriteError.
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// Decode returns middleware that reads the request body as JSON, decodes it
// under t and stores the result in the request context. Rejected bodies never
// reach next.
func Decode(t typedjson.Type, cfg ...Config) func(http.Handler) http.Handler {
	c := Config{Options: DefaultOptions()}
	if len(cfg) > 0 {
		c = cfg[len(cfg)-1]
	}
	if c.OnError == nil {
		c.OnError = WriteError
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, err := typedjson.DecodeJSONReader(r.Body, t, c.Options)
			if err != nil {
				c.OnError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDecoded(r.Context(), v)))
		})
	}
}

// IssueView is the JSON shape of one issue in error responses.
type IssueView struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues typedjson.Issues) map[string]any {
	views := make([]IssueView, len(issues))
	for i, it := range issues {
		views[i] = IssueView{Path: it.Path, Code: it.Code, Message: it.Message}
	}
	return map[string]any{"issues": views}
}

// WriteError answers 422 for incompatible values, 400 for unreadable JSON and
// 500 for anything else.
func WriteError(w http.ResponseWriter, _ *http.Request, err error) {
	status := http.StatusInternalServerError
	var payload any = map[string]any{"error": "internal error"}
	if iss, ok := typedjson.AsIssues(err); ok {
		status = http.StatusBadRequest
		if errors.Is(err, typedjson.ErrIncompatibleValue) {
			status = http.StatusUnprocessableEntity
		}
		payload = ErrorPayload(iss)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = gojson.NewEncoder(w).Encode(payload)
}
