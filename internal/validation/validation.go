// Package validation checks request payloads against the constraints declared
// in their struct tags and reports the first violation.
//
// Constraints use go-playground/validator tags. The message for a violation is
// read from the field's `message_<tag>` tag, falling back to `message`.
package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/isdelr/tasktrack-be/internal/api/respond"
	"github.com/isdelr/tasktrack-be/internal/apperror"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s and returns a BadRequest carrying the message of the
// first violated constraint, in field declaration order.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.Internal(fmt.Errorf("validate %T: %w", s, err))
	}
	return apperror.BadRequest(messageFor(s, fieldErrs[0]))
}

func messageFor(s any, fe validator.FieldError) string {
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(fe.StructField()); ok {
		if msg := f.Tag.Get("message_" + fe.Tag()); msg != "" {
			return msg
		}
		if msg := f.Tag.Get("message"); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("Invalid value for %s", fe.Field())
}

// Normalizer is implemented by payloads that clean up their fields, such as
// trimming whitespace, before the constraints are checked.
type Normalizer interface {
	Normalize()
}

type payloadKey struct{}

// Body decodes the JSON request body into a T, normalizes and validates it and makes it
// available to the next handler through Payload. An empty body decodes as the
// zero T so that missing fields are reported by their own messages.
func Body[T any]() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload T
			dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err := dec.Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
				respond.Error(w, r, apperror.BadRequest("Invalid request body"))
				return
			}
			if n, ok := any(&payload).(Normalizer); ok {
				n.Normalize()
			}
			if err := Struct(payload); err != nil {
				respond.Error(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), payloadKey{}, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Payload returns the payload stored by Body.
func Payload[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(payloadKey{}).(T)
	return v, ok
}
