// Package validation is the declarative request validator. A Schema names,
// per request part, a struct whose tags carry the constraints; every failing
// constraint of every part is reported in one response.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"jobboard-backend/internal/utilities"
)

// Schema maps request parts to constraint sets. Body, Params, Query and
// Headers take a zero value of a tagged struct; nil parts are not checked.
type Schema struct {
	Body    any
	Params  any
	Query   any
	Headers any
	File    *FileRule
	Files   *FileRule
}

// Request validates each configured part independently and aggregates every
// message, in part order body, params, query, headers, file, files.
func Request(schema Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		var messages []string

		parts := []struct {
			shape any
			bind  func(*gin.Context, any) ([]string, error)
		}{
			{schema.Body, bindBody},
			{schema.Params, func(c *gin.Context, obj any) ([]string, error) { return describe(c.ShouldBindUri(obj)) }},
			{schema.Query, func(c *gin.Context, obj any) ([]string, error) { return describe(c.ShouldBindQuery(obj)) }},
			{schema.Headers, func(c *gin.Context, obj any) ([]string, error) { return describe(c.ShouldBindHeader(obj)) }},
		}

		for _, p := range parts {
			if p.shape == nil {
				continue
			}
			msgs, err := p.bind(c, newOf(p.shape))
			if err != nil {
				utilities.Fail(c, err)
				return
			}
			messages = append(messages, msgs...)
		}

		for _, fr := range []struct {
			rule  *FileRule
			multi bool
		}{{schema.File, false}, {schema.Files, true}} {
			if fr.rule == nil {
				continue
			}
			msgs, err := checkFiles(c, fr.rule, fr.multi)
			if err != nil {
				utilities.Fail(c, err)
				return
			}
			messages = append(messages, msgs...)
		}

		if len(messages) > 0 {
			utilities.Fail(c, utilities.NewValidationError(messages))
			return
		}
		c.Next()
	}
}

func newOf(shape any) any {
	t := reflect.TypeOf(shape)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}

// bindBody decodes JSON or form bodies. JSON bytes are cached under
// gin.BodyBytesKey so handlers can bind again with ShouldBindBodyWith.
func bindBody(c *gin.Context, obj any) ([]string, error) {
	switch c.ContentType() {
	case binding.MIMEMultipartPOSTForm:
		return describe(c.ShouldBindWith(obj, binding.FormMultipart))
	case binding.MIMEPOSTForm:
		return describe(c.ShouldBindWith(obj, binding.Form))
	}

	raw, err := c.GetRawData()
	if err != nil {
		return nil, utilities.AsAppError(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	c.Set(gin.BodyBytesKey, raw)

	var messages []string
	if err := json.Unmarshal(raw, obj); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return []string{"request body must be a valid JSON object"}, nil
		}
		messages = append(messages, fmt.Sprintf("%q must be a %s", typeErr.Field, jsonType(typeErr.Type)))
	}

	msgs, err := describe(binding.Validator.ValidateStruct(obj))
	return append(messages, msgs...), err
}

// describe turns a binding error into messages. Only request-size failures
// escape as errors since they are not about the request's shape.
func describe(err error) ([]string, error) {
	if err == nil {
		return nil, nil
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return nil, utilities.AsAppError(err)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, message(fe))
		}
		return out, nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []string{fmt.Sprintf("%q must be a %s", typeErr.Field, jsonType(typeErr.Type))}, nil
	}
	return []string{err.Error()}, nil
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	}
	return strings.ToLower(t.Kind().String())
}
