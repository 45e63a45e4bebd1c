package validate

import (
	"errors"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/baechuer/church-service/internal/domain"
)

var v = newValidator()

func newValidator() *validator.Validate {
	vv := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their json names
	vv.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = f.Tag.Get("form")
		}
		return name
	})
	_ = vv.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return vv
}

// DecodeJSON reads the body into dst. A body over the server limit is
// payload_too_large; anything else unreadable is validation_error.
func DecodeJSON(r *http.Request, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return domain.ErrPayloadTooLarge("request body too large")
		}
		return domain.ErrValidationMeta("invalid json body", map[string]string{
			"body": "malformed JSON or wrong field types",
		})
	}
	return nil
}

// Struct runs the tag rules on s. Missing required fields are listed in
// meta.missing and malformed ones in meta.invalid, both comma-separated.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return domain.ErrValidation(err.Error())
	}

	var missing, invalid []string
	for _, fe := range ves {
		switch fe.Tag() {
		case "required", "notblank":
			missing = append(missing, fe.Field())
		default:
			invalid = append(invalid, fe.Field())
		}
	}

	meta := map[string]string{}
	msg := "invalid fields"
	if len(missing) > 0 {
		meta["missing"] = join(missing)
		msg = "missing required fields"
	}
	if len(invalid) > 0 {
		meta["invalid"] = join(invalid)
	}
	return domain.ErrValidationMeta(msg, meta)
}

// DecodeAndValidate is DecodeJSON followed by Struct.
func DecodeAndValidate(r *http.Request, dst any) error {
	if err := DecodeJSON(r, dst); err != nil {
		return err
	}
	return Struct(dst)
}

func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func join(fields []string) string {
	sort.Strings(fields)
	out := fields[:0]
	for _, f := range fields {
		if len(out) > 0 && out[len(out)-1] == f {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, ",")
}
