package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"jobboard-backend/internal/model"
)

const passwordSpecials = "@.#$!%*?&"

var (
	engineOnce sync.Once
	engine     *validator.Validate

	patternsMu sync.RWMutex
	patterns   = map[string]*regexp.Regexp{}
)

func init() {
	Engine()
	RegisterPattern("mobile", `^\+?[0-9]{10,15}$`)
}

// Engine returns gin's validator with this package's constraints registered.
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("gin binding validator is not go-playground/validator")
		}
		v.RegisterTagNameFunc(wireName)
		mustRegister(v, "password", func(fl validator.FieldLevel) bool { return ValidPassword(fl.Field().String()) })
		mustRegister(v, "objectid", func(fl validator.FieldLevel) bool { return model.IsID(fl.Field().String()) })
		engine = v
	})
	return engine
}

// RegisterPattern adds a regex constraint usable as a binding tag.
func RegisterPattern(tag, pattern string) {
	re := regexp.MustCompile(pattern)
	patternsMu.Lock()
	patterns[tag] = re
	patternsMu.Unlock()
	mustRegister(Engine(), tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
}

func isPattern(tag string) bool {
	patternsMu.RLock()
	defer patternsMu.RUnlock()
	_, ok := patterns[tag]
	return ok
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s: %v", tag, err))
	}
}

// wireName names fields the way clients send them.
func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri", "header"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// ValidPassword requires 8 to 15 characters from letters, digits and
// @.#$!%*?&, with at least one lowercase, uppercase, digit and special.
func ValidPassword(s string) bool {
	if len(s) < 8 || len(s) > 15 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// message renders a failed constraint in a client-facing form.
func message(fe validator.FieldError) string {
	name := fieldPath(fe)
	kind := fe.Kind()
	param := fe.Param()

	switch fe.Tag() {
	case "required", "required_if", "required_with", "required_without":
		return fmt.Sprintf("%q is required", name)
	case "min":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("%q length must be at least %s characters long", name, param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%q must contain at least %s items", name, param)
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", name, param)
	case "max":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("%q length must be less than or equal to %s characters long", name, param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%q must contain less than or equal to %s items", name, param)
		}
		return fmt.Sprintf("%q must be less than or equal to %s", name, param)
	case "len":
		if kind == reflect.String {
			return fmt.Sprintf("%q length must be %s characters long", name, param)
		}
		return fmt.Sprintf("%q must contain %s items", name, param)
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", name, strings.Join(strings.Fields(param), ", "))
	case "email":
		return fmt.Sprintf("%q must be a valid email", name)
	case "hexadecimal":
		return fmt.Sprintf("%q must only contain hexadecimal characters", name)
	case "objectid":
		return fmt.Sprintf("%q must be a valid id of %d hexadecimal characters", name, model.IDLength)
	case "numeric", "number":
		return fmt.Sprintf("%q must only contain digits", name)
	case "datetime":
		return fmt.Sprintf("%q must be a date in the format %s", name, dateLayout(param))
	case "password":
		return fmt.Sprintf("%q must be 8 to 15 characters with a lowercase letter, an uppercase letter, a digit and one of %s", name, passwordSpecials)
	case "nefield":
		return fmt.Sprintf("%q must be different from %q", name, param)
	}
	if isPattern(fe.Tag()) {
		return fmt.Sprintf("%q with value %q fails to match the required pattern", name, fmt.Sprint(fe.Value()))
	}
	return fmt.Sprintf("%q failed on the '%s' rule", name, fe.Tag())
}

func dateLayout(layout string) string {
	return strings.NewReplacer("2006", "YYYY", "01", "MM", "02", "DD").Replace(layout)
}
