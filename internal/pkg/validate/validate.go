package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct or Var.
var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	// Report JSON field names so struct errors line up with request bodies.
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return val
}

// RegisterPattern adds a string validation tag backed by a regular expression.
// Empty strings match so that presence stays the job of the required tag.
func RegisterPattern(tag string, re *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || re.MatchString(s)
	})
	if err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// FieldError is a validation failure scoped to one input field.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Message }

// FieldErrors maps a field name to its failures, in the order they were found.
type FieldErrors map[string][]FieldError

// Add records fe under field.
func (e FieldErrors) Add(field string, fe FieldError) {
	e[field] = append(e[field], fe)
}

// Has reports whether field already failed at least once.
func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// Fields returns the failing field names, sorted.
func (e FieldErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (e FieldErrors) Error() string {
	var msgs []string
	for _, f := range e.Fields() {
		for _, fe := range e[f] {
			msgs = append(msgs, fmt.Sprintf("%s: %s", f, fe.Message))
		}
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// structMessages are used by Struct for tags that have no caller-supplied message.
var structMessages = map[string]FieldError{
	"required": {Code: "required", Message: "This field is required."},
	"email":    {Code: "invalid_data", Message: "Enter a valid email address."},
}

// Struct validates the given struct using its validate tags.
// Returns FieldErrors keyed by JSON field name, another error if s cannot be
// validated at all, or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs := FieldErrors{}
		for _, fe := range ve {
			msg, ok := structMessages[fe.Tag()]
			if !ok {
				msg = FieldError{Code: "invalid_data", Message: fmt.Sprintf("Failed the '%s' check.", fe.Tag())}
			}
			errs.Add(fe.Field(), msg)
		}
		return errs
	}
	return nil
}
