package registration

import (
	"strconv"
	"strings"

	"github.com/go-api-registration/internal/pkg/validate"
)

// Error codes carried by registration field errors.
const (
	CodeRequired    = "required"
	CodeMaxLength   = "max_length"
	CodeMinLength   = "min_length"
	CodeInvalidData = "invalid_data"
)

// Messages holds the human-readable text of every registration field error.
// MaxLength and MinLength are templates; {max_length} and {min_length} are
// replaced with the limit that was broken.
type Messages struct {
	Required             string
	MaxLength            string
	MinLength            string
	Invalid              string
	NameInUse            string
	EmailInUse           string
	PasswordNoUpperLower string
	PasswordCommon       string
	PasswordTooLong      string
	PasswordMismatch     string
}

// DefaultMessages returns the stock English messages.
func DefaultMessages() Messages {
	return Messages{
		Required:             "This field is required.",
		MaxLength:            "Ensure this field has no more than {max_length} characters.",
		MinLength:            "Ensure this field has at least {min_length} characters.",
		Invalid:              "Enter a valid value.",
		NameInUse:            "This name is already in use.",
		EmailInUse:           "This email is already in use.",
		PasswordNoUpperLower: "The password must contain uppercase and lowercase letters.",
		PasswordCommon:       "This password is too common.",
		PasswordTooLong:      "This password uses too many non-ASCII characters.",
		PasswordMismatch:     "Passwords do not match.",
	}
}

// withDefaults fills any empty message from DefaultMessages.
func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&m.Required, d.Required)
	fill(&m.MaxLength, d.MaxLength)
	fill(&m.MinLength, d.MinLength)
	fill(&m.Invalid, d.Invalid)
	fill(&m.NameInUse, d.NameInUse)
	fill(&m.EmailInUse, d.EmailInUse)
	fill(&m.PasswordNoUpperLower, d.PasswordNoUpperLower)
	fill(&m.PasswordCommon, d.PasswordCommon)
	fill(&m.PasswordTooLong, d.PasswordTooLong)
	fill(&m.PasswordMismatch, d.PasswordMismatch)
	return m
}

func (m Messages) required() validate.FieldError {
	return validate.FieldError{Code: CodeRequired, Message: m.Required}
}

func (m Messages) maxLength(n int) validate.FieldError {
	msg := strings.ReplaceAll(m.MaxLength, "{max_length}", strconv.Itoa(n))
	return validate.FieldError{Code: CodeMaxLength, Message: msg}
}

func (m Messages) minLength(n int) validate.FieldError {
	msg := strings.ReplaceAll(m.MinLength, "{min_length}", strconv.Itoa(n))
	return validate.FieldError{Code: CodeMinLength, Message: msg}
}

func (m Messages) invalid(msg string) validate.FieldError {
	return validate.FieldError{Code: CodeInvalidData, Message: msg}
}
