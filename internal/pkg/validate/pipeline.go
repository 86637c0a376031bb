package validate

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Check inspects one aspect of the input. It returns nil on success, a
// FieldError when the input is at fault, or any other error when the check
// itself could not be carried out (a failed store lookup, for example).
type Check[T any] func(ctx context.Context, in T) error

// Rule binds a Check to the field its failure is reported under.
type Rule[T any] struct {
	Field string
	Check Check[T]
	// RequiresValid skips the rule once Field has already failed, so that
	// lookups and expensive checks never see a malformed value.
	RequiresValid bool
}

// Pipeline is an ordered list of rules. Every field is evaluated; failures are
// collected rather than returned on the first hit.
type Pipeline[T any] struct {
	rules []Rule[T]
}

func NewPipeline[T any](rules ...Rule[T]) *Pipeline[T] {
	return &Pipeline[T]{rules: rules}
}

// Validate runs every rule against in. It returns nil when all rules pass,
// FieldErrors when at least one field failed, or the first non-field error
// raised by a check, in which case the pass is abandoned.
func (p *Pipeline[T]) Validate(ctx context.Context, in T) error {
	errs := FieldErrors{}
	for _, r := range p.rules {
		if r.RequiresValid && errs.Has(r.Field) {
			continue
		}
		err := r.Check(ctx, in)
		if err == nil {
			continue
		}
		var fe FieldError
		if errors.As(err, &fe) {
			errs.Add(r.Field, fe)
			continue
		}
		return err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Required fails with fail when the value is empty or only whitespace.
func Required[T any](value func(T) string, fail FieldError) Check[T] {
	return func(_ context.Context, in T) error {
		if strings.TrimSpace(value(in)) == "" {
			return fail
		}
		return nil
	}
}

// Var checks a single value against a validator tag such as "max=40".
// Empty values pass: presence is reported once, by Required.
func Var[T any](tag string, value func(T) string, fail FieldError) Check[T] {
	return func(_ context.Context, in T) error {
		s := value(in)
		if s == "" {
			return nil
		}
		if err := v.Var(s, tag); err != nil {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				return fail
			}
			return err
		}
		return nil
	}
}
