package registration

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode"

	"github.com/go-api-registration/internal/domain"
	"github.com/go-api-registration/internal/pkg/validate"
)

// Field names as they appear in requests and in error details.
const (
	FieldFullName        = "full_name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
)

const (
	fullNameMaxLen = 40
	emailMaxLen    = 40
	passwordMinLen = 8
	passwordMaxLen = 20
	// bcrypt refuses inputs longer than this.
	passwordMaxBytes = 72
	tagFullName      = "fullname"
	tagEmailShape    = "emailshape"
)

var (
	fullNamePattern = regexp.MustCompile(`^[A-Za-z\s]+$`)
	emailPattern    = regexp.MustCompile(`^([A-Za-z0-9]+[-_.])*[A-Za-z0-9]+@[A-Za-z]+(\.[A-Z|a-z]{2,4}){1,2}$`)
)

func init() {
	validate.RegisterPattern(tagFullName, fullNamePattern)
	validate.RegisterPattern(tagEmailShape, emailPattern)
}

// pass is the state of one validation run: the submission plus the store
// lookups already made for it.
type pass struct {
	req     domain.RegisterRequest
	lookups *lookupCache
}

// lookupCache remembers, per field and value, whether a user already holds it.
type lookupCache struct {
	users userStore
	seen  map[string]bool
}

func newLookupCache(users userStore) *lookupCache {
	return &lookupCache{users: users, seen: make(map[string]bool)}
}

// taken reports whether a user with field=value exists, querying the store at
// most once per (field, value) in a pass.
func (c *lookupCache) taken(ctx context.Context, field, value string) (bool, error) {
	key := field + "\x00" + value
	if v, ok := c.seen[key]; ok {
		return v, nil
	}
	var err error
	switch field {
	case FieldFullName:
		_, err = c.users.GetByFullName(ctx, value)
	case FieldEmail:
		_, err = c.users.GetByEmail(ctx, value)
	default:
		return false, fmt.Errorf("no lookup for field %q", field)
	}
	switch {
	case err == nil:
		c.seen[key] = true
	case errors.Is(err, domain.ErrNotFound):
		c.seen[key] = false
	default:
		return false, fmt.Errorf("look up %s: %w", field, err)
	}
	return c.seen[key], nil
}

func fullName(p *pass) string        { return p.req.FullName }
func email(p *pass) string           { return p.req.Email }
func password(p *pass) string        { return p.req.Password }
func confirmPassword(p *pass) string { return p.req.ConfirmPassword }

// newPipeline composes the registration rules in reporting order.
func newPipeline(m Messages) *validate.Pipeline[*pass] {
	return validate.NewPipeline(
		validate.Rule[*pass]{Field: FieldFullName, Check: validate.Required(fullName, m.required())},
		validate.Rule[*pass]{Field: FieldFullName, Check: validate.Var(fmt.Sprintf("max=%d", fullNameMaxLen), fullName, m.maxLength(fullNameMaxLen))},
		validate.Rule[*pass]{Field: FieldFullName, Check: validate.Var(tagFullName, fullName, m.invalid(m.Invalid))},
		validate.Rule[*pass]{Field: FieldFullName, Check: unique(FieldFullName, fullName, m.invalid(m.NameInUse)), RequiresValid: true},

		validate.Rule[*pass]{Field: FieldEmail, Check: validate.Required(email, m.required())},
		validate.Rule[*pass]{Field: FieldEmail, Check: validate.Var(fmt.Sprintf("max=%d", emailMaxLen), email, m.maxLength(emailMaxLen))},
		validate.Rule[*pass]{Field: FieldEmail, Check: validate.Var(tagEmailShape, email, m.invalid(m.Invalid))},
		validate.Rule[*pass]{Field: FieldEmail, Check: unique(FieldEmail, email, m.invalid(m.EmailInUse)), RequiresValid: true},

		validate.Rule[*pass]{Field: FieldPassword, Check: validate.Required(password, m.required())},
		validate.Rule[*pass]{Field: FieldPassword, Check: validate.Var(fmt.Sprintf("max=%d", passwordMaxLen), password, m.maxLength(passwordMaxLen))},
		validate.Rule[*pass]{Field: FieldPassword, Check: validate.Var(fmt.Sprintf("min=%d", passwordMinLen), password, m.minLength(passwordMinLen))},
		validate.Rule[*pass]{Field: FieldPassword, Check: fitsHash(m), RequiresValid: true},
		validate.Rule[*pass]{Field: FieldPassword, Check: strength(m), RequiresValid: true},

		validate.Rule[*pass]{Field: FieldConfirmPassword, Check: validate.Required(confirmPassword, m.required())},
		validate.Rule[*pass]{Field: FieldConfirmPassword, Check: matches(m), RequiresValid: true},
	)
}

func unique(field string, value func(*pass) string, fail validate.FieldError) validate.Check[*pass] {
	return func(ctx context.Context, p *pass) error {
		taken, err := p.lookups.taken(ctx, field, value(p))
		if err != nil {
			return err
		}
		if taken {
			return fail
		}
		return nil
	}
}

// fitsHash rejects passwords whose UTF-8 encoding is too long to hash. The
// character limit alone lets through twenty multibyte runes.
func fitsHash(m Messages) validate.Check[*pass] {
	return func(_ context.Context, p *pass) error {
		if len(p.req.Password) > passwordMaxBytes {
			return m.invalid(m.PasswordTooLong)
		}
		return nil
	}
}

// strength rejects passwords made only of digits and common passwords.
func strength(m Messages) validate.Check[*pass] {
	return func(_ context.Context, p *pass) error {
		pw := p.req.Password
		if isDecimal(pw) {
			return m.invalid(m.PasswordNoUpperLower)
		}
		if isCommonPassword(pw) {
			return m.invalid(m.PasswordCommon)
		}
		return nil
	}
}

// matches compares the two passwords whatever state the password field is in.
func matches(m Messages) validate.Check[*pass] {
	return func(_ context.Context, p *pass) error {
		if p.req.Password != p.req.ConfirmPassword {
			return m.invalid(m.PasswordMismatch)
		}
		return nil
	}
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
