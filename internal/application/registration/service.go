package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-api-registration/internal/domain"
	"github.com/go-api-registration/internal/pkg/id"
	pkgtoken "github.com/go-api-registration/internal/pkg/token"
	"github.com/go-api-registration/internal/pkg/validate"
	"go.uber.org/zap"
)

// DynamoDB attribute names used in partial update maps.
const fieldEmailConfirmed = "email_confirmed"

// maxTokenAttempts bounds how many fresh values are tried when a token value collides.
const maxTokenAttempts = 3

type Service interface {
	// Register validates req, stores the user, issues a confirmation token and
	// hands it to the notifier. Validation problems come back as validate.FieldErrors.
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	// Confirm consumes the token with the given value and marks its user's email confirmed.
	Confirm(ctx context.Context, value string) error
	// Resend issues a new confirmation token for an unconfirmed user. Unknown
	// or already confirmed addresses are silently ignored.
	Resend(ctx context.Context, email string) error
}

type userStore interface {
	GetByFullName(ctx context.Context, fullName string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type tokenStore interface {
	Create(ctx context.Context, t *domain.Token) error
	GetByValue(ctx context.Context, value string) (*domain.Token, error)
	Consume(ctx context.Context, value string) error
}

// Notifier delivers a confirmation link carrying token to the address to.
type Notifier interface {
	NotifyConfirmation(ctx context.Context, to, token string) error
}

type passwordHasher interface {
	Hash(plain string) (string, error)
}

// Config is fixed at process start and never changes afterwards.
type Config struct {
	// TokenExpiration is how long a confirmation token stays valid.
	TokenExpiration time.Duration
	// TokenRetention is how long an expired token is kept before the store may purge it.
	TokenRetention time.Duration
	Messages       Messages
}

type ServiceDeps struct {
	UserRepo  userStore
	TokenRepo tokenStore
	Notifier  Notifier
	Hasher    passwordHasher
	Logger    *zap.Logger
	Config    Config
	// Now and NewTokenValue default to time.Now and pkg/token.NewValue.
	Now           func() time.Time
	NewTokenValue func() (string, error)
}

type service struct {
	users     userStore
	tokens    tokenStore
	notifier  Notifier
	hasher    passwordHasher
	log       *zap.Logger
	cfg       Config
	msgs      Messages
	pipeline  *validate.Pipeline[*pass]
	now       func() time.Time
	nextValue func() (string, error)
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		users:     deps.UserRepo,
		tokens:    deps.TokenRepo,
		notifier:  deps.Notifier,
		hasher:    deps.Hasher,
		log:       deps.Logger,
		cfg:       deps.Config,
		msgs:      deps.Config.Messages.withDefaults(),
		now:       deps.Now,
		nextValue: deps.NewTokenValue,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.nextValue == nil {
		s.nextValue = pkgtoken.NewValue
	}
	s.pipeline = newPipeline(s.msgs)
	return s
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)

	if err := s.pipeline.Validate(ctx, &pass{req: req, lookups: newLookupCache(s.users)}); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         domain.RoleSearcher,
		Enable:       1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Another request claimed the email between our lookup and the write.
			errs := validate.FieldErrors{}
			errs.Add(FieldEmail, s.msgs.invalid(s.msgs.EmailInUse))
			return nil, errs
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.sendConfirmation(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.UserID))
	return u, nil
}

func (s *service) Confirm(ctx context.Context, value string) error {
	if value == "" {
		return fmt.Errorf("empty token: %w", domain.ErrNotFound)
	}
	t, err := s.tokens.GetByValue(ctx, value)
	if err != nil {
		return err
	}
	if t.IsExpiredAt(s.now(), s.cfg.TokenExpiration) {
		return fmt.Errorf("token %s issued at %s: %w", t.TokenID, t.CreatedAt.Format(time.RFC3339), domain.ErrTokenExpired)
	}
	// Consume before confirming so that a token can never confirm twice. If
	// the update then fails the user stays unconfirmed and Resend issues a
	// fresh token.
	if err := s.tokens.Consume(ctx, value); err != nil {
		return err
	}
	if err := s.users.Update(ctx, t.UserID, map[string]interface{}{fieldEmailConfirmed: true}); err != nil {
		s.log.Error("token consumed but user not confirmed",
			zap.String("user_id", t.UserID), zap.String("token_id", t.TokenID), zap.Error(err))
		return fmt.Errorf("confirm user %s: %w", t.UserID, err)
	}
	s.log.Info("email confirmed", zap.String("user_id", t.UserID), zap.String("token_id", t.TokenID))
	return nil
}

func (s *service) Resend(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if u.EmailConfirmed {
		s.log.Debug("resend skipped, email already confirmed", zap.String("user_id", u.UserID))
		return nil
	}
	return s.sendConfirmation(ctx, u)
}

func (s *service) sendConfirmation(ctx context.Context, u *domain.User) error {
	t, err := s.issueToken(ctx, u.UserID)
	if err != nil {
		return err
	}
	if err := s.notifier.NotifyConfirmation(ctx, u.Email, t.Value); err != nil {
		return fmt.Errorf("notify user %s: %w", u.UserID, err)
	}
	return nil
}

// issueToken stores a new confirmation token for userID, drawing a fresh value
// whenever the store reports the previous one as taken.
func (s *service) issueToken(ctx context.Context, userID string) (*domain.Token, error) {
	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		value, err := s.nextValue()
		if err != nil {
			return nil, err
		}
		now := s.now().UTC()
		t := &domain.Token{
			TokenID:   id.NewUUID(),
			Value:     value,
			UserID:    userID,
			Purpose:   domain.TokenPurposeEmailConfirmation,
			CreatedAt: now,
			PurgeAt:   now.Add(s.cfg.TokenExpiration + s.cfg.TokenRetention).Unix(),
		}
		err = s.tokens.Create(ctx, t)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("create token: %w", err)
		}
		s.log.Warn("token value collision, regenerating", zap.String("user_id", userID), zap.Int("attempt", attempt))
	}
	return nil, fmt.Errorf("token value collided %d times: %w", maxTokenAttempts, domain.ErrConflict)
}
