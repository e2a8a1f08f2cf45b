// Package auth registers users, checks their credentials and issues and
// verifies the bearer tokens that identify them on protected routes.
package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/STTM-NSU/investboard/internal/apperr"
	"github.com/STTM-NSU/investboard/internal/logger"
	"github.com/STTM-NSU/investboard/internal/model"
	"github.com/STTM-NSU/investboard/internal/storage"
	"go.uber.org/ratelimit"
)

const (
	_minPasswordLength = 8

	// _maxLoginWaiters bounds how many logins may wait for a limiter slot.
	_maxLoginWaiters = 64
)

var _emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	msgCredentialsRequired = "Email und Passwort sind erforderlich."
	msgInvalidEmail        = "Ungültiges E-Mail-Format."
	msgPasswordTooShort    = "Passwort muss mindestens 8 Zeichen lang sein."
	msgEmailTaken          = "User mit dieser E-Mail existiert bereits."
	msgInvalidCredentials  = "Ungültige Anmeldedaten."
	msgTooManyLogins       = "Zu viele Anmeldeversuche. Bitte später erneut versuchen."
)

type RegisterInput struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

type Service struct {
	users  storage.Users
	hasher *Hasher
	tokens *Tokens

	loginLimiter ratelimit.Limiter
	loginWaiters chan struct{}
	logger       logger.Logger
}

// NewService wires the auth flows. A nil limiter means login attempts are
// not throttled.
func NewService(
	users storage.Users,
	hasher *Hasher,
	tokens *Tokens,
	loginLimiter ratelimit.Limiter,
	logger logger.Logger) *Service {
	return &Service{
		users:        users,
		hasher:       hasher,
		tokens:       tokens,
		loginLimiter: loginLimiter,
		loginWaiters: make(chan struct{}, _maxLoginWaiters),
		logger:       logger,
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (model.PublicUser, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return model.PublicUser{}, apperr.NewValidation(msgCredentialsRequired)
	}
	if !_emailPattern.MatchString(email) {
		return model.PublicUser{}, apperr.NewValidation(msgInvalidEmail)
	}
	if passwordLength(in.Password) < _minPasswordLength {
		return model.PublicUser{}, apperr.NewValidation(msgPasswordTooShort)
	}

	_, err := s.users.UserByEmail(ctx, email)
	switch {
	case err == nil:
		return model.PublicUser{}, apperr.NewConflict(msgEmailTaken)
	case !errors.Is(err, storage.ErrNotFound):
		return model.PublicUser{}, apperr.NewInternal(apperr.InternalMessage, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.PublicUser{}, apperr.NewInternal(apperr.InternalMessage, err)
	}

	user := model.User{
		Email:        email,
		PasswordHash: hash,
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		user.Name = in.Name
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return model.PublicUser{}, apperr.NewConflict(msgEmailTaken)
		}
		return model.PublicUser{}, apperr.NewInternal(apperr.InternalMessage, err)
	}

	s.logger.Infof("new user registered: %s", user.Email)
	return user.Public(), nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return LoginResult{}, apperr.NewValidation(msgCredentialsRequired)
	}
	if !_emailPattern.MatchString(email) {
		return LoginResult{}, apperr.NewValidation(msgInvalidEmail)
	}

	if err := s.awaitLoginSlot(ctx); err != nil {
		return LoginResult{}, err
	}

	user, err := s.users.UserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		s.hasher.Burn(in.Password)
		return LoginResult{}, apperr.NewAuth(msgInvalidCredentials)
	}
	if err != nil {
		return LoginResult{}, apperr.NewInternal(apperr.InternalMessage, err)
	}

	if !s.hasher.Matches(user.PasswordHash, in.Password) {
		return LoginResult{}, apperr.NewAuth(msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return LoginResult{}, apperr.NewInternal(apperr.InternalMessage, err)
	}

	s.logger.Infof("user logged in: %s", user.Email)
	return LoginResult{
		Token: token,
		User: model.PublicUser{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
		},
	}, nil
}

// Verify resolves a bearer token to the identity it was issued for.
func (s *Service) Verify(token string) (Identity, error) {
	return s.tokens.Verify(token)
}

// awaitLoginSlot blocks until the limiter admits another login or ctx is done.
// Callers beyond _maxLoginWaiters are turned away at once. A Take abandoned by
// a cancelled caller still holds its waiter slot until the limiter releases it.
func (s *Service) awaitLoginSlot(ctx context.Context) error {
	if s.loginLimiter == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &apperr.Error{Kind: apperr.Throttled, Message: msgTooManyLogins, Err: err}
	}

	select {
	case s.loginWaiters <- struct{}{}:
	default:
		s.logger.Warnf("login rejected: %d logins already waiting", cap(s.loginWaiters))
		return apperr.NewThrottled(msgTooManyLogins)
	}

	admitted := make(chan struct{})
	go func() {
		defer func() { <-s.loginWaiters }()
		s.loginLimiter.Take()
		close(admitted)
	}()

	select {
	case <-admitted:
		return nil
	case <-ctx.Done():
		return &apperr.Error{Kind: apperr.Throttled, Message: msgTooManyLogins, Err: ctx.Err()}
	}
}

// passwordLength counts UTF-16 code units, so a character outside the basic
// multilingual plane counts twice.
func passwordLength(password string) int {
	return len(utf16.Encode([]rune(password)))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
