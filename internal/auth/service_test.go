package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/STTM-NSU/investboard/internal/apperr"
	"github.com/STTM-NSU/investboard/internal/logger"
	"github.com/STTM-NSU/investboard/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/ratelimit"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(
		memory.New(),
		NewHasher(bcrypt.MinCost),
		NewTokens("test-secret", 24*time.Hour),
		nil,
		logger.NewFromZap(zaptest.NewLogger(t)),
	)
}

func ptr[T any](v T) *T { return &v }

func TestRegisterThenLogin(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "Passw0rd!", Name: ptr("Alice")})
	require.NoError(t, err)
	assert.Positive(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", *user.Name)
	require.NotNil(t, user.CreatedAt)

	res, err := s.Login(ctx, LoginInput{Email: "alice@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
	assert.Nil(t, res.User.CreatedAt)

	id, err := s.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: user.ID, Email: "alice@example.com"}, id)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestService(t)
	cases := map[string]RegisterInput{
		"missing email":    {Password: "Passw0rd!"},
		"missing password": {Email: "alice@example.com"},
		"bad email":        {Email: "alice.example.com", Password: "Passw0rd!"},
		"no tld":           {Email: "alice@example", Password: "Passw0rd!"},
		"short password":   {Email: "alice@example.com", Password: "short"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Register(context.Background(), in)
			assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	for _, in := range []RegisterInput{
		{Email: "alice@example.com", Password: "Passw0rd!"},
		{Email: "alice@example.com", Password: "another-password", Name: ptr("Other")},
		{Email: " Alice@Example.com ", Password: "12345678"},
	} {
		_, err := s.Register(ctx, in)
		assert.Equal(t, http.StatusConflict, apperr.Status(err))
		assert.Equal(t, "User mit dieser E-Mail existiert bereits.", apperr.Message(err))
	}
}

func TestRegisterBlankNameIsNull(t *testing.T) {
	s := newTestService(t)

	user, err := s.Register(context.Background(), RegisterInput{Email: "bob@example.com", Password: "Passw0rd!", Name: ptr("  ")})
	require.NoError(t, err)
	assert.Nil(t, user.Name)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	_, wrongPassword := s.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong-password"})
	_, unknownUser := s.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Passw0rd!"})

	assert.Equal(t, http.StatusUnauthorized, apperr.Status(wrongPassword))
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(unknownUser))
	assert.Equal(t, apperr.Message(unknownUser), apperr.Message(wrongPassword))
}

func TestLoginValidation(t *testing.T) {
	s := newTestService(t)

	_, err := s.Login(context.Background(), LoginInput{Email: "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))

	_, err = s.Login(context.Background(), LoginInput{Email: "alice", Password: "Passw0rd!"})
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
	assert.Equal(t, "Ungültiges E-Mail-Format.", apperr.Message(err))
}

func newThrottledService(t *testing.T) *Service {
	t.Helper()
	return NewService(
		memory.New(),
		NewHasher(bcrypt.MinCost),
		NewTokens("test-secret", 24*time.Hour),
		ratelimit.New(1, ratelimit.Per(time.Minute), ratelimit.WithoutSlack),
		logger.NewFromZap(zaptest.NewLogger(t)),
	)
}

func TestLoginWaitEndsWithContext(t *testing.T) {
	s := newThrottledService(t)
	in := LoginInput{Email: "nobody@example.com", Password: "Passw0rd!"}

	_, err := s.Login(context.Background(), in)
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = s.Login(ctx, in)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, http.StatusTooManyRequests, apperr.Status(err))
	assert.Equal(t, msgTooManyLogins, apperr.Message(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoginWithDoneContextSkipsLimiter(t *testing.T) {
	s := newThrottledService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Passw0rd!"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.loginWaiters)

	_, err = s.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "Passw0rd!"})
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))
}

func TestLoginWaitersAreBounded(t *testing.T) {
	s := newThrottledService(t)
	for range cap(s.loginWaiters) {
		s.loginWaiters <- struct{}{}
	}

	start := time.Now()
	_, err := s.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "Passw0rd!"})
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, http.StatusTooManyRequests, apperr.Status(err))
}

func TestPasswordLengthCountsUTF16Units(t *testing.T) {
	assert.Equal(t, 8, passwordLength("Passw0rd"))
	assert.Equal(t, 8, passwordLength("😀😀😀😀"))
	assert.Equal(t, 4, passwordLength("äöüß"))

	s := newTestService(t)
	_, err := s.Register(context.Background(), RegisterInput{Email: "emoji@example.com", Password: "😀😀😀😀"})
	assert.NoError(t, err)

	_, err = s.Register(context.Background(), RegisterInput{Email: "umlaut@example.com", Password: "äöüßäöü"})
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
}
