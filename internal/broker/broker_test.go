package broker

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/STTM-NSU/investboard/internal/apperr"
	"github.com/STTM-NSU/investboard/internal/auth"
	"github.com/STTM-NSU/investboard/internal/logger"
	"github.com/STTM-NSU/investboard/internal/model"
	"github.com/STTM-NSU/investboard/internal/ownership"
	"github.com/STTM-NSU/investboard/internal/storage"
	"github.com/STTM-NSU/investboard/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setup(t *testing.T) (*Service, auth.Identity, auth.Identity) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	alice := model.User{Email: "alice@example.com"}
	bob := model.User{Email: "bob@example.com"}
	require.NoError(t, store.CreateUser(ctx, &alice))
	require.NoError(t, store.CreateUser(ctx, &bob))

	s := NewService(store, ownership.NewResolver(store), logger.NewFromZap(zaptest.NewLogger(t)))
	return s, auth.Identity{UserID: alice.ID, Email: alice.Email}, auth.Identity{UserID: bob.ID, Email: bob.Email}
}

func ptr[T any](v T) *T { return &v }

func TestCreateAndList(t *testing.T) {
	s, alice, bob := setup(t)
	ctx := context.Background()

	first, err := s.Create(ctx, alice, CreateInput{Name: "X", Type: "Online"})
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, first.UserID)
	assert.Nil(t, first.Notes)

	second, err := s.Create(ctx, alice, CreateInput{Name: "Y", Type: "Bank", Notes: ptr("depot")})
	require.NoError(t, err)

	brokers, err := s.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, brokers, 2)
	assert.Equal(t, second.ID, brokers[0].ID)

	brokers, err = s.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, brokers)
}

func TestCreateRequiresNameAndType(t *testing.T) {
	s, alice, _ := setup(t)

	for _, in := range []CreateInput{{Name: "X"}, {Type: "Online"}, {Name: " ", Type: "Online"}} {
		_, err := s.Create(context.Background(), alice, in)
		assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
		assert.Equal(t, "Name und Typ sind erforderlich.", apperr.Message(err))
	}
}

func TestOtherUserSeesNotFound(t *testing.T) {
	s, alice, bob := setup(t)
	ctx := context.Background()

	b, err := s.Create(ctx, alice, CreateInput{Name: "X", Type: "Online"})
	require.NoError(t, err)

	_, err = s.Get(ctx, bob, b.ID)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))

	_, err = s.Update(ctx, bob, b.ID, model.BrokerPatch{Name: ptr("stolen")})
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))

	assert.Equal(t, http.StatusNotFound, apperr.Status(s.Delete(ctx, bob, b.ID)))

	got, err := s.Get(ctx, alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "X", got.Name)
}

func TestUpdateIsPartial(t *testing.T) {
	s, alice, _ := setup(t)
	ctx := context.Background()

	b, err := s.Create(ctx, alice, CreateInput{Name: "X", Type: "Online", Notes: ptr("n")})
	require.NoError(t, err)

	updated, err := s.Update(ctx, alice, b.ID, model.BrokerPatch{Type: ptr("Bank")})
	require.NoError(t, err)
	assert.Equal(t, "X", updated.Name)
	assert.Equal(t, "Bank", updated.Type)
	assert.Equal(t, "n", *updated.Notes)

	_, err = s.Update(ctx, alice, b.ID, model.BrokerPatch{Name: ptr("")})
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
}

func TestDelete(t *testing.T) {
	s, alice, _ := setup(t)
	ctx := context.Background()

	b, err := s.Create(ctx, alice, CreateInput{Name: "X", Type: "Online"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, alice, b.ID))
	_, err = s.Get(ctx, alice, b.ID)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
	assert.Equal(t, http.StatusNotFound, apperr.Status(s.Delete(ctx, alice, b.ID)))
}

type failingBrokers struct {
	storage.Store
}

func (failingBrokers) ListBrokers(context.Context, int64) ([]model.Broker, error) {
	return nil, errors.New("connection refused")
}

func (failingBrokers) CreateBroker(context.Context, *model.Broker) error {
	return errors.New("connection refused")
}

func TestStoreFailureHidesCause(t *testing.T) {
	store := memory.New()
	s := NewService(failingBrokers{store}, ownership.NewResolver(store), logger.NewFromZap(zaptest.NewLogger(t)))
	caller := auth.Identity{UserID: 1, Email: "alice@example.com"}

	_, err := s.List(context.Background(), caller)
	assert.Equal(t, http.StatusInternalServerError, apperr.Status(err))
	assert.Equal(t, "Interner Serverfehler", apperr.Message(err))
	assert.ErrorContains(t, err, "connection refused")

	_, err = s.Create(context.Background(), caller, CreateInput{Name: "X", Type: "Online"})
	assert.Equal(t, http.StatusInternalServerError, apperr.Status(err))
	assert.Equal(t, "Interner Serverfehler", apperr.Message(err))
}
