package ownership

import (
	"context"
	"errors"
	"testing"

	"github.com/STTM-NSU/investboard/internal/model"
	"github.com/STTM-NSU/investboard/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingOwners struct{}

func (failingOwners) OwnerOf(context.Context, model.Kind, int64) (int64, error) {
	return 0, errors.New("connection reset")
}

func TestRequire(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	alice := model.User{Email: "alice@example.com"}
	bob := model.User{Email: "bob@example.com"}
	require.NoError(t, store.CreateUser(ctx, &alice))
	require.NoError(t, store.CreateUser(ctx, &bob))
	broker := model.Broker{Name: "X", Type: "Online", UserID: alice.ID}
	require.NoError(t, store.CreateBroker(ctx, &broker))
	konto := model.Konto{Name: "K", Currency: "EUR", BrokerID: broker.ID}
	require.NoError(t, store.CreateKonto(ctx, &konto))

	r := NewResolver(store)

	assert.NoError(t, r.Require(ctx, alice.ID, model.KindBroker, broker.ID))
	assert.NoError(t, r.Require(ctx, alice.ID, model.KindKonto, konto.ID))

	assert.ErrorIs(t, r.Require(ctx, bob.ID, model.KindBroker, broker.ID), ErrNotOwned)
	assert.ErrorIs(t, r.Require(ctx, bob.ID, model.KindKonto, konto.ID), ErrNotOwned)
	assert.ErrorIs(t, r.Require(ctx, alice.ID, model.KindKonto, konto.ID+1), ErrNotOwned)
	assert.ErrorIs(t, r.Require(ctx, alice.ID, model.KindPosition, 0), ErrNotOwned)
	assert.ErrorIs(t, r.Require(ctx, alice.ID, model.KindUser, alice.ID), ErrNotOwned)
}

func TestRequireStoreFailure(t *testing.T) {
	err := NewResolver(failingOwners{}).Require(context.Background(), 1, model.KindBroker, 1)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotOwned)
	assert.ErrorContains(t, err, "connection reset")
}
