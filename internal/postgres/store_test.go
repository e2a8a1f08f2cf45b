package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/STTM-NSU/investboard/internal/model"
	"github.com/STTM-NSU/investboard/internal/storage"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewStore(sqlx.NewDb(db, "postgres")), mock
}

func TestOwnerQuery(t *testing.T) {
	assert.Equal(t,
		"SELECT t1.user_id FROM brokers t1 WHERE t1.id = $1",
		ownerQuery(model.KindBroker))
	assert.Equal(t,
		"SELECT t1.user_id FROM kontos t2 JOIN brokers t1 ON t1.id = t2.broker_id WHERE t2.id = $1",
		ownerQuery(model.KindKonto))
	assert.Equal(t,
		"SELECT t1.user_id FROM positions t3 JOIN kontos t2 ON t2.id = t3.konto_id JOIN brokers t1 ON t1.id = t2.broker_id WHERE t3.id = $1",
		ownerQuery(model.KindPosition))
}

func TestOwnerOf(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectQuery(ownerQuery(model.KindPosition)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(3)))
	owner, err := s.OwnerOf(ctx, model.KindPosition, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), owner)

	mock.ExpectQuery(ownerQuery(model.KindKonto)).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	_, err = s.OwnerOf(ctx, model.KindKonto, 8)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.OwnerOf(ctx, model.KindUser, 1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateUserDuplicate(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(_insertUser).
		WithArgs("alice@example.com", "hash", nil).
		WillReturnError(&pq.Error{Code: _codeUniqueViolation})

	err := s.CreateUser(context.Background(), &model.User{Email: "alice@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestCreateUser(t *testing.T) {
	s, mock := newMock(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(_insertUser).
		WithArgs("alice@example.com", "hash", "Alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), created))

	name := "Alice"
	u := model.User{Email: "alice@example.com", PasswordHash: "hash", Name: &name}
	require.NoError(t, s.CreateUser(context.Background(), &u))
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, created, u.CreatedAt)
}

func TestUserByEmailNotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(_queryUserByMail).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "created_at"}))

	_, err := s.UserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListBrokersEmpty(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(_queryBrokers).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "notes", "user_id", "created_at"}))

	brokers, err := s.ListBrokers(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, brokers)
	assert.Empty(t, brokers)
}

func TestUpdateBroker(t *testing.T) {
	s, mock := newMock(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(_updateBroker).
		WithArgs(int64(2), "Y", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "notes", "user_id", "created_at"}).
			AddRow(int64(2), "Y", "Online", nil, int64(1), created))

	name := "Y"
	b, err := s.UpdateBroker(context.Background(), 2, model.BrokerPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Y", b.Name)
	assert.Equal(t, "Online", b.Type)
	assert.Nil(t, b.Notes)
}

func TestCreateKontoMissingBroker(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(_insertKonto).
		WithArgs("K", nil, "EUR", int64(99)).
		WillReturnError(&pq.Error{Code: _codeForeignKeyViolation})

	err := s.CreateKonto(context.Background(), &model.Konto{Name: "K", Currency: "EUR", BrokerID: 99})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetPositionScansDecimals(t *testing.T) {
	s, mock := newMock(t)
	entry := time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(_queryPosition).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "konto_id", "asset_type", "symbol", "name", "quantity", "entry_price",
			"current_price", "entry_date", "fees", "leverage", "created_at",
		}).AddRow(int64(5), int64(2), "stock", "ABC", "Alpha", "12.5", "101.37", "110.02", entry, nil, nil, entry))

	p, err := s.GetPosition(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, p.Quantity.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, p.EntryPrice.Equal(decimal.RequireFromString("101.37")))
	require.NotNil(t, p.CurrentPrice)
	assert.True(t, p.CurrentPrice.Equal(decimal.RequireFromString("110.02")))
	assert.Nil(t, p.Fees)
	assert.Nil(t, p.Leverage)
	assert.True(t, p.EntryDate.Equal(entry))
}

func TestDeleteMissingRow(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(_deletePosition).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.DeletePosition(context.Background(), 5), storage.ErrNotFound)

	mock.ExpectExec(_deleteKonto).WithArgs(int64(6)).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, s.DeleteKonto(context.Background(), 6))

	mock.ExpectExec(_deleteKonto).WithArgs(int64(7)).WillReturnError(errors.New("connection reset"))
	err := s.DeleteKonto(context.Background(), 7)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteBroker(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(_deleteBroker).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, s.DeleteBroker(context.Background(), 4))
}
