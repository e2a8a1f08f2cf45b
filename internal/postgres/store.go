package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/STTM-NSU/investboard/internal/model"
	"github.com/STTM-NSU/investboard/internal/storage"
	"github.com/jmoiron/sqlx"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// wrap maps driver errors onto the storage sentinels.
func wrap(err error, format string, args ...any) error {
	switch {
	case errors.Is(err, sql.ErrNoRows), isViolation(err, _codeForeignKeyViolation):
		err = storage.ErrNotFound
	case isViolation(err, _codeUniqueViolation):
		err = storage.ErrDuplicate
	}
	return fmt.Errorf("%w: "+format, append([]any{err}, args...)...)
}

func affected(res sql.Result, err error, what string, id int64) error {
	if err != nil {
		return wrap(err, "can't delete %s %d", what, id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: can't delete %s %d", err, what, id)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", storage.ErrNotFound, what, id)
	}
	return nil
}

const (
	_insertUser      = "INSERT INTO users (email, password_hash, name) VALUES ($1, $2, $3) RETURNING id, created_at"
	_queryUserByMail = "SELECT id, email, password_hash, name, created_at FROM users WHERE email = $1"
)

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	row := s.db.QueryRowxContext(ctx, _insertUser, u.Email, u.PasswordHash, u.Name)
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return wrap(err, "can't insert user %s", u.Email)
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	if err := s.db.GetContext(ctx, &u, _queryUserByMail, email); err != nil {
		return model.User{}, wrap(err, "can't query user %s", email)
	}
	return u, nil
}

const (
	_brokerColumns = "id, name, type, notes, user_id, created_at"

	_queryBrokers = "SELECT " + _brokerColumns + " FROM brokers WHERE user_id = $1 ORDER BY created_at DESC, id DESC"
	_queryBroker  = "SELECT " + _brokerColumns + " FROM brokers WHERE id = $1"
	_insertBroker = "INSERT INTO brokers (name, type, notes, user_id) VALUES ($1, $2, $3, $4) RETURNING id, created_at"
	_updateBroker = `UPDATE brokers SET
						name = COALESCE($2, name),
						type = COALESCE($3, type),
						notes = COALESCE($4, notes)
					WHERE id = $1
					RETURNING ` + _brokerColumns
	_deleteBroker = "DELETE FROM brokers WHERE id = $1"
)

func (s *Store) ListBrokers(ctx context.Context, userID int64) ([]model.Broker, error) {
	brokers := []model.Broker{}
	if err := s.db.SelectContext(ctx, &brokers, _queryBrokers, userID); err != nil {
		return nil, fmt.Errorf("%w: can't query brokers of user %d", err, userID)
	}
	return brokers, nil
}

func (s *Store) GetBroker(ctx context.Context, id int64) (model.Broker, error) {
	var b model.Broker
	if err := s.db.GetContext(ctx, &b, _queryBroker, id); err != nil {
		return model.Broker{}, wrap(err, "can't query broker %d", id)
	}
	return b, nil
}

func (s *Store) CreateBroker(ctx context.Context, b *model.Broker) error {
	row := s.db.QueryRowxContext(ctx, _insertBroker, b.Name, b.Type, b.Notes, b.UserID)
	if err := row.Scan(&b.ID, &b.CreatedAt); err != nil {
		return wrap(err, "can't insert broker for user %d", b.UserID)
	}
	return nil
}

func (s *Store) UpdateBroker(ctx context.Context, id int64, p model.BrokerPatch) (model.Broker, error) {
	var b model.Broker
	if err := s.db.GetContext(ctx, &b, _updateBroker, id, p.Name, p.Type, p.Notes); err != nil {
		return model.Broker{}, wrap(err, "can't update broker %d", id)
	}
	return b, nil
}

// DeleteBroker relies on ON DELETE CASCADE for kontos and positions.
func (s *Store) DeleteBroker(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, _deleteBroker, id)
	return affected(res, err, "broker", id)
}
