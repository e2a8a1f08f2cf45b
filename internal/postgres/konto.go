package postgres

import (
	"context"
	"fmt"

	"github.com/STTM-NSU/investboard/internal/model"
)

const (
	_kontoColumns = "k.id, k.name, k.account_number, k.currency, k.broker_id, k.created_at"

	_queryKontos = "SELECT " + _kontoColumns + " FROM kontos k JOIN brokers b ON b.id = k.broker_id WHERE b.user_id = $1 ORDER BY k.id"
	_queryKonto  = "SELECT " + _kontoColumns + " FROM kontos k WHERE k.id = $1"
	_insertKonto = "INSERT INTO kontos (name, account_number, currency, broker_id) VALUES ($1, $2, $3, $4) RETURNING id, created_at"
	_updateKonto = `UPDATE kontos k SET
						name = COALESCE($2, k.name),
						account_number = COALESCE($3, k.account_number),
						currency = COALESCE($4, k.currency)
					WHERE k.id = $1
					RETURNING ` + _kontoColumns
	_deleteKonto = "DELETE FROM kontos WHERE id = $1"
)

func (s *Store) ListKontos(ctx context.Context, userID int64) ([]model.Konto, error) {
	kontos := []model.Konto{}
	if err := s.db.SelectContext(ctx, &kontos, _queryKontos, userID); err != nil {
		return nil, fmt.Errorf("%w: can't query kontos of user %d", err, userID)
	}
	return kontos, nil
}

func (s *Store) GetKonto(ctx context.Context, id int64) (model.Konto, error) {
	var k model.Konto
	if err := s.db.GetContext(ctx, &k, _queryKonto, id); err != nil {
		return model.Konto{}, wrap(err, "can't query konto %d", id)
	}
	return k, nil
}

func (s *Store) CreateKonto(ctx context.Context, k *model.Konto) error {
	row := s.db.QueryRowxContext(ctx, _insertKonto, k.Name, k.AccountNumber, k.Currency, k.BrokerID)
	if err := row.Scan(&k.ID, &k.CreatedAt); err != nil {
		return wrap(err, "can't insert konto for broker %d", k.BrokerID)
	}
	return nil
}

func (s *Store) UpdateKonto(ctx context.Context, id int64, p model.KontoPatch) (model.Konto, error) {
	var k model.Konto
	if err := s.db.GetContext(ctx, &k, _updateKonto, id, p.Name, p.AccountNumber, p.Currency); err != nil {
		return model.Konto{}, wrap(err, "can't update konto %d", id)
	}
	return k, nil
}

// DeleteKonto relies on ON DELETE CASCADE for the positions.
func (s *Store) DeleteKonto(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, _deleteKonto, id)
	return affected(res, err, "konto", id)
}
