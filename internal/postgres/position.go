package postgres

import (
	"context"
	"fmt"

	"github.com/STTM-NSU/investboard/internal/model"
)

const (
	_positionColumns = "p.id, p.konto_id, p.asset_type, p.symbol, p.name, p.quantity, p.entry_price, " +
		"p.current_price, p.entry_date, p.fees, p.leverage, p.created_at"

	_queryPositions = "SELECT " + _positionColumns + ` FROM positions p
						JOIN kontos k ON k.id = p.konto_id
						JOIN brokers b ON b.id = k.broker_id
					WHERE b.user_id = $1 ORDER BY p.id`
	_queryKontoPositions = "SELECT " + _positionColumns + " FROM positions p WHERE p.konto_id = $1 ORDER BY p.id"
	_queryPosition       = "SELECT " + _positionColumns + " FROM positions p WHERE p.id = $1"
	_insertPosition      = `INSERT INTO positions (
								konto_id,
								asset_type,
								symbol,
								name,
								quantity,
								entry_price,
								current_price,
								entry_date,
								fees,
								leverage
							) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
							RETURNING id, created_at`
	_updatePosition = `UPDATE positions p SET
							asset_type = COALESCE($2, p.asset_type),
							symbol = COALESCE($3, p.symbol),
							name = COALESCE($4, p.name),
							quantity = COALESCE($5, p.quantity),
							entry_price = COALESCE($6, p.entry_price),
							current_price = COALESCE($7, p.current_price),
							entry_date = COALESCE($8, p.entry_date),
							fees = COALESCE($9, p.fees),
							leverage = COALESCE($10, p.leverage)
						WHERE p.id = $1
						RETURNING ` + _positionColumns
	_deletePosition = "DELETE FROM positions WHERE id = $1"
)

func (s *Store) ListPositions(ctx context.Context, userID int64) ([]model.Position, error) {
	positions := []model.Position{}
	if err := s.db.SelectContext(ctx, &positions, _queryPositions, userID); err != nil {
		return nil, fmt.Errorf("%w: can't query positions of user %d", err, userID)
	}
	return positions, nil
}

func (s *Store) ListKontoPositions(ctx context.Context, kontoID int64) ([]model.Position, error) {
	positions := []model.Position{}
	if err := s.db.SelectContext(ctx, &positions, _queryKontoPositions, kontoID); err != nil {
		return nil, fmt.Errorf("%w: can't query positions of konto %d", err, kontoID)
	}
	return positions, nil
}

func (s *Store) GetPosition(ctx context.Context, id int64) (model.Position, error) {
	var p model.Position
	if err := s.db.GetContext(ctx, &p, _queryPosition, id); err != nil {
		return model.Position{}, wrap(err, "can't query position %d", id)
	}
	return p, nil
}

func (s *Store) CreatePosition(ctx context.Context, p *model.Position) error {
	row := s.db.QueryRowxContext(ctx, _insertPosition,
		p.KontoID, p.AssetType, p.Symbol, p.Name, p.Quantity, p.EntryPrice,
		p.CurrentPrice, p.EntryDate, p.Fees, p.Leverage,
	)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return wrap(err, "can't insert position for konto %d", p.KontoID)
	}
	return nil
}

func (s *Store) UpdatePosition(ctx context.Context, id int64, patch model.PositionPatch) (model.Position, error) {
	var p model.Position
	err := s.db.GetContext(ctx, &p, _updatePosition, id,
		patch.AssetType, patch.Symbol, patch.Name, patch.Quantity, patch.EntryPrice,
		patch.CurrentPrice, patch.EntryDate, patch.Fees, patch.Leverage,
	)
	if err != nil {
		return model.Position{}, wrap(err, "can't update position %d", id)
	}
	return p, nil
}

func (s *Store) DeletePosition(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, _deletePosition, id)
	return affected(res, err, "position", id)
}
