// Package position manages the holdings inside a user's kontos.
package position

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/STTM-NSU/investboard/internal/apperr"
	"github.com/STTM-NSU/investboard/internal/auth"
	"github.com/STTM-NSU/investboard/internal/logger"
	"github.com/STTM-NSU/investboard/internal/model"
	"github.com/STTM-NSU/investboard/internal/ownership"
	"github.com/STTM-NSU/investboard/internal/storage"
	"github.com/shopspring/decimal"
)

const DefaultAssetType = "stock"

const (
	msgKontoNotOwned  = "Konto nicht gefunden oder nicht zugeordnet."
	msgFieldsRequired = "Symbol, Menge und Einstiegspreis sind erforderlich."
	msgNegativePrice  = "Preise und Gebühren dürfen nicht negativ sein."
	msgNotFound       = "Position nicht gefunden."
	msgListFailed     = "Fehler beim Laden der Positionen."
	msgLoadFailed     = "Fehler beim Laden der Position."
	msgCreateFailed   = "Fehler beim Erstellen der Position."
	msgUpdateFailed   = "Fehler beim Aktualisieren der Position."
	msgDeleteFailed   = "Fehler beim Löschen der Position."
)

type Store interface {
	storage.Positions
	storage.Kontos
}

type CreateInput struct {
	KontoID      int64            `json:"kontoId"`
	AssetType    string           `json:"assetType"`
	Symbol       string           `json:"symbol"`
	Name         string           `json:"name"`
	Quantity     *decimal.Decimal `json:"quantity"`
	EntryPrice   *decimal.Decimal `json:"entryPrice"`
	CurrentPrice *decimal.Decimal `json:"currentPrice"`
	EntryDate    *time.Time       `json:"entryDate"`
	Fees         *decimal.Decimal `json:"fees"`
	Leverage     *decimal.Decimal `json:"leverage"`
}

type Service struct {
	store    Store
	resolver *ownership.Resolver
	logger   logger.Logger

	now func() time.Time
}

func NewService(store Store, resolver *ownership.Resolver, logger logger.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) List(ctx context.Context, caller auth.Identity) ([]model.PositionDetail, error) {
	positions, err := s.store.ListPositions(ctx, caller.UserID)
	if err != nil {
		return nil, apperr.NewInternal(msgListFailed, err)
	}
	if len(positions) == 0 {
		return []model.PositionDetail{}, nil
	}

	kontos, err := s.store.ListKontos(ctx, caller.UserID)
	if err != nil {
		return nil, apperr.NewInternal(msgListFailed, err)
	}
	kontosByID := make(map[int64]model.Konto, len(kontos))
	for _, k := range kontos {
		kontosByID[k.ID] = k
	}

	out := make([]model.PositionDetail, 0, len(positions))
	for _, p := range positions {
		d := model.PositionDetail{Position: p}
		if k, ok := kontosByID[p.KontoID]; ok {
			d.Konto = &k
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, caller auth.Identity, id int64) (model.PositionDetail, error) {
	if err := s.require(ctx, caller, id, msgLoadFailed); err != nil {
		return model.PositionDetail{}, err
	}

	p, err := s.store.GetPosition(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return model.PositionDetail{}, apperr.NewNotFound(msgNotFound)
	}
	if err != nil {
		return model.PositionDetail{}, apperr.NewInternal(msgLoadFailed, err)
	}

	k, err := s.store.GetKonto(ctx, p.KontoID)
	if err != nil {
		return model.PositionDetail{}, apperr.NewInternal(msgLoadFailed, err)
	}
	return model.PositionDetail{Position: p, Konto: &k}, nil
}

// Create adds a position to one of the caller's kontos. A konto that is
// missing or belongs to someone else is a validation failure.
func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (model.Position, error) {
	if strings.TrimSpace(in.Symbol) == "" || in.Quantity == nil || in.EntryPrice == nil {
		return model.Position{}, apperr.NewValidation(msgFieldsRequired)
	}
	if anyNegative(in.EntryPrice, in.CurrentPrice, in.Fees) {
		return model.Position{}, apperr.NewValidation(msgNegativePrice)
	}

	err := s.resolver.Require(ctx, caller.UserID, model.KindKonto, in.KontoID)
	if errors.Is(err, ownership.ErrNotOwned) {
		return model.Position{}, apperr.NewValidation(msgKontoNotOwned)
	}
	if err != nil {
		return model.Position{}, apperr.NewInternal(msgCreateFailed, err)
	}

	p := model.Position{
		KontoID:      in.KontoID,
		AssetType:    in.AssetType,
		Symbol:       in.Symbol,
		Name:         in.Name,
		Quantity:     *in.Quantity,
		EntryPrice:   *in.EntryPrice,
		CurrentPrice: in.CurrentPrice,
		Fees:         in.Fees,
		Leverage:     in.Leverage,
	}
	if p.AssetType == "" {
		p.AssetType = DefaultAssetType
	}
	if p.Name == "" {
		p.Name = p.Symbol
	}
	if in.EntryDate != nil {
		p.EntryDate = *in.EntryDate
	} else {
		p.EntryDate = s.now().UTC().Truncate(time.Microsecond)
	}

	if err := s.store.CreatePosition(ctx, &p); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Position{}, apperr.NewValidation(msgKontoNotOwned)
		}
		return model.Position{}, apperr.NewInternal(msgCreateFailed, err)
	}

	s.logger.Debugf("position %d (%s) created in konto %d", p.ID, p.Symbol, p.KontoID)
	return p, nil
}

func (s *Service) Update(ctx context.Context, caller auth.Identity, id int64, patch model.PositionPatch) (model.Position, error) {
	if err := s.require(ctx, caller, id, msgUpdateFailed); err != nil {
		return model.Position{}, err
	}
	if patch.Symbol != nil && strings.TrimSpace(*patch.Symbol) == "" {
		return model.Position{}, apperr.NewValidation(msgFieldsRequired)
	}
	if anyNegative(patch.EntryPrice, patch.CurrentPrice, patch.Fees) {
		return model.Position{}, apperr.NewValidation(msgNegativePrice)
	}

	p, err := s.store.UpdatePosition(ctx, id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		return model.Position{}, apperr.NewNotFound(msgNotFound)
	}
	if err != nil {
		return model.Position{}, apperr.NewInternal(msgUpdateFailed, err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if err := s.require(ctx, caller, id, msgDeleteFailed); err != nil {
		return err
	}

	err := s.store.DeletePosition(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NewNotFound(msgNotFound)
	}
	if err != nil {
		return apperr.NewInternal(msgDeleteFailed, err)
	}
	return nil
}

func (s *Service) require(ctx context.Context, caller auth.Identity, id int64, failMsg string) error {
	err := s.resolver.Require(ctx, caller.UserID, model.KindPosition, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ownership.ErrNotOwned):
		return apperr.NewNotFound(msgNotFound)
	default:
		return apperr.NewInternal(failMsg, err)
	}
}

func anyNegative(values ...*decimal.Decimal) bool {
	for _, v := range values {
		if v != nil && v.IsNegative() {
			return true
		}
	}
	return false
}
