// Package portfolio manages Kontos, the accounts a user keeps at a broker.
package portfolio

import (
	"context"
	"errors"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/STTM-NSU/investboard/internal/apperr"
	"github.com/STTM-NSU/investboard/internal/auth"
	"github.com/STTM-NSU/investboard/internal/logger"
	"github.com/STTM-NSU/investboard/internal/model"
	"github.com/STTM-NSU/investboard/internal/ownership"
	"github.com/STTM-NSU/investboard/internal/storage"
)

const _defaultCurrency = money.EUR

const (
	msgBrokerNotOwned  = "Broker nicht gefunden oder nicht zugeordnet."
	msgNameRequired    = "Name ist erforderlich."
	msgInvalidCurrency = "Ungültige Währung."
	msgNotFound        = "Portfolio nicht gefunden."
	msgListFailed      = "Fehler beim Laden der Portfolios."
	msgLoadFailed      = "Fehler beim Laden des Portfolios."
	msgCreateFailed    = "Fehler beim Erstellen des Portfolios."
	msgUpdateFailed    = "Fehler beim Aktualisieren des Portfolios."
	msgDeleteFailed    = "Fehler beim Löschen des Portfolios."
)

type Store interface {
	storage.Kontos
	storage.Brokers
	storage.Positions
}

type CreateInput struct {
	Name          string  `json:"name"`
	AccountNumber *string `json:"accountNumber"`
	Currency      string  `json:"currency"`
	BrokerID      int64   `json:"brokerId"`
}

type Service struct {
	store    Store
	resolver *ownership.Resolver
	logger   logger.Logger
}

func NewService(store Store, resolver *ownership.Resolver, logger logger.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		logger:   logger,
	}
}

func (s *Service) List(ctx context.Context, caller auth.Identity) ([]model.KontoDetail, error) {
	kontos, err := s.store.ListKontos(ctx, caller.UserID)
	if err != nil {
		return nil, apperr.NewInternal(msgListFailed, err)
	}
	if len(kontos) == 0 {
		return []model.KontoDetail{}, nil
	}

	brokers, err := s.store.ListBrokers(ctx, caller.UserID)
	if err != nil {
		return nil, apperr.NewInternal(msgListFailed, err)
	}
	positions, err := s.store.ListPositions(ctx, caller.UserID)
	if err != nil {
		return nil, apperr.NewInternal(msgListFailed, err)
	}

	return assemble(kontos, brokers, positions), nil
}

func (s *Service) Get(ctx context.Context, caller auth.Identity, id int64) (model.KontoDetail, error) {
	if err := s.require(ctx, caller, id, msgLoadFailed); err != nil {
		return model.KontoDetail{}, err
	}

	k, err := s.store.GetKonto(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return model.KontoDetail{}, apperr.NewNotFound(msgNotFound)
	}
	if err != nil {
		return model.KontoDetail{}, apperr.NewInternal(msgLoadFailed, err)
	}

	b, err := s.store.GetBroker(ctx, k.BrokerID)
	if err != nil {
		return model.KontoDetail{}, apperr.NewInternal(msgLoadFailed, err)
	}
	positions, err := s.store.ListKontoPositions(ctx, k.ID)
	if err != nil {
		return model.KontoDetail{}, apperr.NewInternal(msgLoadFailed, err)
	}

	return model.KontoDetail{Konto: k, Broker: &b, Positions: positions}, nil
}

// Create opens a konto under one of the caller's brokers. A broker that is
// missing or belongs to someone else is a validation failure.
func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (model.Konto, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Konto{}, apperr.NewValidation(msgNameRequired)
	}
	currency, ok := normalizeCurrency(in.Currency)
	if !ok {
		return model.Konto{}, apperr.NewValidation(msgInvalidCurrency)
	}

	err := s.resolver.Require(ctx, caller.UserID, model.KindBroker, in.BrokerID)
	if errors.Is(err, ownership.ErrNotOwned) {
		return model.Konto{}, apperr.NewValidation(msgBrokerNotOwned)
	}
	if err != nil {
		return model.Konto{}, apperr.NewInternal(msgCreateFailed, err)
	}

	k := model.Konto{
		Name:          in.Name,
		AccountNumber: in.AccountNumber,
		Currency:      currency,
		BrokerID:      in.BrokerID,
	}
	if err := s.store.CreateKonto(ctx, &k); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// broker deleted between the ownership check and the insert
			return model.Konto{}, apperr.NewValidation(msgBrokerNotOwned)
		}
		return model.Konto{}, apperr.NewInternal(msgCreateFailed, err)
	}

	s.logger.Debugf("konto %d created under broker %d", k.ID, k.BrokerID)
	return k, nil
}

func (s *Service) Update(ctx context.Context, caller auth.Identity, id int64, patch model.KontoPatch) (model.Konto, error) {
	if err := s.require(ctx, caller, id, msgUpdateFailed); err != nil {
		return model.Konto{}, err
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return model.Konto{}, apperr.NewValidation(msgNameRequired)
	}
	if patch.Currency != nil {
		currency, ok := normalizeCurrency(*patch.Currency)
		if !ok || *patch.Currency == "" {
			return model.Konto{}, apperr.NewValidation(msgInvalidCurrency)
		}
		patch.Currency = &currency
	}

	k, err := s.store.UpdateKonto(ctx, id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		return model.Konto{}, apperr.NewNotFound(msgNotFound)
	}
	if err != nil {
		return model.Konto{}, apperr.NewInternal(msgUpdateFailed, err)
	}
	return k, nil
}

func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if err := s.require(ctx, caller, id, msgDeleteFailed); err != nil {
		return err
	}

	err := s.store.DeleteKonto(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NewNotFound(msgNotFound)
	}
	if err != nil {
		return apperr.NewInternal(msgDeleteFailed, err)
	}

	s.logger.Debugf("konto %d deleted by user %d", id, caller.UserID)
	return nil
}

func (s *Service) require(ctx context.Context, caller auth.Identity, id int64, failMsg string) error {
	err := s.resolver.Require(ctx, caller.UserID, model.KindKonto, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ownership.ErrNotOwned):
		return apperr.NewNotFound(msgNotFound)
	default:
		return apperr.NewInternal(failMsg, err)
	}
}

// normalizeCurrency upper-cases an ISO 4217 code; empty means EUR.
func normalizeCurrency(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return _defaultCurrency, true
	}
	if money.GetCurrency(code) == nil {
		return "", false
	}
	return code, true
}
