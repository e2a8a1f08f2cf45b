package broker

import (
	"context"
	"errors"
	"strings"

	"github.com/STTM-NSU/investboard/internal/apperr"
	"github.com/STTM-NSU/investboard/internal/auth"
	"github.com/STTM-NSU/investboard/internal/logger"
	"github.com/STTM-NSU/investboard/internal/model"
	"github.com/STTM-NSU/investboard/internal/ownership"
	"github.com/STTM-NSU/investboard/internal/storage"
)

const (
	msgNameAndTypeRequired = "Name und Typ sind erforderlich."
	msgNotFound            = "Broker nicht gefunden."
	msgLoadFailed          = "Fehler beim Laden des Brokers."
	msgUpdateFailed        = "Fehler beim Aktualisieren des Brokers."
	msgDeleteFailed        = "Fehler beim Löschen des Brokers."
)

type CreateInput struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Notes *string `json:"notes"`
}

type Service struct {
	brokers  storage.Brokers
	resolver *ownership.Resolver
	logger   logger.Logger
}

func NewService(brokers storage.Brokers, resolver *ownership.Resolver, logger logger.Logger) *Service {
	return &Service{
		brokers:  brokers,
		resolver: resolver,
		logger:   logger,
	}
}

// List returns the caller's brokers, newest first.
func (s *Service) List(ctx context.Context, caller auth.Identity) ([]model.Broker, error) {
	brokers, err := s.brokers.ListBrokers(ctx, caller.UserID)
	if err != nil {
		return nil, apperr.NewInternal(apperr.InternalMessage, err)
	}
	return brokers, nil
}

func (s *Service) Get(ctx context.Context, caller auth.Identity, id int64) (model.Broker, error) {
	if err := s.require(ctx, caller, id, msgLoadFailed); err != nil {
		return model.Broker{}, err
	}

	b, err := s.brokers.GetBroker(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return model.Broker{}, apperr.NewNotFound(msgNotFound)
	}
	if err != nil {
		return model.Broker{}, apperr.NewInternal(msgLoadFailed, err)
	}
	return b, nil
}

func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (model.Broker, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Type) == "" {
		return model.Broker{}, apperr.NewValidation(msgNameAndTypeRequired)
	}

	b := model.Broker{
		Name:   in.Name,
		Type:   in.Type,
		Notes:  emptyToNil(in.Notes),
		UserID: caller.UserID,
	}
	if err := s.brokers.CreateBroker(ctx, &b); err != nil {
		return model.Broker{}, apperr.NewInternal(apperr.InternalMessage, err)
	}

	s.logger.Debugf("broker %d created for user %d", b.ID, caller.UserID)
	return b, nil
}

func (s *Service) Update(ctx context.Context, caller auth.Identity, id int64, patch model.BrokerPatch) (model.Broker, error) {
	if err := s.require(ctx, caller, id, msgUpdateFailed); err != nil {
		return model.Broker{}, err
	}
	if (patch.Name != nil && strings.TrimSpace(*patch.Name) == "") ||
		(patch.Type != nil && strings.TrimSpace(*patch.Type) == "") {
		return model.Broker{}, apperr.NewValidation(msgNameAndTypeRequired)
	}

	b, err := s.brokers.UpdateBroker(ctx, id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		return model.Broker{}, apperr.NewNotFound(msgNotFound)
	}
	if err != nil {
		return model.Broker{}, apperr.NewInternal(msgUpdateFailed, err)
	}
	return b, nil
}

// Delete removes the broker together with every konto and position below it.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if err := s.require(ctx, caller, id, msgDeleteFailed); err != nil {
		return err
	}

	err := s.brokers.DeleteBroker(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NewNotFound(msgNotFound)
	}
	if err != nil {
		return apperr.NewInternal(msgDeleteFailed, err)
	}

	s.logger.Infof("broker %d deleted by user %d", id, caller.UserID)
	return nil
}

func (s *Service) require(ctx context.Context, caller auth.Identity, id int64, failMsg string) error {
	err := s.resolver.Require(ctx, caller.UserID, model.KindBroker, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ownership.ErrNotOwned):
		return apperr.NewNotFound(msgNotFound)
	default:
		return apperr.NewInternal(failMsg, err)
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
