// Package storage declares the persistence contract shared by the Postgres
// store and the in-memory store.
package storage

import (
	"context"
	"errors"

	"github.com/STTM-NSU/investboard/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type Users interface {
	// CreateUser inserts u and fills in ID and CreatedAt. A taken email
	// yields ErrDuplicate.
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (model.User, error)
}

type Brokers interface {
	ListBrokers(ctx context.Context, userID int64) ([]model.Broker, error)
	GetBroker(ctx context.Context, id int64) (model.Broker, error)
	CreateBroker(ctx context.Context, b *model.Broker) error
	UpdateBroker(ctx context.Context, id int64, p model.BrokerPatch) (model.Broker, error)
	// DeleteBroker removes the broker with its kontos and their positions.
	DeleteBroker(ctx context.Context, id int64) error
}

type Kontos interface {
	ListKontos(ctx context.Context, userID int64) ([]model.Konto, error)
	GetKonto(ctx context.Context, id int64) (model.Konto, error)
	CreateKonto(ctx context.Context, k *model.Konto) error
	UpdateKonto(ctx context.Context, id int64, p model.KontoPatch) (model.Konto, error)
	// DeleteKonto removes the konto together with its positions.
	DeleteKonto(ctx context.Context, id int64) error
}

type Positions interface {
	ListPositions(ctx context.Context, userID int64) ([]model.Position, error)
	ListKontoPositions(ctx context.Context, kontoID int64) ([]model.Position, error)
	GetPosition(ctx context.Context, id int64) (model.Position, error)
	CreatePosition(ctx context.Context, p *model.Position) error
	UpdatePosition(ctx context.Context, id int64, p model.PositionPatch) (model.Position, error)
	DeletePosition(ctx context.Context, id int64) error
}

type Owners interface {
	// OwnerOf follows the parent links of the entity (kind, id) up to its
	// user and returns that user's id.
	OwnerOf(ctx context.Context, kind model.Kind, id int64) (int64, error)
}

type Store interface {
	Users
	Brokers
	Kontos
	Positions
	Owners

	Ping(ctx context.Context) error
}
