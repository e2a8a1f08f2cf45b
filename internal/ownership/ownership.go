// Package ownership decides whether an entity belongs to the calling user by
// resolving its chain Broker → Konto → Position up to the owning user.
package ownership

import (
	"context"
	"errors"
	"fmt"

	"github.com/STTM-NSU/investboard/internal/model"
	"github.com/STTM-NSU/investboard/internal/storage"
)

// ErrNotOwned covers both a missing entity and one owned by another user.
var ErrNotOwned = errors.New("entity not owned by caller")

type Resolver struct {
	owners storage.Owners
}

func NewResolver(owners storage.Owners) *Resolver {
	return &Resolver{owners: owners}
}

// Require returns nil only if (kind, id) exists and resolves to userID. It
// reads the store on every call.
func (r *Resolver) Require(ctx context.Context, userID int64, kind model.Kind, id int64) error {
	if id <= 0 || kind == model.KindUser {
		return ErrNotOwned
	}

	owner, err := r.owners.OwnerOf(ctx, kind, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotOwned
	}
	if err != nil {
		return fmt.Errorf("%w: can't resolve owner of %s %d", err, kind, id)
	}
	if owner != userID {
		return ErrNotOwned
	}
	return nil
}
