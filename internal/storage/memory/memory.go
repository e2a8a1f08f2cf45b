// Package memory is an in-process implementation of storage.Store. It backs
// the tests and the "-store=memory" development mode.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/STTM-NSU/investboard/internal/model"
	"github.com/STTM-NSU/investboard/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	lastID    map[model.Kind]int64
	users     map[int64]model.User
	brokers   map[int64]model.Broker
	kontos    map[int64]model.Konto
	positions map[int64]model.Position

	now func() time.Time
}

func New() *Store {
	return &Store{
		lastID:    make(map[model.Kind]int64),
		users:     make(map[int64]model.User),
		brokers:   make(map[int64]model.Broker),
		kontos:    make(map[int64]model.Konto),
		positions: make(map[int64]model.Position),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) nextID(kind model.Kind) int64 {
	s.lastID[kind]++
	return s.lastID[kind]
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

/* ---- users ---- */

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("%w: email %s", storage.ErrDuplicate, u.Email)
		}
	}

	u.ID = s.nextID(model.KindUser)
	u.CreatedAt = s.now()
	u.Name = clone(u.Name)
	s.users[u.ID] = *u
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, storage.ErrNotFound
}

/* ---- brokers ---- */

func (s *Store) ListBrokers(_ context.Context, userID int64) ([]model.Broker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Broker, 0)
	for _, b := range s.brokers {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b model.Broker) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) GetBroker(_ context.Context, id int64) (model.Broker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.brokers[id]
	if !ok {
		return model.Broker{}, storage.ErrNotFound
	}
	return b, nil
}

func (s *Store) CreateBroker(_ context.Context, b *model.Broker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[b.UserID]; !ok {
		return fmt.Errorf("%w: user %d", storage.ErrNotFound, b.UserID)
	}
	b.ID = s.nextID(model.KindBroker)
	b.CreatedAt = s.now()
	b.Notes = clone(b.Notes)
	s.brokers[b.ID] = *b
	return nil
}

func (s *Store) UpdateBroker(_ context.Context, id int64, p model.BrokerPatch) (model.Broker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.brokers[id]
	if !ok {
		return model.Broker{}, storage.ErrNotFound
	}
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Type != nil {
		b.Type = *p.Type
	}
	if p.Notes != nil {
		b.Notes = clone(p.Notes)
	}
	s.brokers[id] = b
	return b, nil
}

func (s *Store) DeleteBroker(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brokers[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.brokers, id)
	for kid, k := range s.kontos {
		if k.BrokerID == id {
			s.deleteKonto(kid)
		}
	}
	return nil
}

/* ---- kontos ---- */

func (s *Store) ListKontos(_ context.Context, userID int64) ([]model.Konto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Konto, 0)
	for _, k := range s.kontos {
		if s.brokers[k.BrokerID].UserID == userID {
			out = append(out, k)
		}
	}
	slices.SortFunc(out, func(a, b model.Konto) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) GetKonto(_ context.Context, id int64) (model.Konto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.kontos[id]
	if !ok {
		return model.Konto{}, storage.ErrNotFound
	}
	return k, nil
}

func (s *Store) CreateKonto(_ context.Context, k *model.Konto) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brokers[k.BrokerID]; !ok {
		return fmt.Errorf("%w: broker %d", storage.ErrNotFound, k.BrokerID)
	}
	k.ID = s.nextID(model.KindKonto)
	k.CreatedAt = s.now()
	k.AccountNumber = clone(k.AccountNumber)
	s.kontos[k.ID] = *k
	return nil
}

func (s *Store) UpdateKonto(_ context.Context, id int64, p model.KontoPatch) (model.Konto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := s.kontos[id]
	if !ok {
		return model.Konto{}, storage.ErrNotFound
	}
	if p.Name != nil {
		k.Name = *p.Name
	}
	if p.AccountNumber != nil {
		k.AccountNumber = clone(p.AccountNumber)
	}
	if p.Currency != nil {
		k.Currency = *p.Currency
	}
	s.kontos[id] = k
	return k, nil
}

func (s *Store) DeleteKonto(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.kontos[id]; !ok {
		return storage.ErrNotFound
	}
	s.deleteKonto(id)
	return nil
}

func (s *Store) deleteKonto(id int64) {
	delete(s.kontos, id)
	for pid, p := range s.positions {
		if p.KontoID == id {
			delete(s.positions, pid)
		}
	}
}

/* ---- positions ---- */

func (s *Store) ListPositions(_ context.Context, userID int64) ([]model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Position, 0)
	for _, p := range s.positions {
		if owner, err := s.ownerOf(model.KindPosition, p.ID); err == nil && owner == userID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b model.Position) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) ListKontoPositions(_ context.Context, kontoID int64) ([]model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Position, 0)
	for _, p := range s.positions {
		if p.KontoID == kontoID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b model.Position) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) GetPosition(_ context.Context, id int64) (model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.positions[id]
	if !ok {
		return model.Position{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) CreatePosition(_ context.Context, p *model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.kontos[p.KontoID]; !ok {
		return fmt.Errorf("%w: konto %d", storage.ErrNotFound, p.KontoID)
	}
	p.ID = s.nextID(model.KindPosition)
	p.CreatedAt = s.now()
	p.CurrentPrice = clone(p.CurrentPrice)
	p.Fees = clone(p.Fees)
	p.Leverage = clone(p.Leverage)
	s.positions[p.ID] = *p
	return nil
}

func (s *Store) UpdatePosition(_ context.Context, id int64, patch model.PositionPatch) (model.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.positions[id]
	if !ok {
		return model.Position{}, storage.ErrNotFound
	}
	if patch.AssetType != nil {
		p.AssetType = *patch.AssetType
	}
	if patch.Symbol != nil {
		p.Symbol = *patch.Symbol
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	if patch.EntryPrice != nil {
		p.EntryPrice = *patch.EntryPrice
	}
	if patch.CurrentPrice != nil {
		p.CurrentPrice = clone(patch.CurrentPrice)
	}
	if patch.EntryDate != nil {
		p.EntryDate = *patch.EntryDate
	}
	if patch.Fees != nil {
		p.Fees = clone(patch.Fees)
	}
	if patch.Leverage != nil {
		p.Leverage = clone(patch.Leverage)
	}
	s.positions[id] = p
	return p, nil
}

func (s *Store) DeletePosition(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.positions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.positions, id)
	return nil
}

/* ---- ownership ---- */

func (s *Store) OwnerOf(_ context.Context, kind model.Kind, id int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownerOf(kind, id)
}

// ownerOf walks kind.Depth() parent links; the caller holds s.mu.
func (s *Store) ownerOf(kind model.Kind, id int64) (int64, error) {
	for k := kind; k != model.KindUser; k = k.Parent() {
		parent, ok := s.parentOf(k, id)
		if !ok {
			return 0, fmt.Errorf("%w: %s %d", storage.ErrNotFound, k, id)
		}
		id = parent
	}
	if _, ok := s.users[id]; !ok {
		return 0, fmt.Errorf("%w: user %d", storage.ErrNotFound, id)
	}
	return id, nil
}

func (s *Store) parentOf(kind model.Kind, id int64) (int64, bool) {
	switch kind {
	case model.KindBroker:
		b, ok := s.brokers[id]
		return b.UserID, ok
	case model.KindKonto:
		k, ok := s.kontos[id]
		return k.BrokerID, ok
	case model.KindPosition:
		p, ok := s.positions[id]
		return p.KontoID, ok
	default:
		return 0, false
	}
}
