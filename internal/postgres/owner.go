package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/STTM-NSU/investboard/internal/model"
)

type link struct {
	table  string
	parent string
}

var _links = map[model.Kind]link{
	model.KindBroker:   {table: "brokers", parent: "user_id"},
	model.KindKonto:    {table: "kontos", parent: "broker_id"},
	model.KindPosition: {table: "positions", parent: "konto_id"},
}

var _ownerQueries = func() map[model.Kind]string {
	queries := make(map[model.Kind]string, len(_links))
	for kind := range _links {
		queries[kind] = ownerQuery(kind)
	}
	return queries
}()

// ownerQuery joins from kind up through its parents and selects the user id
// stored on the broker row. Aliases are t<depth>.
func ownerQuery(kind model.Kind) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT t%d.%s FROM %s t%d", model.KindBroker.Depth(), _links[model.KindBroker].parent,
		_links[kind].table, kind.Depth())
	for k := kind; k.Parent() != model.KindUser; k = k.Parent() {
		p := k.Parent()
		fmt.Fprintf(&b, " JOIN %s t%d ON t%d.id = t%d.%s", _links[p].table, p.Depth(), p.Depth(), k.Depth(), _links[k].parent)
	}
	fmt.Fprintf(&b, " WHERE t%d.id = $1", kind.Depth())
	return b.String()
}

func (s *Store) OwnerOf(ctx context.Context, kind model.Kind, id int64) (int64, error) {
	query, ok := _ownerQueries[kind]
	if !ok {
		return 0, fmt.Errorf("no owner lookup for %s", kind)
	}

	var owner int64
	if err := s.db.GetContext(ctx, &owner, query, id); err != nil {
		return 0, wrap(err, "can't resolve owner of %s %d", kind, id)
	}
	return owner, nil
}
