package portfolio

import "github.com/STTM-NSU/investboard/internal/model"

// assemble attaches each konto's broker and positions, keeping the konto order.
func assemble(kontos []model.Konto, brokers []model.Broker, positions []model.Position) []model.KontoDetail {
	brokersByID := make(map[int64]model.Broker, len(brokers))
	for _, b := range brokers {
		brokersByID[b.ID] = b
	}

	positionsByKonto := make(map[int64][]model.Position, len(kontos))
	for _, p := range positions {
		positionsByKonto[p.KontoID] = append(positionsByKonto[p.KontoID], p)
	}

	out := make([]model.KontoDetail, 0, len(kontos))
	for _, k := range kontos {
		d := model.KontoDetail{Konto: k, Positions: positionsByKonto[k.ID]}
		if d.Positions == nil {
			d.Positions = []model.Position{}
		}
		if b, ok := brokersByID[k.BrokerID]; ok {
			d.Broker = &b
		}
		out = append(out, d)
	}
	return out
}
