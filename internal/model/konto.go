package model

import "time"

// Konto is a portfolio account held at a broker.
type Konto struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	AccountNumber *string   `json:"accountNumber" db:"account_number"`
	Currency      string    `json:"currency" db:"currency"`
	BrokerID      int64     `json:"brokerId" db:"broker_id"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

type KontoDetail struct {
	Konto
	Broker    *Broker    `json:"broker"`
	Positions []Position `json:"positions"`
}

type KontoPatch struct {
	Name          *string `json:"name"`
	AccountNumber *string `json:"accountNumber"`
	Currency      *string `json:"currency"`
}
