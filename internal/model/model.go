package model

import "github.com/shopspring/decimal"

func init() {
	// quantities and prices travel as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}
