package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddressRequest represents a persisted address lookup.
// One row per successful lookup; rows are never updated or deleted.
type AddressRequest struct {
	ID         int64           `json:"id" db:"id"`
	Address    string          `json:"address" db:"address"`
	Bandwidth  int64           `json:"bandwidth" db:"bandwidth"`
	Energy     int64           `json:"energy" db:"energy"`
	TrxBalance decimal.Decimal `json:"trxBalance" db:"trx_balance"`
	// RequestedAt is assigned by the database on insert and is the sole
	// ordering key for history listing.
	RequestedAt time.Time `json:"requestedAt" db:"requested_at"`
}

// PageResult represents one page of lookup history, newest first.
type PageResult struct {
	Items []*AddressRequest `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
	Pages int               `json:"pages"`
}
