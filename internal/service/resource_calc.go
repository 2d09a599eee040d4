package service

import (
	"github.com/shopspring/decimal"

	"github.com/tron-address-info/internal/adapter"
)

// sunDecimals is the decimal scale of the TRX base unit: 1 TRX = 10^6 sun
const sunDecimals = 6

// Metrics holds the derived account metrics
type Metrics struct {
	Bandwidth  int64
	Energy     int64
	TrxBalance decimal.Decimal
}

// ComputeMetrics derives usable bandwidth, energy and TRX balance from raw
// node data. Negative raw arithmetic is clamped to zero: a node reporting
// usage above the limit yields zero, not an error. Missing inputs count
// as zero.
func ComputeMetrics(account *adapter.Account, resource *adapter.AccountResource) Metrics {
	if account == nil {
		account = &adapter.Account{}
	}
	if resource == nil {
		resource = &adapter.AccountResource{}
	}

	bandwidth := resource.FreeNetLimit + resource.NetLimit - resource.FreeNetUsed - resource.NetUsed
	if bandwidth < 0 {
		bandwidth = 0
	}

	energy := resource.EnergyLimit - resource.EnergyUsed
	if energy < 0 {
		energy = 0
	}

	// Shift by the sun scale instead of dividing so the conversion is exact
	// to six decimal places.
	balance := decimal.NewFromInt(account.Balance).Shift(-sunDecimals)

	return Metrics{
		Bandwidth:  bandwidth,
		Energy:     energy,
		TrxBalance: balance,
	}
}
