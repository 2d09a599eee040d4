package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tron-address-info/internal/adapter"
	"github.com/tron-address-info/internal/logging"
	"github.com/tron-address-info/internal/models"
	"github.com/tron-address-info/internal/types"
)

// TRON base58check addresses are 34 characters and start with 'T'
const tronAddressLength = 34

// TronNodeClient defines the ledger node operations the service depends on
type TronNodeClient interface {
	GetAccount(ctx context.Context, address string) (*adapter.Account, error)
	GetAccountResource(ctx context.Context, address string) (*adapter.AccountResource, error)
}

// RequestStore defines the persistence operations the service depends on
type RequestStore interface {
	Insert(ctx context.Context, address string, bandwidth, energy int64, trxBalance decimal.Decimal) (*models.AddressRequest, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*models.AddressRequest, error)
}

// SnapshotCache defines the optional ledger-response cache
type SnapshotCache interface {
	GetAccountSnapshot(ctx context.Context, address string) (*adapter.AccountSnapshot, bool, error)
	SetAccountSnapshot(ctx context.Context, address string, snapshot *adapter.AccountSnapshot) error
}

// TronService handles address lookups against the TRON node
type TronService struct {
	client TronNodeClient
	store  RequestStore
	cache  SnapshotCache
}

// NewTronService creates a new TRON lookup service. The cache may be nil,
// in which case every lookup hits the node.
func NewTronService(client TronNodeClient, store RequestStore, cache SnapshotCache) *TronService {
	return &TronService{
		client: client,
		store:  store,
		cache:  cache,
	}
}

// ValidateAddress checks the syntactic TRON address format: non-empty,
// exactly 34 characters, leading 'T'. Checksum and on-chain existence are
// the node's concern, not ours.
func ValidateAddress(address string) error {
	if address == "" || len(address) != tronAddressLength || address[0] != 'T' {
		return &types.ServiceError{
			Code:    types.CodeInvalidAddress,
			Message: "Invalid address format",
			Details: map[string]interface{}{
				"address": address,
			},
		}
	}
	return nil
}

// Lookup validates the address, fetches account and resource data from the
// node, derives the metrics and persists exactly one record. Nothing is
// persisted on any failure path.
func (s *TronService) Lookup(ctx context.Context, address string) (*models.AddressRequest, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	snapshot, err := s.fetchSnapshot(ctx, address)
	if err != nil {
		return nil, err
	}

	metrics := ComputeMetrics(snapshot.Account, snapshot.Resource)

	record, err := s.store.Insert(ctx, address, metrics.Bandwidth, metrics.Energy, metrics.TrxBalance)
	if err != nil {
		return nil, err
	}

	return record, nil
}

// fetchSnapshot returns the raw node data for an address, consulting the
// cache first. The two node calls have no ordering dependency and run
// concurrently; both must complete before the snapshot is usable.
func (s *TronService) fetchSnapshot(ctx context.Context, address string) (*adapter.AccountSnapshot, error) {
	logger := logging.FromContext(ctx)

	if s.cache != nil {
		cached, found, err := s.cache.GetAccountSnapshot(ctx, address)
		if err != nil {
			// Cache trouble must not fail the lookup
			logger.WithError(err).Warn("Snapshot cache read failed")
		} else if found {
			return cached, nil
		}
	}

	var (
		wg       sync.WaitGroup
		account  *adapter.Account
		acctErr  error
		resource *adapter.AccountResource
		resErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		account, acctErr = s.client.GetAccount(ctx, address)
	}()
	go func() {
		defer wg.Done()
		resource, resErr = s.client.GetAccountResource(ctx, address)
	}()
	wg.Wait()

	if acctErr != nil {
		return nil, acctErr
	}
	if resErr != nil {
		return nil, resErr
	}

	snapshot := &adapter.AccountSnapshot{Account: account, Resource: resource}

	if s.cache != nil {
		if err := s.cache.SetAccountSnapshot(ctx, address, snapshot); err != nil {
			logger.WithError(err).Warn("Snapshot cache write failed")
		}
	}

	return snapshot, nil
}
