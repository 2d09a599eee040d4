package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tron-address-info/internal/adapter"
	"github.com/tron-address-info/internal/models"
	"github.com/tron-address-info/internal/types"
)

const testAddress = "TJRabPrwbZy45sbavfcjinPJC18kjpRTv8"

// Mock node client for testing
type mockNodeClient struct {
	account      *adapter.Account
	resource     *adapter.AccountResource
	accountErr   error
	resourceErr  error
	accountCalls int
}

func (m *mockNodeClient) GetAccount(ctx context.Context, address string) (*adapter.Account, error) {
	m.accountCalls++
	if m.accountErr != nil {
		return nil, m.accountErr
	}
	return m.account, nil
}

func (m *mockNodeClient) GetAccountResource(ctx context.Context, address string) (*adapter.AccountResource, error) {
	if m.resourceErr != nil {
		return nil, m.resourceErr
	}
	return m.resource, nil
}

// Mock request store for testing
type mockRequestStore struct {
	records   []*models.AddressRequest
	insertErr error
	countErr  error
	listErr   error
	listCalls int
	nextID    int64
}

func (m *mockRequestStore) Insert(ctx context.Context, address string, bandwidth, energy int64, trxBalance decimal.Decimal) (*models.AddressRequest, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	m.nextID++
	record := &models.AddressRequest{
		ID:          m.nextID,
		Address:     address,
		Bandwidth:   bandwidth,
		Energy:      energy,
		TrxBalance:  trxBalance,
		RequestedAt: time.Now(),
	}
	m.records = append(m.records, record)
	return record, nil
}

func (m *mockRequestStore) Count(ctx context.Context) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.records)), nil
}

func (m *mockRequestStore) List(ctx context.Context, limit, offset int) ([]*models.AddressRequest, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	// Newest first, same ordering the repository query produces
	reversed := make([]*models.AddressRequest, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		reversed = append(reversed, m.records[i])
	}
	if offset >= len(reversed) {
		return []*models.AddressRequest{}, nil
	}
	reversed = reversed[offset:]
	if limit < len(reversed) {
		reversed = reversed[:limit]
	}
	return reversed, nil
}

// Mock snapshot cache for testing
type mockSnapshotCache struct {
	snapshots map[string]*adapter.AccountSnapshot
	getErr    error
	setErr    error
	setCalls  int
}

func newMockSnapshotCache() *mockSnapshotCache {
	return &mockSnapshotCache{snapshots: make(map[string]*adapter.AccountSnapshot)}
}

func (m *mockSnapshotCache) GetAccountSnapshot(ctx context.Context, address string) (*adapter.AccountSnapshot, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	snapshot, found := m.snapshots[address]
	return snapshot, found, nil
}

func (m *mockSnapshotCache) SetAccountSnapshot(ctx context.Context, address string, snapshot *adapter.AccountSnapshot) error {
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.snapshots[address] = snapshot
	return nil
}

func testNodeClient() *mockNodeClient {
	return &mockNodeClient{
		account: &adapter.Account{Address: testAddress, Balance: 150500000},
		resource: &adapter.AccountResource{
			FreeNetLimit: 1000,
			NetLimit:     500,
			FreeNetUsed:  200,
			EnergyLimit:  3000,
			EnergyUsed:   500,
		},
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"valid mainnet address", testAddress, false},
		{"empty", "", true},
		{"too short", "TJRabPrw", true},
		{"too long", testAddress + "XX", true},
		{"wrong prefix", "AJRabPrwbZy45sbavfcjinPJC18kjpRTv8", true},
		{"correct length lowercase prefix", "tJRabPrwbZy45sbavfcjinPJC18kjpRTv8", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.address)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var serviceErr *types.ServiceError
				if !errors.As(err, &serviceErr) {
					t.Fatalf("expected ServiceError, got %T", err)
				}
				if serviceErr.Code != types.CodeInvalidAddress {
					t.Errorf("Code = %s, want %s", serviceErr.Code, types.CodeInvalidAddress)
				}
				if serviceErr.Message != "Invalid address format" {
					t.Errorf("Message = %q, want %q", serviceErr.Message, "Invalid address format")
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	client := testNodeClient()
	store := &mockRequestStore{}
	svc := NewTronService(client, store, nil)

	record, err := svc.Lookup(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if record.Address != testAddress {
		t.Errorf("Address = %s, want %s", record.Address, testAddress)
	}
	if record.Bandwidth != 1300 {
		t.Errorf("Bandwidth = %d, want 1300", record.Bandwidth)
	}
	if record.Energy != 2500 {
		t.Errorf("Energy = %d, want 2500", record.Energy)
	}
	if !record.TrxBalance.Equal(decimal.RequireFromString("150.5")) {
		t.Errorf("TrxBalance = %s, want 150.5", record.TrxBalance)
	}
	if len(store.records) != 1 {
		t.Errorf("expected exactly 1 persisted record, got %d", len(store.records))
	}
}

func TestLookup_InvalidAddressSkipsNodeAndStore(t *testing.T) {
	client := testNodeClient()
	store := &mockRequestStore{}
	svc := NewTronService(client, store, nil)

	_, err := svc.Lookup(context.Background(), "not-a-tron-address")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var serviceErr *types.ServiceError
	if !errors.As(err, &serviceErr) || serviceErr.Code != types.CodeInvalidAddress {
		t.Errorf("expected %s error, got %v", types.CodeInvalidAddress, err)
	}
	if client.accountCalls != 0 {
		t.Errorf("node queried %d times for invalid address", client.accountCalls)
	}
	if len(store.records) != 0 {
		t.Errorf("record persisted for invalid address")
	}
}

func TestLookup_NodeFailureSkipsInsert(t *testing.T) {
	queryErr := &types.ServiceError{Code: types.CodeTronQueryFailed, Message: "node unreachable"}

	tests := []struct {
		name   string
		client *mockNodeClient
	}{
		{"account call fails", &mockNodeClient{accountErr: queryErr, resource: &adapter.AccountResource{}}},
		{"resource call fails", &mockNodeClient{account: &adapter.Account{}, resourceErr: queryErr}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockRequestStore{}
			svc := NewTronService(tt.client, store, nil)

			_, err := svc.Lookup(context.Background(), testAddress)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var serviceErr *types.ServiceError
			if !errors.As(err, &serviceErr) || serviceErr.Code != types.CodeTronQueryFailed {
				t.Errorf("expected %s error, got %v", types.CodeTronQueryFailed, err)
			}
			if len(store.records) != 0 {
				t.Errorf("record persisted despite node failure")
			}
		})
	}
}

func TestLookup_StoreFailureSurfaces(t *testing.T) {
	store := &mockRequestStore{
		insertErr: &types.ServiceError{Code: types.CodeDatabaseError, Message: "insert failed"},
	}
	svc := NewTronService(testNodeClient(), store, nil)

	_, err := svc.Lookup(context.Background(), testAddress)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var serviceErr *types.ServiceError
	if !errors.As(err, &serviceErr) || serviceErr.Code != types.CodeDatabaseError {
		t.Errorf("expected %s error, got %v", types.CodeDatabaseError, err)
	}
}

func TestLookup_CachedSnapshotSkipsNode(t *testing.T) {
	client := testNodeClient()
	store := &mockRequestStore{}
	cache := newMockSnapshotCache()
	svc := NewTronService(client, store, cache)

	// First lookup populates the cache
	if _, err := svc.Lookup(context.Background(), testAddress); err != nil {
		t.Fatalf("first Lookup failed: %v", err)
	}
	if client.accountCalls != 1 {
		t.Fatalf("accountCalls = %d after first lookup, want 1", client.accountCalls)
	}

	// Second lookup must be served from the cache but still persist
	record, err := svc.Lookup(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("second Lookup failed: %v", err)
	}
	if client.accountCalls != 1 {
		t.Errorf("accountCalls = %d after cached lookup, want 1", client.accountCalls)
	}
	if record.Bandwidth != 1300 {
		t.Errorf("Bandwidth = %d, want 1300", record.Bandwidth)
	}
	if len(store.records) != 2 {
		t.Errorf("expected 2 persisted records, got %d", len(store.records))
	}
}

func TestLookup_CacheErrorsAreNotFatal(t *testing.T) {
	client := testNodeClient()
	store := &mockRequestStore{}
	cache := newMockSnapshotCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	svc := NewTronService(client, store, cache)

	record, err := svc.Lookup(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("Lookup failed despite cache being optional: %v", err)
	}
	if record.Bandwidth != 1300 {
		t.Errorf("Bandwidth = %d, want 1300", record.Bandwidth)
	}
	if client.accountCalls != 1 {
		t.Errorf("accountCalls = %d, want 1", client.accountCalls)
	}
}
