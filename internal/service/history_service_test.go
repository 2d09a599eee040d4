package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	"github.com/tron-address-info/internal/models"
	"github.com/tron-address-info/internal/types"
)

func storeWithRecords(n int) *mockRequestStore {
	store := &mockRequestStore{}
	for i := 0; i < n; i++ {
		store.nextID++
		store.records = append(store.records, &models.AddressRequest{
			ID:          store.nextID,
			Address:     testAddress,
			Bandwidth:   int64(i),
			Energy:      int64(i * 2),
			TrxBalance:  decimal.NewFromInt(int64(i)),
			RequestedAt: time.Now().Add(time.Duration(i) * time.Second),
		})
	}
	return store
}

func TestHistoryList(t *testing.T) {
	tests := []struct {
		name      string
		records   int
		page      int
		size      int
		wantItems int
		wantTotal int64
		wantPages int
	}{
		{"first page of fifteen", 15, 1, 10, 10, 15, 2},
		{"last partial page", 15, 2, 10, 5, 15, 2},
		{"partial tail with small size", 5, 2, 3, 2, 5, 2},
		{"page past the end", 5, 3, 10, 0, 5, 1},
		{"exact multiple", 20, 2, 10, 10, 20, 2},
		{"empty table", 0, 1, 10, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewHistoryService(storeWithRecords(tt.records))

			result, err := svc.List(context.Background(), tt.page, tt.size)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}

			if len(result.Items) != tt.wantItems {
				t.Errorf("len(Items) = %d, want %d", len(result.Items), tt.wantItems)
			}
			if result.Items == nil {
				t.Error("Items is nil, want empty slice")
			}
			if result.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", result.Total, tt.wantTotal)
			}
			if result.Pages != tt.wantPages {
				t.Errorf("Pages = %d, want %d", result.Pages, tt.wantPages)
			}
			if result.Page != tt.page || result.Size != tt.size {
				t.Errorf("echoed page/size = %d/%d, want %d/%d", result.Page, result.Size, tt.page, tt.size)
			}
		})
	}
}

func TestHistoryList_HugePageNumber(t *testing.T) {
	// Pages far past the end must come back empty without the offset
	// arithmetic wrapping around and reaching the store.
	store := storeWithRecords(3)
	svc := NewHistoryService(store)

	result, err := svc.List(context.Background(), math.MaxInt/64, 100)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(result.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0", len(result.Items))
	}
	if result.Items == nil {
		t.Error("Items is nil, want empty slice")
	}
	if result.Total != 3 || result.Pages != 1 {
		t.Errorf("Total/Pages = %d/%d, want 3/1", result.Total, result.Pages)
	}
	if store.listCalls != 0 {
		t.Errorf("store queried %d times for an out-of-range page", store.listCalls)
	}
}

func TestHistoryList_NewestFirst(t *testing.T) {
	svc := NewHistoryService(storeWithRecords(5))

	result, err := svc.List(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	for i := 1; i < len(result.Items); i++ {
		if result.Items[i].ID > result.Items[i-1].ID {
			t.Fatalf("items out of order at %d: id %d after %d", i, result.Items[i].ID, result.Items[i-1].ID)
		}
	}
}

func TestHistoryList_InvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		page int
		size int
	}{
		{"zero page", 0, 10},
		{"negative page", -1, 10},
		{"zero size", 1, 0},
		{"negative size", 1, -5},
		{"size over limit", 1, 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewHistoryService(storeWithRecords(3))

			_, err := svc.List(context.Background(), tt.page, tt.size)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var serviceErr *types.ServiceError
			if !errors.As(err, &serviceErr) || serviceErr.Code != types.CodeInvalidParameter {
				t.Errorf("expected %s error, got %v", types.CodeInvalidParameter, err)
			}
		})
	}
}

func TestHistoryList_StoreErrors(t *testing.T) {
	dbErr := &types.ServiceError{Code: types.CodeDatabaseError, Message: "query failed"}

	t.Run("count fails", func(t *testing.T) {
		store := storeWithRecords(3)
		store.countErr = dbErr
		svc := NewHistoryService(store)

		if _, err := svc.List(context.Background(), 1, 10); !errors.Is(err, dbErr) {
			t.Errorf("expected count error to surface, got %v", err)
		}
	})

	t.Run("list fails", func(t *testing.T) {
		store := storeWithRecords(3)
		store.listErr = dbErr
		svc := NewHistoryService(store)

		if _, err := svc.List(context.Background(), 1, 10); !errors.Is(err, dbErr) {
			t.Errorf("expected list error to surface, got %v", err)
		}
	})
}

func TestHistoryList_PaginationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("page count covers every record exactly once", prop.ForAll(
		func(records, size int) bool {
			svc := NewHistoryService(storeWithRecords(records))
			ctx := context.Background()

			first, err := svc.List(ctx, 1, size)
			if err != nil {
				return false
			}
			if records == 0 {
				return first.Pages == 0 && len(first.Items) == 0
			}

			seen := make(map[int64]bool)
			for page := 1; page <= first.Pages; page++ {
				result, err := svc.List(ctx, page, size)
				if err != nil {
					return false
				}
				for _, item := range result.Items {
					if seen[item.ID] {
						return false
					}
					seen[item.ID] = true
				}
			}
			return len(seen) == records
		},
		gen.IntRange(0, 60),
		gen.IntRange(1, 25),
	))

	properties.Property("pages is the ceiling of total over size", prop.ForAll(
		func(records, size int) bool {
			svc := NewHistoryService(storeWithRecords(records))

			result, err := svc.List(context.Background(), 1, size)
			if err != nil {
				return false
			}
			want := 0
			if records > 0 {
				want = (records + size - 1) / size
			}
			return result.Pages == want
		},
		gen.IntRange(0, 60),
		gen.IntRange(1, 25),
	))

	properties.TestingRun(t)
}
