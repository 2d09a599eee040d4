package service

import (
	"context"
	"fmt"

	"github.com/tron-address-info/internal/models"
	"github.com/tron-address-info/internal/types"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxPageSize = 100
)

// HistoryService serves paginated lookup history
type HistoryService struct {
	store RequestStore
}

func NewHistoryService(store RequestStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns one page of lookup records, newest first. The total and page
// count always reflect the full table, not the returned slice.
func (s *HistoryService) List(ctx context.Context, page, size int) (*models.PageResult, error) {
	if page < 1 {
		return nil, invalidParameter("page", fmt.Sprintf("must be >= 1, got %d", page))
	}
	if size < 1 || size > MaxPageSize {
		return nil, invalidParameter("size", fmt.Sprintf("must be between 1 and %d, got %d", MaxPageSize, size))
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	result := &models.PageResult{
		Items: []*models.AddressRequest{},
		Total: total,
		Page:  page,
		Size:  size,
	}
	if total > 0 {
		result.Pages = int((total + int64(size) - 1) / int64(size))
	}

	// Comparing against the page count keeps the offset arithmetic in range;
	// (page-1)*size would overflow for absurd but syntactically valid pages.
	if page > result.Pages {
		return result, nil
	}

	offset := (page - 1) * size

	items, err := s.store.List(ctx, size, offset)
	if err != nil {
		return nil, err
	}
	if items != nil {
		result.Items = items
	}

	return result, nil
}

func invalidParameter(name, reason string) error {
	return &types.ServiceError{
		Code:    types.CodeInvalidParameter,
		Message: fmt.Sprintf("Invalid %s parameter: %s", name, reason),
		Details: map[string]interface{}{
			"parameter": name,
		},
	}
}
