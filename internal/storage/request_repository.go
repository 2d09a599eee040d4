package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tron-address-info/internal/models"
	"github.com/tron-address-info/internal/types"
)

// RequestRepository handles persistence of address lookups
type RequestRepository struct {
	db *PostgresDB
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *PostgresDB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Insert persists one lookup and returns the stored record. The id and
// requested_at are assigned by the database, so the timestamp always reflects
// server-side creation time.
func (r *RequestRepository) Insert(ctx context.Context, address string, bandwidth, energy int64, trxBalance decimal.Decimal) (*models.AddressRequest, error) {
	query := `
		INSERT INTO tron_address_requests (address, bandwidth, energy, trx_balance)
		VALUES ($1, $2, $3, $4::numeric)
		RETURNING id, requested_at
	`

	record := &models.AddressRequest{
		Address:    address,
		Bandwidth:  bandwidth,
		Energy:     energy,
		TrxBalance: trxBalance,
	}

	err := r.db.Pool().QueryRow(ctx, query,
		address,
		bandwidth,
		energy,
		trxBalance.String(),
	).Scan(&record.ID, &record.RequestedAt)

	if err != nil {
		return nil, storageError("failed to insert address request", err)
	}
	return record, nil
}

// Count returns the total number of stored lookups
func (r *RequestRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	query := `SELECT COUNT(*) FROM tron_address_requests`

	if err := r.db.Pool().QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, storageError("failed to count address requests", err)
	}
	return total, nil
}

// List retrieves lookups ordered newest first with offset/limit.
// Identical timestamps are broken by id descending so page boundaries
// stay stable.
func (r *RequestRepository) List(ctx context.Context, limit, offset int) ([]*models.AddressRequest, error) {
	query := `
		SELECT id, address, bandwidth, energy, trx_balance::text, requested_at
		FROM tron_address_requests
		ORDER BY requested_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool().Query(ctx, query, limit, offset)
	if err != nil {
		return nil, storageError("failed to list address requests", err)
	}
	defer rows.Close()

	var records []*models.AddressRequest
	for rows.Next() {
		var (
			record     models.AddressRequest
			balanceStr string
			requested  time.Time
		)
		if err := rows.Scan(
			&record.ID,
			&record.Address,
			&record.Bandwidth,
			&record.Energy,
			&balanceStr,
			&requested,
		); err != nil {
			return nil, storageError("failed to scan address request", err)
		}

		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			return nil, storageError("failed to parse stored balance", err)
		}
		record.TrxBalance = balance
		record.RequestedAt = requested

		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to read address requests", err)
	}
	return records, nil
}

func storageError(message string, cause error) *types.ServiceError {
	return &types.ServiceError{
		Code:    types.CodeDatabaseError,
		Message: message,
		Cause:   cause,
	}
}
