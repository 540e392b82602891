package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"payments-service/internal/core/domain/entity"
	"payments-service/internal/core/domain/ports"
)

// uniqueViolation is the Postgres error code for unique_violation.
const uniqueViolation = "23505"

const transactionColumns = `id, kind, amount, status, idempotency_key, client_request_id, request_hash, created_at, updated_at`

type PostgresTransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

func (r *PostgresTransactionRepository) Insert(ctx context.Context, tx *entity.Transaction) error {
	const query = `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		tx.ID, string(tx.Kind), tx.Amount, string(tx.Status),
		tx.IdempotencyKey, tx.ClientRequestID, tx.RequestHash,
		tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ports.ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *PostgresTransactionRepository) FindByIdempotencyKey(ctx context.Context, key string) (*entity.Transaction, error) {
	return r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE idempotency_key = $1`, key)
}

func (r *PostgresTransactionRepository) FindByClientRequestID(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE client_request_id = $1`, id)
}

func (r *PostgresTransactionRepository) FindByID(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
}

func (r *PostgresTransactionRepository) findOne(ctx context.Context, query string, arg any) (*entity.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return tx, nil
}

func (r *PostgresTransactionRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Transaction, error) {
	const query = `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*entity.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

// MarkPending advances created -> pending inside one short transaction with
// the row locked. Rows already past created are left untouched so a
// redelivered job cannot regress or repeat the transition.
func (r *PostgresTransactionRepository) MarkPending(ctx context.Context, id string) (*entity.Transaction, bool, error) {
	return r.transition(ctx, id, entity.StatusPending)
}

// Finalize advances pending -> processed|failed with the same locking and
// guard discipline as MarkPending.
func (r *PostgresTransactionRepository) Finalize(ctx context.Context, id string, status entity.Status) (*entity.Transaction, bool, error) {
	if !status.Terminal() {
		return nil, false, fmt.Errorf("finalize to non-terminal status %s", status)
	}
	return r.transition(ctx, id, status)
}

func (r *PostgresTransactionRepository) transition(ctx context.Context, id string, target entity.Status) (*entity.Transaction, bool, error) {
	dbTx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = dbTx.Rollback() }()

	row := dbTx.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lock transaction: %w", err)
	}

	if !tx.Status.CanTransition(target) {
		return tx, false, dbTx.Commit()
	}

	now := time.Now().UTC()
	if _, err := dbTx.ExecContext(ctx,
		`UPDATE transactions SET status = $1, updated_at = $2 WHERE id = $3`,
		string(target), now, id,
	); err != nil {
		return nil, false, fmt.Errorf("update status: %w", err)
	}
	if err := dbTx.Commit(); err != nil {
		return nil, false, err
	}

	tx.Status = target
	tx.UpdatedAt = now
	return tx, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*entity.Transaction, error) {
	var (
		tx              entity.Transaction
		kind, status    string
		idempotencyKey  sql.NullString
		clientRequestID sql.NullString
	)
	err := row.Scan(
		&tx.ID, &kind, &tx.Amount, &status,
		&idempotencyKey, &clientRequestID, &tx.RequestHash,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.Kind = entity.Kind(kind)
	tx.Status = entity.Status(status)
	if idempotencyKey.Valid {
		tx.IdempotencyKey = &idempotencyKey.String
	}
	if clientRequestID.Valid {
		tx.ClientRequestID = &clientRequestID.String
	}
	return &tx, nil
}
