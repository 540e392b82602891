package repository

import (
	"context"
	"database/sql"
	"fmt"

	"payments-service/internal/core/domain/entity"
)

type PostgresSummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) *PostgresSummaryRepository {
	return &PostgresSummaryRepository{db: db}
}

func (r *PostgresSummaryRepository) Save(ctx context.Context, s *entity.Summary) error {
	const query = `
		INSERT INTO summaries (id, text, summary, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.Text, s.Summary, s.CreatedAt); err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}
