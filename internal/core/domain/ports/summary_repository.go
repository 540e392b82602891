package ports

import (
	"context"

	"payments-service/internal/core/domain/entity"
)

type SummaryRepository interface {
	Save(ctx context.Context, s *entity.Summary) error
}
