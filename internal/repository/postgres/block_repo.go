package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventmanager/internal/domain"

	"github.com/lib/pq"
)

const blockColumns = `id, event_id, name, price, total_sessions, is_active, created_at, updated_at`

type evaluableBlockRepository struct {
	DB DBTX
}

func NewEvaluableBlockRepository(db DBTX) domain.EvaluableBlockRepository {
	return &evaluableBlockRepository{DB: db}
}

func (r *evaluableBlockRepository) GetByID(ctx context.Context, id string) (*domain.EvaluableBlock, error) {
	query := `SELECT ` + blockColumns + ` FROM evaluable_blocks WHERE id = $1`
	b, err := scanBlock(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// ListByIDs returns the blocks that exist among ids. Missing ids are simply absent.
func (r *evaluableBlockRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.EvaluableBlock, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + blockColumns + ` FROM evaluable_blocks WHERE id = ANY($1)`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []*domain.EvaluableBlock
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func scanBlock(row rowScanner) (*domain.EvaluableBlock, error) {
	b := &domain.EvaluableBlock{}
	err := row.Scan(&b.ID, &b.EventID, &b.Name, &b.Price, &b.TotalSessions, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}
