package repository

import (
	"context"

	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

// RunFilter narrows a reports query. Zero values mean "any".
type RunFilter struct {
	CleanPath model.CleanPath
	FileName  string
	Limit     int
	Offset    int
}

// CHRunsRepository lists conversion runs from ClickHouse (final view).
type CHRunsRepository interface {
	ListRecent(ctx context.Context, f RunFilter) ([]model.Run, error)
}

type chRunsRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewCHRunsRepository(ch *sqlx.DB) CHRunsRepository {
	return &chRunsRepository{ch: ch}
}

func (r *chRunsRepository) ListRecent(ctx context.Context, f RunFilter) ([]model.Run, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := `
		SELECT id, file_name, clean_path, total_rows, valid_contacts, unique_phones, missing_phones, duplicates, created_at
		FROM contactgw.runs_latest
		WHERE 1 = 1
	`
	var args []any

	if f.CleanPath != "" {
		q += " AND clean_path = ?"
		args = append(args, f.CleanPath.String())
	}
	if f.FileName != "" {
		q += " AND file_name = ?"
		args = append(args, f.FileName)
	}

	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	var rows []model.Run
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
