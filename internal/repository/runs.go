package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

// RunsRepository persists the audit row of each conversion (counts only,
// never contact data).
type RunsRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, run model.Run) error
	// Get returns nil, nil when the run does not exist.
	Get(ctx context.Context, id string) (*model.Run, error)
}

type RunsRepositoryImpl struct {
	db *sqlx.DB
}

func NewRunsRepository(db *sqlx.DB) *RunsRepositoryImpl {
	return &RunsRepositoryImpl{db: db}
}

func (r *RunsRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, run model.Run) error {
	const q = `
		INSERT INTO runs
		    (id, file_name, clean_path, total_rows, valid_contacts, unique_phones, missing_phones, duplicates, created_at)
		VALUES
		    (?,  ?,         ?,          ?,          ?,              ?,             ?,              ?,          ?)
	`
	return withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			run.ID, run.FileName, run.CleanPath.String(), run.TotalRows, run.ValidContacts,
			run.UniquePhones, run.MissingPhones, run.Duplicates, run.CreatedAt,
		)
		return err
	})
}

func (r *RunsRepositoryImpl) Get(ctx context.Context, id string) (*model.Run, error) {
	const q = `
		SELECT id, file_name, clean_path, total_rows, valid_contacts, unique_phones, missing_phones, duplicates, created_at
		FROM runs
		WHERE id = ?
	`
	var run model.Run
	if err := r.db.GetContext(ctx, &run, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}
