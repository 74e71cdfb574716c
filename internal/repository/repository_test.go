package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runColumns = []string{
	"id",
	"file_name",
	"clean_path",
	"total_rows",
	"valid_contacts",
	"unique_phones",
	"missing_phones",
	"duplicates",
	"created_at",
}

const (
	insertRunQuery     = `(?s)INSERT INTO runs\s+\(id, file_name, clean_path, .*created_at\)\s+VALUES`
	getRunQuery        = `(?s)SELECT id, file_name, clean_path, .*FROM runs\s+WHERE id = \?`
	insertOutboxQuery  = `(?s)INSERT INTO outbox \(aggregate, aggregate_id, topic, payload, created_at\)\s+VALUES \(\?, \?, \?, \?, NOW\(\)\)`
	listRecentRunQuery = `(?s)SELECT id, .*FROM contactgw.runs_latest\s+WHERE 1 = 1`
)

func newMock(t *testing.T, driver string) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return sqlx.NewDb(db, driver), mock
}

func sampleRun() model.Run {
	return model.Run{
		ID:            "01JAFX3W7Z8Q6R5T4Y3X2W1V0U",
		FileName:      "manifest.xlsx",
		CleanPath:     model.CleanPathRules,
		TotalRows:     12,
		ValidContacts: 9,
		UniquePhones:  8,
		MissingPhones: 2,
		Duplicates:    1,
		CreatedAt:     time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestRunsRepository_Insert(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewRunsRepository(db)
	run := sampleRun()

	mock.ExpectBegin()
	mock.ExpectExec(insertRunQuery).
		WithArgs(run.ID, run.FileName, "rules", 12, 9, 8, 2, 1, run.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Insert(context.Background(), nil, run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunsRepository_InsertRollsBackOnError(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewRunsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(insertRunQuery).WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	assert.Error(t, repo.Insert(context.Background(), nil, sampleRun()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunsRepository_Get(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewRunsRepository(db)
	run := sampleRun()

	mock.ExpectQuery(getRunQuery).
		WithArgs(run.ID).
		WillReturnRows(sqlmock.NewRows(runColumns).AddRow(
			run.ID, run.FileName, "rules", 12, 9, 8, 2, 1, run.CreatedAt,
		))

	got, err := repo.Get(context.Background(), run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, run, *got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunsRepository_GetNotFound(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewRunsRepository(db)

	mock.ExpectQuery(getRunQuery).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(runColumns))

	got, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOutboxRepository_InsertMissingContacts(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewOutboxRepository(db)
	ev := model.MissingContactsEvent{RunID: "run-1", Names: []string{"Ayse Yilmaz"}}
	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(insertOutboxQuery).
		WithArgs(AggregateRun, "run-1", "contacts.missing", payload).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.InsertMissingContacts(context.Background(), nil, "contacts.missing", ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_UsesGivenTx(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewOutboxRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(insertOutboxQuery).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), tx, model.OutboxEvent{
		Aggregate:   AggregateRun,
		AggregateID: "run-2",
		Topic:       "contacts.missing",
		Payload:     []byte(`{}`),
	}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHRunsRepository_ListRecent(t *testing.T) {
	db, mock := newMock(t, "clickhouse")
	repo := NewCHRunsRepository(db)
	run := sampleRun()

	mock.ExpectQuery(listRecentRunQuery+`\s+AND clean_path = \?\s+ORDER BY created_at DESC LIMIT \? OFFSET \?`).
		WithArgs("rules", 50, 0).
		WillReturnRows(sqlmock.NewRows(runColumns).AddRow(
			run.ID, run.FileName, "rules", 12, 9, 8, 2, 1, run.CreatedAt,
		))

	got, err := repo.ListRecent(context.Background(), RunFilter{CleanPath: model.CleanPathRules, Limit: 5000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, []model.Run{run}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
