package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/walletd/core/internal/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "sqlmock")), mock
}

func TestStorePutInsertsWhenNoExistingVersion(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT version FROM wallet_records`).
		WithArgs("accounts", "acct-1").
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectExec(`INSERT INTO wallet_records`).
		WithArgs("accounts", "acct-1", []byte(`{"label":"main"}`), 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rec, err := s.Put(context.Background(), storage.Namespace("accounts"), "acct-1", []byte(`{"label":"main"}`), nil)
	require.NoError(t, err)
	require.Equal(t, 1, rec.Version)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStorePutRejectsVersionConflict(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT version FROM wallet_records`).
		WithArgs("accounts", "acct-1").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(3))
	mock.ExpectRollback()

	expected := 1
	_, err := s.Put(context.Background(), storage.Namespace("accounts"), "acct-1", []byte(`{}`), &expected)
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreGetReturnsNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT value, version, updated_at FROM wallet_records`).
		WithArgs("accounts", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"value", "version", "updated_at"}))

	_, err := s.Get(context.Background(), storage.Namespace("accounts"), "missing")
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreGetReturnsRecord(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT value, version, updated_at FROM wallet_records`).
		WithArgs("accounts", "acct-1").
		WillReturnRows(sqlmock.NewRows([]string{"value", "version", "updated_at"}).
			AddRow([]byte(`{"label":"main"}`), 2, now))

	rec, err := s.Get(context.Background(), storage.Namespace("accounts"), "acct-1")
	require.NoError(t, err)
	require.Equal(t, 2, rec.Version)
	require.JSONEq(t, `{"label":"main"}`, string(rec.Value))
}

func TestStoreDelete(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM wallet_records`).
		WithArgs("accounts", "acct-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Delete(context.Background(), storage.Namespace("accounts"), "acct-1")
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
