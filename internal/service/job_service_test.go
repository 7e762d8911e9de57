package service

import (
	"testing"

	"equiprent/internal/db"
	"equiprent/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJobService(t *testing.T) (*JobService, sqlmock.Sqlmock) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewJobService(repository.NewJobRepository(database)), mock
}

func TestCancelStalePendingRentals(t *testing.T) {
	t.Run("CancelsOldPendingOnly", func(t *testing.T) {
		svc, mock := newJobService(t)

		mock.ExpectQuery("SELECT id FROM rentals WHERE status = \\$1 AND created_at < \\$2").
			WithArgs(db.StatusPending, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("rent-1").AddRow("rent-2"))
		mock.ExpectExec("UPDATE rentals SET status = \\$1").
			WithArgs(db.StatusCancelled, sqlmock.AnyArg(), db.StatusPending).
			WillReturnResult(sqlmock.NewResult(0, 2))

		err := svc.CancelStalePendingRentals()
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NothingStale", func(t *testing.T) {
		svc, mock := newJobService(t)

		mock.ExpectQuery("SELECT id FROM rentals WHERE status = \\$1 AND created_at < \\$2").
			WithArgs(db.StatusPending, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		err := svc.CancelStalePendingRentals()
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
