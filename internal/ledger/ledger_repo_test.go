package ledger_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-workforce/internal/ledger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGormMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)

	return gdb, mock, func() { sqlDB.Close() }
}

func claimedEntry(employeeID, requestID uuid.UUID, day time.Time) *ledger.DailyEntry {
	e := &ledger.DailyEntry{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		EntryDate:  day,
	}
	e.VacationRequestID = &requestID
	return e
}

func TestRepository_WithTx(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC)
	employeeID := uuid.New()

	// Transaksi datang dari koneksi terpisah supaya kelihatan jelas
	// statement jalan di koneksi mana.
	newTx := func(t *testing.T) (*sql.Tx, sqlmock.Sqlmock, func()) {
		t.Helper()
		txDB, txMock, err := sqlmock.New()
		assert.NoError(t, err)
		txMock.ExpectBegin()
		tx, err := txDB.Begin()
		assert.NoError(t, err)
		return tx, txMock, func() { txDB.Close() }
	}

	t.Run("success - writes ride the handed transaction and roll back together", func(t *testing.T) {
		gdb, baseMock, closeBase := newGormMock(t)
		defer closeBase()
		repo := ledger.NewRepository(gdb)

		tx, txMock, closeTx := newTx(t)
		defer closeTx()

		txMock.ExpectExec(`UPDATE "daily_ledger_entries" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		txMock.ExpectExec(`UPDATE "daily_ledger_entries" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		txMock.ExpectRollback()

		qledger := repo.WithTx(tx)
		assert.NoError(t, qledger.Save(ctx, claimedEntry(employeeID, uuid.New(), day)))
		assert.NoError(t, qledger.Save(ctx, claimedEntry(employeeID, uuid.New(), day.AddDate(0, 0, 1))))
		assert.NoError(t, tx.Rollback())

		// Kalau salah satu write bocor ke pool dasar, baseMock langsung
		// menolak karena tidak ada expectation di sana.
		assert.NoError(t, baseMock.ExpectationsWereMet())
		assert.NoError(t, txMock.ExpectationsWereMet())
	})

	t.Run("negative - unique violation inside the transaction maps to ledger conflict", func(t *testing.T) {
		gdb, baseMock, closeBase := newGormMock(t)
		defer closeBase()
		repo := ledger.NewRepository(gdb)

		tx, txMock, closeTx := newTx(t)
		defer closeTx()

		txMock.ExpectExec(`UPDATE "daily_ledger_entries" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		txMock.ExpectExec(`UPDATE "daily_ledger_entries" SET`).
			WillReturnError(&pgconn.PgError{Code: "23505"})
		txMock.ExpectRollback()

		qledger := repo.WithTx(tx)
		assert.NoError(t, qledger.Save(ctx, claimedEntry(employeeID, uuid.New(), day)))

		err := qledger.Save(ctx, claimedEntry(employeeID, uuid.New(), day.AddDate(0, 0, 1)))
		assert.ErrorIs(t, err, ledger.ErrLedgerConflict)

		assert.NoError(t, tx.Rollback())
		assert.NoError(t, baseMock.ExpectationsWereMet())
		assert.NoError(t, txMock.ExpectationsWereMet())
	})

	t.Run("success - base pool stays unbound after WithTx", func(t *testing.T) {
		gdb, baseMock, closeBase := newGormMock(t)
		defer closeBase()
		repo := ledger.NewRepository(gdb)

		tx, txMock, closeTx := newTx(t)
		defer closeTx()
		_ = repo.WithTx(tx)

		rows := sqlmock.NewRows([]string{"id", "employee_id", "entry_date"}).
			AddRow(uuid.New().String(), employeeID.String(), day)
		baseMock.ExpectQuery(`SELECT (.+) FROM "daily_ledger_entries"`).
			WillReturnRows(rows)

		entry, err := repo.FindByEmployeeAndDate(ctx, employeeID.String(), day)
		assert.NoError(t, err)
		assert.Equal(t, employeeID, entry.EmployeeID)

		txMock.ExpectRollback()
		assert.NoError(t, tx.Rollback())
		assert.NoError(t, baseMock.ExpectationsWereMet())
		assert.NoError(t, txMock.ExpectationsWereMet())
	})
}
