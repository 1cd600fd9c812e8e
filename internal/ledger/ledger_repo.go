package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

//go:generate mockgen -source=ledger_repo.go -destination=mock/ledger_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*DailyEntry, error)
	FindOccupiedInRange(ctx context.Context, employeeID string, start, end time.Time) ([]DailyEntry, error)
	Save(ctx context.Context, e *DailyEntry) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	db := r.db.Session(&gorm.Session{Context: r.db.Statement.Context, NewDB: true})
	db.Statement.ConnPool = tx
	return &repository{db: db}
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*DailyEntry, error) {
	var e DailyEntry
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("entry_date = ?", date).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindOccupiedInRange returns the entries inside [start, end] whose
// sickness, vacation or permission channel is claimed.
func (r *repository) FindOccupiedInRange(ctx context.Context, employeeID string, start, end time.Time) ([]DailyEntry, error) {
	var entries []DailyEntry
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("entry_date >= ?", start).
		Where("entry_date <= ?", end).
		Where("sickness_request_id IS NOT NULL OR vacation_request_id IS NOT NULL OR permission_request_id IS NOT NULL").
		Order("entry_date ASC").
		Find(&entries).Error
	return entries, err
}

// Save upserts the entry. A unique violation on (employee_id, entry_date)
// means another writer created the row despite the employee lock; that is
// a lock-discipline breach and surfaces as ErrLedgerConflict.
func (r *repository) Save(ctx context.Context, e *DailyEntry) error {
	err := r.db.WithContext(ctx).Save(e).Error
	if isUniqueViolation(err) {
		return ErrLedgerConflict
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
