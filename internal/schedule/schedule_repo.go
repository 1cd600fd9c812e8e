package schedule

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=schedule_repo.go -destination=mock/schedule_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindActiveContract(ctx context.Context, employeeID string) (*Contract, error)
	FindActiveTemplate(ctx context.Context, contractID string) (*WorkScheduleTemplate, error)
	FindHolidaysInRange(ctx context.Context, start, end time.Time) ([]Holiday, error)
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

// FindActiveContract returns the ACTIVE contract for the employee.
// More than one ACTIVE contract is a data-quality anomaly; the most
// recently started one wins.
func (r *repository) FindActiveContract(ctx context.Context, employeeID string) (*Contract, error) {
	var c Contract
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("status = ?", ContractStatusActive).
		Order("start_date DESC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindActiveTemplate returns the contract's most recently updated ACTIVE
// template. Superseded templates never resolve.
func (r *repository) FindActiveTemplate(ctx context.Context, contractID string) (*WorkScheduleTemplate, error) {
	var t WorkScheduleTemplate
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Where("status = ?", TemplateStatusActive).
		Order("updated_at DESC").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) FindHolidaysInRange(ctx context.Context, start, end time.Time) ([]Holiday, error) {
	var holidays []Holiday
	err := r.db.WithContext(ctx).
		Where("holiday_date >= ?", start).
		Where("holiday_date <= ?", end).
		Order("holiday_date ASC").
		Find(&holidays).Error
	return holidays, err
}
