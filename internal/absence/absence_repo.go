package absence

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=absence_repo.go -destination=mock/absence_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *Request) error
	Update(ctx context.Context, r *Request) error
	FindByID(ctx context.Context, id string) (*Request, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]Request, error)
	FindAll(ctx context.Context) ([]Request, error)
	// FindOverlapping returns PENDING and APPROVED requests for the
	// employee whose inclusive date range intersects [start, end],
	// optionally excluding one request id. Rejected requests never
	// participate in conflict detection.
	FindOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) ([]Request, error)
	FindSicknessOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]SicknessRecord, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx mengikat semua query ke transaksi yang sedang berjalan.
// Session dengan Context memaksa clone statement sehingga pool dasar
// tidak ikut terikat; gorm melihat ConnPool bertipe *sql.Tx dan tidak
// membuka transaksi default-nya sendiri.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	db := r.db.Session(&gorm.Session{Context: r.db.Statement.Context, NewDB: true})
	db.Statement.ConnPool = tx
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req *Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) Update(ctx context.Context, req *Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Request, error) {
	var req Request
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]Request, error) {
	var requests []Request
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindAll(ctx context.Context) ([]Request, error) {
	var requests []Request
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) ([]Request, error) {
	db := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("NOT (end_date < ? OR start_date > ?)", start, end)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var requests []Request
	err := db.Order("start_date ASC").Find(&requests).Error
	return requests, err
}

func (r *repository) FindSicknessOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]SicknessRecord, error) {
	var records []SicknessRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("NOT (end_date < ? OR start_date > ?)", start, end).
		Order("start_date ASC").
		Find(&records).Error
	return records, err
}
