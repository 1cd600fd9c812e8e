package absence_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-workforce/internal/absence"
	absenceerrors "go-workforce/internal/absence/errors"
	"go-workforce/internal/balance"
	balanceerrors "go-workforce/internal/balance/errors"
	"go-workforce/internal/calendar"
	"go-workforce/internal/ledger"
	"go-workforce/internal/notification"
	"go-workforce/internal/schedule"
	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/shared/lock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeAbsenceRepository struct {
	createFn                  func(ctx context.Context, r *absence.Request) error
	updateFn                  func(ctx context.Context, r *absence.Request) error
	findByIDFn                func(ctx context.Context, id string) (*absence.Request, error)
	findAllByEmployeeFn       func(ctx context.Context, employeeID string) ([]absence.Request, error)
	findAllFn                 func(ctx context.Context) ([]absence.Request, error)
	findOverlappingFn         func(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) ([]absence.Request, error)
	findSicknessOverlappingFn func(ctx context.Context, employeeID string, start, end time.Time) ([]absence.SicknessRecord, error)
}

func (f *fakeAbsenceRepository) WithTx(tx *sql.Tx) absence.Repository { return f }

func (f *fakeAbsenceRepository) Create(ctx context.Context, r *absence.Request) error {
	if f.createFn != nil {
		return f.createFn(ctx, r)
	}
	return nil
}

func (f *fakeAbsenceRepository) Update(ctx context.Context, r *absence.Request) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, r)
	}
	return nil
}

func (f *fakeAbsenceRepository) FindByID(ctx context.Context, id string) (*absence.Request, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAbsenceRepository) FindAllByEmployee(ctx context.Context, employeeID string) ([]absence.Request, error) {
	if f.findAllByEmployeeFn != nil {
		return f.findAllByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeAbsenceRepository) FindAll(ctx context.Context) ([]absence.Request, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeAbsenceRepository) FindOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) ([]absence.Request, error) {
	if f.findOverlappingFn != nil {
		return f.findOverlappingFn(ctx, employeeID, start, end, excludeID)
	}
	return nil, nil
}

func (f *fakeAbsenceRepository) FindSicknessOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]absence.SicknessRecord, error) {
	if f.findSicknessOverlappingFn != nil {
		return f.findSicknessOverlappingFn(ctx, employeeID, start, end)
	}
	return nil, nil
}

type fakeLedgerRepository struct {
	findByEmployeeAndDateFn func(ctx context.Context, employeeID string, date time.Time) (*ledger.DailyEntry, error)
	findOccupiedInRangeFn   func(ctx context.Context, employeeID string, start, end time.Time) ([]ledger.DailyEntry, error)
	saveFn                  func(ctx context.Context, e *ledger.DailyEntry) error
}

func (f *fakeLedgerRepository) WithTx(tx *sql.Tx) ledger.Repository { return f }

func (f *fakeLedgerRepository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*ledger.DailyEntry, error) {
	if f.findByEmployeeAndDateFn != nil {
		return f.findByEmployeeAndDateFn(ctx, employeeID, date)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLedgerRepository) FindOccupiedInRange(ctx context.Context, employeeID string, start, end time.Time) ([]ledger.DailyEntry, error) {
	if f.findOccupiedInRangeFn != nil {
		return f.findOccupiedInRangeFn(ctx, employeeID, start, end)
	}
	return nil, nil
}

func (f *fakeLedgerRepository) Save(ctx context.Context, e *ledger.DailyEntry) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, e)
	}
	return nil
}

type fakeBalanceRepository struct {
	findByIDFn       func(ctx context.Context, id string) (*balance.Balance, error)
	findByEmployeeFn func(ctx context.Context, employeeID string) (*balance.Balance, error)
	updateFn         func(ctx context.Context, b *balance.Balance) error
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) balance.Repository { return f }

func (f *fakeBalanceRepository) FindByID(ctx context.Context, id string) (*balance.Balance, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) FindByEmployee(ctx context.Context, employeeID string) (*balance.Balance, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) Update(ctx context.Context, b *balance.Balance) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, b)
	}
	return nil
}

type fakeResolver struct {
	contract *schedule.Contract
	template *schedule.WorkScheduleTemplate
	holidays map[time.Time]schedule.Holiday
	err      error
}

func (f *fakeResolver) ResolveActiveContract(ctx context.Context, employeeID string) (*schedule.Contract, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.contract, nil
}

func (f *fakeResolver) ResolveActiveSchedule(ctx context.Context, employeeID string) (*schedule.Contract, *schedule.WorkScheduleTemplate, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.contract, f.template, nil
}

func (f *fakeResolver) ResolveHolidays(ctx context.Context, period calendar.Period) (map[time.Time]schedule.Holiday, error) {
	return f.holidays, nil
}

type fakeCounterRepository struct {
	next int64
}

func (f *fakeCounterRepository) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

type fakeOutboxRepository struct {
	created []notification.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) notification.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event notification.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]notification.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type absenceServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  absence.Service
	repo     *fakeAbsenceRepository
	ledger   *fakeLedgerRepository
	balance  *fakeBalanceRepository
	resolver *fakeResolver
	outbox   *fakeOutboxRepository
}

func setupAbsenceServiceTest(t *testing.T) *absenceServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeAbsenceRepository{}
	ledgerRepo := &fakeLedgerRepository{}
	balanceRepo := &fakeBalanceRepository{}
	resolver := &fakeResolver{
		contract: &schedule.Contract{
			ID:         uuid.New(),
			Status:     schedule.ContractStatusActive,
			DailyHours: decimal.NewFromInt(8),
		},
		template: monFriTemplate(),
	}
	outbox := &fakeOutboxRepository{}

	svc := absence.NewService(
		db, repo, ledgerRepo, balanceRepo, resolver,
		lock.NewKeyedLocker(), outbox, &fakeCounterRepository{},
	)

	return &absenceServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		service:  svc,
		repo:     repo,
		ledger:   ledgerRepo,
		balance:  balanceRepo,
		resolver: resolver,
		outbox:   outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestAbsenceService_Create(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()
	actorID := uuid.New().String()
	approverID := uuid.New().String()

	t.Run("success vacation full working week", func(t *testing.T) {
		deps := setupAbsenceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		bal := &balance.Balance{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			EarnedDays: decimal.NewFromInt(10),
			TakenDays:  decimal.NewFromInt(2),
		}
		deps.balance.findByEmployeeFn = func(ctx context.Context, eid string) (*balance.Balance, error) {
			assert.Equal(t, employeeID.String(), eid)
			return bal, nil
		}
		deps.repo.createFn = func(ctx context.Context, r *absence.Request) error {
			assert.Equal(t, absence.StatusPending, r.Status)
			assert.Equal(t, 5, r.TotalDays)
			assert.Equal(t, bal.ID, *r.BalanceID)
			return nil
		}

		resp, err := deps.service.Create(ctx, actorID, absence.CreateAbsenceRequest{
			EmployeeID: employeeID.String(),
			ApproverID: &approverID,
			Kind:       absence.KindVacation,
			StartDate:  "2026-01-19",
			EndDate:    "2026-01-23",
			Reason:     "Family trip",
		})

		assert.NoError(t, err)
		assert.Equal(t, absence.StatusPending, resp.Status)
		assert.Equal(t, "AR-000001", resp.RequestNumber)
		assert.Len(t, resp.ChargeableDates, 5)
		assert.Empty(t, resp.RestDates)
		// Saldo tidak berubah saat create; debit hanya terjadi saat approve.
		assert.True(t, bal.TakenDays.Equal(decimal.NewFromInt(2)))
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "absence.requested", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success permission computes hours and charges holidays", func(t *testing.T) {
		deps := setupAbsenceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		wed := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)
		deps.resolver.holidays = holidayOn(wed)
		paid := true

		resp, err := deps.service.Create(ctx, actorID, absence.CreateAbsenceRequest{
			EmployeeID: employeeID.String(),
			Kind:       absence.KindPermission,
			StartDate:  "2026-01-19",
			EndDate:    "2026-01-23",
			Paid:       &paid,
		})

		assert.NoError(t, err)
		assert.Equal(t, 5, resp.TotalDays)
		assert.Equal(t, "40", resp.TotalHours)
		assert.Empty(t, resp.HolidayDates)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative insufficient balance fails creation", func(t *testing.T) {
		deps := setupAbsenceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.balance.findByEmployeeFn = func(ctx context.Context, eid string) (*balance.Balance, error) {
			return &balance.Balance{
				ID:         uuid.New(),
				EmployeeID: employeeID,
				EarnedDays: decimal.NewFromInt(3),
				TakenDays:  decimal.Zero,
			}, nil
		}
		created := false
		deps.repo.createFn = func(ctx context.Context, r *absence.Request) error {
			created = true
			return nil
		}

		_, err := deps.service.Create(ctx, actorID, absence.CreateAbsenceRequest{
			EmployeeID: employeeID.String(),
			Kind:       absence.KindVacation,
			StartDate:  "2026-01-19",
			EndDate:    "2026-01-23",
		})

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
		assert.False(t, created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative overlapping pending request reports conflict", func(t *testing.T) {
		deps := setupAbsenceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		firstID := uuid.New()
		deps.repo.findOverlappingFn = func(ctx context.Context, eid string, start, end time.Time, excludeID *string) ([]absence.Request, error) {
			return []absence.Request{{
				ID:        firstID,
				Kind:      absence.KindVacation,
				Status:    absence.StatusPending,
				StartDate: time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2026, 1, 23, 0, 0, 0, 0, time.UTC),
			}}, nil
		}

		_, err := deps.service.Create(ctx, actorID, absence.CreateAbsenceRequest{
			EmployeeID: employeeID.String(),
			Kind:       absence.KindVacation,
			StartDate:  "2026-01-20",
			EndDate:    "2026-01-21",
		})

		assert.ErrorIs(t, err, absenceerrors.ErrDateConflict)
		conflicts := conflictDetails(t, err)
		assert.Len(t, conflicts, 1)
		assert.Equal(t, firstID, conflicts[0].WithID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative invalid range", func(t *testing.T) {
		deps := setupAbsenceServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, actorID, absence.CreateAbsenceRequest{
			EmployeeID: employeeID.String(),
			Kind:       absence.KindVacation,
			StartDate:  "2026-01-23",
			EndDate:    "2026-01-19",
		})

		assert.ErrorIs(t, err, calendar.ErrInvalidRange)
	})
}

func pendingVacation(employeeID, approverID uuid.UUID, balanceID *uuid.UUID) *absence.Request {
	return &absence.Request{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		ApproverID: &approverID,
		Kind:       absence.KindVacation,
		StartDate:  time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 1, 23, 0, 0, 0, 0, time.UTC),
		Status:     absence.StatusPending,
		BalanceID:  balanceID,
		TotalDays:  5,
		TotalHours: decimal.Zero,
		CreatedBy:  employeeID,
	}
}

func asAppError(t *testing.T, err error) *apperror.AppError {
	t.Helper()
	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	return appErr
}

func conflictDetails(t *testing.T, err error) []absence.Conflict {
	t.Helper()
	appErr := asAppError(t, err)
	conflicts, ok := appErr.Details.([]absence.Conflict)
	assert.True(t, ok)
	return conflicts
}

func TestAbsenceService_Approve(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()
	approverID := uuid.New()

	t.Run("success debits balance and claims ledger days", func(t *testing.T) {
		deps := setupAbsenceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		bal := &balance.Balance{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			EarnedDays: decimal.NewFromInt(10),
			TakenDays:  decimal.NewFromInt(2),
		}
		req := pendingVacation(employeeID, approverID, &bal.ID)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*absence.Request, error) {
			assert.Equal(t, req.ID.String(), id)
			return req, nil
		}
		deps.balance.findByIDFn = func(ctx context.Context, id string) (*balance.Balance, error) {
			assert.Equal(t, bal.ID.String(), id)
			return bal, nil
		}
		var savedDates []time.Time
		deps.ledger.saveFn = func(ctx context.Context, e *ledger.DailyEntry) error {
			assert.Equal(t, req.ID, *e.VacationRequestID)
			savedDates = append(savedDates, e.EntryDate)
			return nil
		}
		balanceUpdated := false
		deps.balance.updateFn = func(ctx context.Context, b *balance.Balance) error {
			balanceUpdated = true
			assert.True(t, b.TakenDays.Equal(decimal.NewFromInt(7)))
			return nil
		}
		deps.repo.updateFn = func(ctx context.Context, r *absence.Request) error {
			assert.Equal(t, absence.StatusApproved, r.Status)
			assert.NotNil(t, r.DecidedAt)
			return nil
		}

		resp, err := deps.service.Approve(ctx, approverID.String(), req.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, absence.StatusApproved, resp.Status)
		assert.Len(t, savedDates, 5)
		assert.True(t, balanceUpdated)
		assert.True(t, bal.TakenDays.LessThanOrEqual(bal.EarnedDays))
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "absence.approved", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative actor is not assigned approver", func(t *testing.T) {
		deps := setupAbsenceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		req := pendingVacation(employeeID, approverID, nil)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*absence.Request, error) {
			return req, nil
		}

		_, err := deps.service.Approve(ctx, uuid.New().String(), req.ID.String())

		assert.ErrorIs(t, err, absenceerrors.ErrNotAuthorizedApprover)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative already decided", func(t *testing.T) {
		deps := setupAbsenceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		req := pendingVacation(employeeID, approverID, nil)
		req.Status = absence.StatusApproved
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*absence.Request, error) {
			return req, nil
		}

		_, err := deps.service.Approve(ctx, approverID.String(), req.ID.String())

		assert.ErrorIs(t, err, absenceerrors.ErrRequestNotEditable)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative ledger day claimed by another request", func(t *testing.T) {
		deps := setupAbsenceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		bal := &balance.Balance{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			EarnedDays: decimal.NewFromInt(10),
		}
		req := pendingVacation(employeeID, approverID, &bal.ID)
		other := uuid.New()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*absence.Request, error) {
			return req, nil
		}
		deps.balance.findByIDFn = func(ctx context.Context, id string) (*balance.Balance, error) {
			return bal, nil
		}
		deps.ledger.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*ledger.DailyEntry, error) {
			return &ledger.DailyEntry{
				EmployeeID:        employeeID,
				EntryDate:         date,
				SicknessRequestID: &other,
			}, nil
		}

		_, err := deps.service.Approve(ctx, approverID.String(), req.ID.String())

		assert.ErrorIs(t, err, ledger.ErrLedgerConflict)
		// Gagal sebelum commit: saldo tidak berubah.
		assert.True(t, bal.TakenDays.Equal(decimal.Zero))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative balance drifted below requirement", func(t *testing.T) {
		deps := setupAbsenceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		bal := &balance.Balance{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			EarnedDays: decimal.NewFromInt(4),
			TakenDays:  decimal.Zero,
		}
		req := pendingVacation(employeeID, approverID, &bal.ID)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*absence.Request, error) {
			return req, nil
		}
		deps.balance.findByIDFn = func(ctx context.Context, id string) (*balance.Balance, error) {
			return bal, nil
		}

		_, err := deps.service.Approve(ctx, approverID.String(), req.ID.String())

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestAbsenceService_Reject(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()
	approverID := uuid.New()

	t.Run("success no ledger or balance side effects", func(t *testing.T) {
		deps := setupAbsenceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		req := pendingVacation(employeeID, approverID, nil)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*absence.Request, error) {
			return req, nil
		}
		ledgerTouched := false
		deps.ledger.saveFn = func(ctx context.Context, e *ledger.DailyEntry) error {
			ledgerTouched = true
			return nil
		}
		deps.repo.updateFn = func(ctx context.Context, r *absence.Request) error {
			assert.Equal(t, absence.StatusRejected, r.Status)
			return nil
		}

		resp, err := deps.service.Reject(ctx, approverID.String(), req.ID.String(), "coverage gap")

		assert.NoError(t, err)
		assert.Equal(t, absence.StatusRejected, resp.Status)
		assert.False(t, ledgerTouched)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "absence.rejected", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative rejecting a rejected request is an error", func(t *testing.T) {
		deps := setupAbsenceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		req := pendingVacation(employeeID, approverID, nil)
		req.Status = absence.StatusRejected
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*absence.Request, error) {
			return req, nil
		}

		_, err := deps.service.Reject(ctx, approverID.String(), req.ID.String(), "again")

		assert.ErrorIs(t, err, absenceerrors.ErrRequestNotEditable)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
