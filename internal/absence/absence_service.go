package absence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	absenceerrors "go-workforce/internal/absence/errors"
	"go-workforce/internal/balance"
	balanceerrors "go-workforce/internal/balance/errors"
	"go-workforce/internal/calendar"
	"go-workforce/internal/events"
	"go-workforce/internal/ledger"
	"go-workforce/internal/notification"
	"go-workforce/internal/schedule"
	"go-workforce/internal/shared/contextutil"
	"go-workforce/internal/shared/counter"
	"go-workforce/internal/shared/lock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=absence_service.go -destination=mock/absence_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateAbsenceRequest) (AbsenceResponse, error)
	GetAll(ctx context.Context) ([]AbsenceResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]AbsenceResponse, error)
	GetByID(ctx context.Context, id string) (AbsenceResponse, error)
	Approve(ctx context.Context, actorID, id string) (AbsenceResponse, error)
	Reject(ctx context.Context, actorID, id, reason string) (AbsenceResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	ledgerRepo  ledger.Repository
	balanceRepo balance.Repository
	resolver    schedule.Resolver
	locks       lock.EmployeeLocker
	outbox      notification.OutboxRepository
	counters    counter.Repository
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	ledgerRepo ledger.Repository,
	balanceRepo balance.Repository,
	resolver schedule.Resolver,
	locks lock.EmployeeLocker,
	outbox notification.OutboxRepository,
	counters counter.Repository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("absence.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("absence.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		ledgerRepo:  ledgerRepo,
		balanceRepo: balanceRepo,
		resolver:    resolver,
		locks:       locks,
		outbox:      outbox,
		counters:    counters,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateAbsenceRequest) (AbsenceResponse, error) {
	s.logger.Debug("create absence requested",
		zap.String("actor_id", actorID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("kind", req.Kind),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AbsenceResponse{}, absenceerrors.ErrInvalidEmployeeID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return AbsenceResponse{}, absenceerrors.ErrInvalidActorID
	}
	var approverUUID *uuid.UUID
	if req.ApproverID != nil && *req.ApproverID != "" {
		parsed, err := uuid.Parse(*req.ApproverID)
		if err != nil {
			return AbsenceResponse{}, absenceerrors.ErrInvalidApproverID
		}
		approverUUID = &parsed
	}

	period, err := calendar.ParsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("create absence invalid range",
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return AbsenceResponse{}, err
	}

	// Semua keputusan untuk satu karyawan diserialisasi (check-then-act).
	release, err := s.locks.Acquire(ctx, req.EmployeeID)
	if err != nil {
		s.logger.Error("create absence acquire lock failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create absence begin tx failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qledger := s.ledgerRepo.WithTx(tx)

	contract, tmpl, err := s.resolver.ResolveActiveSchedule(ctx, req.EmployeeID)
	if err != nil {
		s.logger.Warn("create absence schedule resolution failed",
			zap.String("employee_id", req.EmployeeID),
			zap.Error(err),
		)
		return AbsenceResponse{}, err
	}

	holidays, err := s.resolver.ResolveHolidays(ctx, period)
	if err != nil {
		return AbsenceResponse{}, err
	}

	breakdown := ComputeChargeableDays(period, tmpl, holidays, req.Kind)

	detector := NewDetector(qtx, qledger)
	conflicts, err := detector.FindConflicts(ctx, req.EmployeeID, period, nil)
	if err != nil {
		s.logger.Error("create absence conflict scan failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	if len(conflicts) > 0 {
		s.logger.Warn("create absence conflicts detected",
			zap.String("employee_id", req.EmployeeID),
			zap.Int("conflicts", len(conflicts)),
		)
		return AbsenceResponse{}, absenceerrors.DateConflict(conflicts)
	}

	requiredDays := decimal.NewFromInt(int64(breakdown.ChargeableDays()))

	var balanceID *uuid.UUID
	if req.Kind == KindVacation {
		bal, err := s.loadBalance(ctx, tx, req.BalanceID, req.EmployeeID)
		if err != nil {
			return AbsenceResponse{}, err
		}
		if err := balance.AuthorizeDebit(bal, requiredDays); err != nil {
			s.logger.Warn("create absence balance check failed",
				zap.String("employee_id", req.EmployeeID),
				zap.String("required", requiredDays.String()),
				zap.String("available", bal.AvailableDays().String()),
			)
			return AbsenceResponse{}, err
		}
		balanceID = &bal.ID
	}

	totalHours := decimal.Zero
	if req.Kind == KindPermission {
		totalHours = contract.DailyHours.Mul(requiredDays)
	}

	seq, err := s.counters.GetNextValue(ctx, "absence_request")
	if err != nil {
		s.logger.Error("create absence counter failed", zap.Error(err))
		return AbsenceResponse{}, err
	}

	r := &Request{
		ID:            uuid.New(),
		RequestNumber: fmt.Sprintf("AR-%06d", seq),
		EmployeeID:    employeeUUID,
		ApproverID:    approverUUID,
		Kind:          req.Kind,
		StartDate:     period.Start,
		EndDate:       period.LastDate(),
		Reason:        req.Reason,
		Status:        StatusPending,
		BalanceID:     balanceID,
		Paid:          req.Paid,
		TotalDays:     breakdown.ChargeableDays(),
		TotalHours:    totalHours,
		CreatedBy:     actorUUID,
	}

	if err := qtx.Create(ctx, r); err != nil {
		s.logger.Error("create absence persist failed", zap.Error(err))
		return AbsenceResponse{}, err
	}

	if err := s.enqueueRequested(ctx, tx, r); err != nil {
		s.logger.Error("create absence enqueue notification failed", zap.Error(err))
		return AbsenceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create absence commit failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	s.logger.Info("create absence success",
		zap.String("request_id", r.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("kind", req.Kind),
		zap.Int("chargeable_days", r.TotalDays),
	)

	return mapToResponse(*r, &breakdown), nil
}

func (s *service) GetAll(ctx context.Context) ([]AbsenceResponse, error) {
	requests, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]AbsenceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, absenceerrors.ErrInvalidEmployeeID
	}
	requests, err := s.repo.FindAllByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetByID(ctx context.Context, id string) (AbsenceResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AbsenceResponse{}, absenceerrors.ErrRequestNotFound
		}
		return AbsenceResponse{}, err
	}
	return mapToResponse(*r, nil), nil
}

// Approve re-validates conflicts and balance against current state:
// schedule, commitments and balance may all have drifted since creation.
// Ledger claims, the balance debit and the status flip commit atomically.
func (s *service) Approve(ctx context.Context, actorID, id string) (AbsenceResponse, error) {
	s.logger.Debug("approve absence requested",
		zap.String("request_id", id),
		zap.String("actor_id", actorID),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return AbsenceResponse{}, absenceerrors.ErrInvalidActorID
	}

	// Baca awal hanya untuk tahu kunci employee; status diperiksa ulang
	// di dalam transaksi setelah lock dipegang.
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AbsenceResponse{}, absenceerrors.ErrRequestNotFound
		}
		return AbsenceResponse{}, err
	}

	release, err := s.locks.Acquire(ctx, current.EmployeeID.String())
	if err != nil {
		s.logger.Error("approve absence acquire lock failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve absence begin tx failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qledger := s.ledgerRepo.WithTx(tx)
	qbalance := s.balanceRepo.WithTx(tx)

	r, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AbsenceResponse{}, absenceerrors.ErrRequestNotFound
		}
		return AbsenceResponse{}, err
	}

	if r.Status != StatusPending {
		s.logger.Warn("approve absence not pending",
			zap.String("request_id", id),
			zap.String("status", r.Status),
		)
		return AbsenceResponse{}, absenceerrors.ErrRequestNotEditable
	}
	if r.ApproverID != nil && *r.ApproverID != actorUUID {
		return AbsenceResponse{}, absenceerrors.ErrNotAuthorizedApprover
	}

	period, err := calendar.NewPeriod(r.StartDate, r.EndDate)
	if err != nil {
		return AbsenceResponse{}, err
	}

	_, tmpl, err := s.resolver.ResolveActiveSchedule(ctx, r.EmployeeID.String())
	if err != nil {
		return AbsenceResponse{}, err
	}
	holidays, err := s.resolver.ResolveHolidays(ctx, period)
	if err != nil {
		return AbsenceResponse{}, err
	}

	breakdown := ComputeChargeableDays(period, tmpl, holidays, r.Kind)

	detector := NewDetector(qtx, qledger)
	conflicts, err := detector.FindConflicts(ctx, r.EmployeeID.String(), period, &r.ID)
	if err != nil {
		return AbsenceResponse{}, err
	}
	if len(conflicts) > 0 {
		s.logger.Warn("approve absence conflicts detected",
			zap.String("request_id", id),
			zap.Int("conflicts", len(conflicts)),
		)
		return AbsenceResponse{}, absenceerrors.DateConflict(conflicts)
	}

	requiredDays := decimal.NewFromInt(int64(breakdown.ChargeableDays()))

	var bal *balance.Balance
	if r.Kind == KindVacation {
		var balanceID *string
		if r.BalanceID != nil {
			sID := r.BalanceID.String()
			balanceID = &sID
		}
		bal, err = s.loadBalance(ctx, tx, balanceID, r.EmployeeID.String())
		if err != nil {
			return AbsenceResponse{}, err
		}
		if err := balance.AuthorizeDebit(bal, requiredDays); err != nil {
			return AbsenceResponse{}, err
		}
	}

	// Satu klaim ledger per tanggal chargeable.
	for _, date := range breakdown.ChargeableDates {
		if err := s.claimDate(ctx, qledger, r, date); err != nil {
			s.logger.Warn("approve absence ledger claim failed",
				zap.String("request_id", id),
				zap.Time("date", date),
				zap.Error(err),
			)
			return AbsenceResponse{}, err
		}
	}

	if r.Kind == KindVacation {
		balance.CommitDebit(bal, requiredDays)
		if err := qbalance.Update(ctx, bal); err != nil {
			s.logger.Error("approve absence balance update failed", zap.Error(err))
			return AbsenceResponse{}, err
		}
	}

	now := time.Now().UTC()
	r.Status = StatusApproved
	r.ApproverID = &actorUUID
	r.DecidedAt = &now
	r.TotalDays = breakdown.ChargeableDays()

	if err := qtx.Update(ctx, r); err != nil {
		s.logger.Error("approve absence persist failed", zap.Error(err))
		return AbsenceResponse{}, err
	}

	if err := s.enqueueDecided(ctx, tx, r, ""); err != nil {
		s.logger.Error("approve absence enqueue notification failed", zap.Error(err))
		return AbsenceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("approve absence commit failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	s.logger.Info("approve absence success",
		zap.String("request_id", id),
		zap.String("employee_id", r.EmployeeID.String()),
		zap.Int("chargeable_days", r.TotalDays),
	)

	return mapToResponse(*r, &breakdown), nil
}

func (s *service) Reject(ctx context.Context, actorID, id, reason string) (AbsenceResponse, error) {
	s.logger.Debug("reject absence requested",
		zap.String("request_id", id),
		zap.String("actor_id", actorID),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return AbsenceResponse{}, absenceerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reject absence begin tx failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	r, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AbsenceResponse{}, absenceerrors.ErrRequestNotFound
		}
		return AbsenceResponse{}, err
	}

	if r.Status != StatusPending {
		// Menolak request yang sudah diputus adalah error, bukan no-op.
		return AbsenceResponse{}, absenceerrors.ErrRequestNotEditable
	}
	if r.ApproverID != nil && *r.ApproverID != actorUUID {
		return AbsenceResponse{}, absenceerrors.ErrNotAuthorizedApprover
	}

	now := time.Now().UTC()
	r.Status = StatusRejected
	r.ApproverID = &actorUUID
	r.DecidedAt = &now

	if err := qtx.Update(ctx, r); err != nil {
		s.logger.Error("reject absence persist failed", zap.Error(err))
		return AbsenceResponse{}, err
	}

	if err := s.enqueueDecided(ctx, tx, r, reason); err != nil {
		s.logger.Error("reject absence enqueue notification failed", zap.Error(err))
		return AbsenceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reject absence commit failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	s.logger.Info("reject absence success", zap.String("request_id", id))

	return mapToResponse(*r, nil), nil
}

func (s *service) loadBalance(ctx context.Context, tx *sql.Tx, balanceID *string, employeeID string) (*balance.Balance, error) {
	qbalance := s.balanceRepo.WithTx(tx)

	var bal *balance.Balance
	var err error
	if balanceID != nil && *balanceID != "" {
		if _, parseErr := uuid.Parse(*balanceID); parseErr != nil {
			return nil, absenceerrors.ErrInvalidBalanceID
		}
		bal, err = qbalance.FindByID(ctx, *balanceID)
	} else {
		bal, err = qbalance.FindByEmployee(ctx, employeeID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, balanceerrors.ErrBalanceNotFound
		}
		return nil, err
	}
	if bal.EmployeeID.String() != employeeID {
		return nil, absenceerrors.ErrInvalidBalanceID
	}
	return bal, nil
}

func (s *service) claimDate(ctx context.Context, qledger ledger.Repository, r *Request, date time.Time) error {
	entry, err := qledger.FindByEmployeeAndDate(ctx, r.EmployeeID.String(), date)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		entry = &ledger.DailyEntry{
			ID:         uuid.New(),
			EmployeeID: r.EmployeeID,
			EntryDate:  date,
		}
	}
	if err := entry.Claim(r.Channel(), r.ID); err != nil {
		return err
	}
	return qledger.Save(ctx, entry)
}

func (s *service) enqueueRequested(ctx context.Context, tx *sql.Tx, r *Request) error {
	approverID := ""
	if r.ApproverID != nil {
		approverID = r.ApproverID.String()
	}
	payload, err := json.Marshal(events.AbsenceRequestedEvent{
		EventType:  "absence.requested",
		RequestID:  r.ID.String(),
		EmployeeID: r.EmployeeID.String(),
		ApproverID: approverID,
		Kind:       r.Kind,
		StartDate:  r.StartDate.Format(calendar.DateFormat),
		EndDate:    r.EndDate.Format(calendar.DateFormat),
		TotalDays:  r.TotalDays,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, notification.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "absence_request",
		AggregateID:   r.ID.String(),
		EventType:     "absence.requested",
		Topic:         events.AbsenceRequestedTopic,
		Payload:       payload,
		Status:        notification.OutboxStatusPending,
	})
}

func (s *service) enqueueDecided(ctx context.Context, tx *sql.Tx, r *Request, reason string) error {
	approverID := ""
	if r.ApproverID != nil {
		approverID = r.ApproverID.String()
	}
	eventType := "absence.approved"
	if r.Status == StatusRejected {
		eventType = "absence.rejected"
	}
	payload, err := json.Marshal(events.AbsenceDecidedEvent{
		EventType:  eventType,
		RequestID:  r.ID.String(),
		EmployeeID: r.EmployeeID.String(),
		ApproverID: approverID,
		Kind:       r.Kind,
		Status:     r.Status,
		StartDate:  r.StartDate.Format(calendar.DateFormat),
		EndDate:    r.EndDate.Format(calendar.DateFormat),
		TotalDays:  r.TotalDays,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, notification.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "absence_request",
		AggregateID:   r.ID.String(),
		EventType:     eventType,
		Topic:         events.AbsenceDecidedTopic,
		Payload:       payload,
		Status:        notification.OutboxStatusPending,
	})
}

func mapToResponse(r Request, breakdown *DayBreakdown) AbsenceResponse {
	resp := AbsenceResponse{
		ID:            r.ID.String(),
		RequestNumber: r.RequestNumber,
		EmployeeID:    r.EmployeeID.String(),
		Kind:          r.Kind,
		StartDate:     r.StartDate.Format(calendar.DateFormat),
		EndDate:       r.EndDate.Format(calendar.DateFormat),
		Status:        r.Status,
		Reason:        r.Reason,
		Paid:          r.Paid,
		TotalDays:     r.TotalDays,
		TotalHours:    r.TotalHours.String(),
		CreatedBy:     r.CreatedBy.String(),
	}
	if r.ApproverID != nil {
		v := r.ApproverID.String()
		resp.ApproverID = &v
	}
	if r.BalanceID != nil {
		v := r.BalanceID.String()
		resp.BalanceID = &v
	}
	if r.DecidedAt != nil {
		v := r.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	if breakdown != nil {
		resp.ChargeableDates = formatDates(breakdown.ChargeableDates)
		resp.RestDates = formatDates(breakdown.RestDates)
		resp.HolidayDates = formatDates(breakdown.HolidayDates)
	}
	return resp
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(calendar.DateFormat)
	}
	return out
}

func mapToListResponse(requests []Request) []AbsenceResponse {
	resp := make([]AbsenceResponse, len(requests))
	for i, r := range requests {
		resp[i] = mapToResponse(r, nil)
	}
	return resp
}
