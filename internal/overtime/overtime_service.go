package overtime

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-workforce/internal/calendar"
	"go-workforce/internal/events"
	"go-workforce/internal/notification"
	overtimeerrors "go-workforce/internal/overtime/errors"
	"go-workforce/internal/schedule"
	"go-workforce/internal/shared/contextutil"
	"go-workforce/internal/shared/counter"
	"go-workforce/internal/shared/lock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=overtime_service.go -destination=mock/overtime_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateOvertimeRequest) (OvertimeResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateOvertimeRequest) (OvertimeResponse, error)
	GetAll(ctx context.Context) ([]OvertimeResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]OvertimeResponse, error)
	GetByID(ctx context.Context, id string) (OvertimeResponse, error)
	Approve(ctx context.Context, actorID, id string, req ApproveOvertimeRequest) (OvertimeResponse, error)
	Reject(ctx context.Context, actorID, id, reason string) (OvertimeResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	resolver schedule.Resolver
	locks    lock.EmployeeLocker
	outbox   notification.OutboxRepository
	counters counter.Repository
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	resolver schedule.Resolver,
	locks lock.EmployeeLocker,
	outbox notification.OutboxRepository,
	counters counter.Repository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("overtime.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("overtime.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		resolver: resolver,
		locks:    locks,
		outbox:   outbox,
		counters: counters,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateOvertimeRequest) (OvertimeResponse, error) {
	s.logger.Debug("create overtime requested",
		zap.String("actor_id", actorID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("work_date", req.WorkDate),
		zap.String("requested_hours", req.RequestedHours),
	)

	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidEmployeeID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidActorID
	}
	var approverUUID *uuid.UUID
	if req.ApproverID != nil && *req.ApproverID != "" {
		parsed, err := uuid.Parse(*req.ApproverID)
		if err != nil {
			return OvertimeResponse{}, overtimeerrors.ErrInvalidActorID
		}
		approverUUID = &parsed
	}
	typeUUID, err := uuid.Parse(req.OvertimeTypeID)
	if err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidOvertimeTypeID
	}

	workDate, err := calendar.ParseDate(req.WorkDate)
	if err != nil {
		return OvertimeResponse{}, err
	}
	requestedHours, err := decimal.NewFromString(req.RequestedHours)
	if err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidHours
	}

	// Serialisasi per karyawan, sama seperti alur absence.
	release, err := s.locks.Acquire(ctx, req.EmployeeID)
	if err != nil {
		s.logger.Error("create overtime acquire lock failed", zap.Error(err))
		return OvertimeResponse{}, err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create overtime begin tx failed", zap.Error(err))
		return OvertimeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	contract, err := s.resolver.ResolveActiveContract(ctx, req.EmployeeID)
	if err != nil {
		s.logger.Warn("create overtime contract resolution failed",
			zap.String("employee_id", req.EmployeeID),
			zap.Error(err),
		)
		return OvertimeResponse{}, err
	}

	if err := ValidateHours(contract.DailyHours, requestedHours); err != nil {
		s.logger.Warn("create overtime hours rejected",
			zap.String("employee_id", req.EmployeeID),
			zap.String("ordinary_hours", contract.DailyHours.String()),
			zap.String("requested_hours", requestedHours.String()),
		)
		return OvertimeResponse{}, err
	}

	if _, err := qtx.FindType(ctx, req.OvertimeTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OvertimeResponse{}, overtimeerrors.ErrOvertimeTypeNotFound
		}
		return OvertimeResponse{}, err
	}

	existing, err := qtx.FindPendingByEmployeeAndDate(ctx, req.EmployeeID, workDate)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return OvertimeResponse{}, err
	}
	if existing != nil {
		s.logger.Warn("create overtime duplicate pending",
			zap.String("employee_id", req.EmployeeID),
			zap.String("work_date", req.WorkDate),
			zap.String("existing_id", existing.ID.String()),
		)
		return OvertimeResponse{}, overtimeerrors.ErrDuplicateRequest
	}

	seq, err := s.counters.GetNextValue(ctx, "overtime_request")
	if err != nil {
		s.logger.Error("create overtime counter failed", zap.Error(err))
		return OvertimeResponse{}, err
	}

	r := &Request{
		ID:             uuid.New(),
		RequestNumber:  fmt.Sprintf("OT-%06d", seq),
		EmployeeID:     employeeUUID,
		ApproverID:     approverUUID,
		OvertimeTypeID: typeUUID,
		WorkDate:       workDate,
		RequestedHours: requestedHours,
		ApprovedHours:  decimal.Zero,
		Reason:         req.Reason,
		Status:         StatusPending,
		CreatedBy:      actorUUID,
	}

	if err := qtx.Create(ctx, r); err != nil {
		s.logger.Error("create overtime persist failed", zap.Error(err))
		return OvertimeResponse{}, err
	}

	if err := s.enqueueRequested(ctx, tx, r); err != nil {
		s.logger.Error("create overtime enqueue notification failed", zap.Error(err))
		return OvertimeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create overtime commit failed", zap.Error(err))
		return OvertimeResponse{}, err
	}
	s.logger.Info("create overtime success",
		zap.String("request_id", r.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("work_date", req.WorkDate),
	)

	return mapToResponse(*r), nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateOvertimeRequest) (OvertimeResponse, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidActorID
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OvertimeResponse{}, overtimeerrors.ErrRequestNotFound
		}
		return OvertimeResponse{}, err
	}

	release, err := s.locks.Acquire(ctx, current.EmployeeID.String())
	if err != nil {
		return OvertimeResponse{}, err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return OvertimeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	r, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OvertimeResponse{}, overtimeerrors.ErrRequestNotFound
		}
		return OvertimeResponse{}, err
	}
	if r.Status != StatusPending {
		return OvertimeResponse{}, overtimeerrors.ErrRequestNotEditable
	}

	if req.OvertimeTypeID != nil {
		typeUUID, err := uuid.Parse(*req.OvertimeTypeID)
		if err != nil {
			return OvertimeResponse{}, overtimeerrors.ErrInvalidOvertimeTypeID
		}
		if _, err := qtx.FindType(ctx, *req.OvertimeTypeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return OvertimeResponse{}, overtimeerrors.ErrOvertimeTypeNotFound
			}
			return OvertimeResponse{}, err
		}
		r.OvertimeTypeID = typeUUID
	}
	if req.WorkDate != nil {
		workDate, err := calendar.ParseDate(*req.WorkDate)
		if err != nil {
			return OvertimeResponse{}, err
		}
		if !workDate.Equal(r.WorkDate) {
			existing, err := qtx.FindPendingByEmployeeAndDate(ctx, r.EmployeeID.String(), workDate)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return OvertimeResponse{}, err
			}
			if existing != nil && existing.ID != r.ID {
				return OvertimeResponse{}, overtimeerrors.ErrDuplicateRequest
			}
			r.WorkDate = workDate
		}
	}
	if req.RequestedHours != nil {
		requestedHours, err := decimal.NewFromString(*req.RequestedHours)
		if err != nil {
			return OvertimeResponse{}, overtimeerrors.ErrInvalidHours
		}
		r.RequestedHours = requestedHours
	}
	if req.Reason != nil {
		r.Reason = *req.Reason
	}

	contract, err := s.resolver.ResolveActiveContract(ctx, r.EmployeeID.String())
	if err != nil {
		return OvertimeResponse{}, err
	}
	if err := ValidateHours(contract.DailyHours, r.RequestedHours); err != nil {
		return OvertimeResponse{}, err
	}

	if err := qtx.Update(ctx, r); err != nil {
		s.logger.Error("update overtime persist failed", zap.Error(err))
		return OvertimeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return OvertimeResponse{}, err
	}
	s.logger.Info("update overtime success", zap.String("request_id", id))

	return mapToResponse(*r), nil
}

func (s *service) GetAll(ctx context.Context) ([]OvertimeResponse, error) {
	requests, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]OvertimeResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, overtimeerrors.ErrInvalidEmployeeID
	}
	requests, err := s.repo.FindAllByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetByID(ctx context.Context, id string) (OvertimeResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OvertimeResponse{}, overtimeerrors.ErrRequestNotFound
		}
		return OvertimeResponse{}, err
	}
	return mapToResponse(*r), nil
}

func (s *service) Approve(ctx context.Context, actorID, id string, req ApproveOvertimeRequest) (OvertimeResponse, error) {
	s.logger.Debug("approve overtime requested",
		zap.String("request_id", id),
		zap.String("actor_id", actorID),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidActorID
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OvertimeResponse{}, overtimeerrors.ErrRequestNotFound
		}
		return OvertimeResponse{}, err
	}

	release, err := s.locks.Acquire(ctx, current.EmployeeID.String())
	if err != nil {
		s.logger.Error("approve overtime acquire lock failed", zap.Error(err))
		return OvertimeResponse{}, err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return OvertimeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	r, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OvertimeResponse{}, overtimeerrors.ErrRequestNotFound
		}
		return OvertimeResponse{}, err
	}
	if r.Status != StatusPending {
		s.logger.Warn("approve overtime not pending",
			zap.String("request_id", id),
			zap.String("status", r.Status),
		)
		return OvertimeResponse{}, overtimeerrors.ErrRequestNotEditable
	}
	if r.ApproverID != nil && *r.ApproverID != actorUUID {
		return OvertimeResponse{}, overtimeerrors.ErrNotAuthorizedApprover
	}

	approvedHours := r.RequestedHours
	if req.ApprovedHours != nil {
		parsed, err := decimal.NewFromString(*req.ApprovedHours)
		if err != nil || parsed.LessThanOrEqual(decimal.Zero) {
			return OvertimeResponse{}, overtimeerrors.ErrInvalidHours
		}
		if parsed.GreaterThan(r.RequestedHours) {
			return OvertimeResponse{}, overtimeerrors.ErrApprovedHoursExceedRequested
		}
		approvedHours = parsed
	}

	now := time.Now().UTC()
	r.Status = StatusApproved
	r.ApproverID = &actorUUID
	r.ApprovedHours = approvedHours
	r.DecidedAt = &now

	if err := qtx.Update(ctx, r); err != nil {
		s.logger.Error("approve overtime persist failed", zap.Error(err))
		return OvertimeResponse{}, err
	}

	if err := s.enqueueDecided(ctx, tx, r); err != nil {
		s.logger.Error("approve overtime enqueue notification failed", zap.Error(err))
		return OvertimeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return OvertimeResponse{}, err
	}
	s.logger.Info("approve overtime success",
		zap.String("request_id", id),
		zap.String("approved_hours", approvedHours.String()),
	)

	return mapToResponse(*r), nil
}

func (s *service) Reject(ctx context.Context, actorID, id, reason string) (OvertimeResponse, error) {
	s.logger.Debug("reject overtime requested",
		zap.String("request_id", id),
		zap.String("actor_id", actorID),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidActorID
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OvertimeResponse{}, overtimeerrors.ErrRequestNotFound
		}
		return OvertimeResponse{}, err
	}

	release, err := s.locks.Acquire(ctx, current.EmployeeID.String())
	if err != nil {
		return OvertimeResponse{}, err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return OvertimeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	r, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OvertimeResponse{}, overtimeerrors.ErrRequestNotFound
		}
		return OvertimeResponse{}, err
	}
	if r.Status != StatusPending {
		return OvertimeResponse{}, overtimeerrors.ErrRequestNotEditable
	}
	if r.ApproverID != nil && *r.ApproverID != actorUUID {
		return OvertimeResponse{}, overtimeerrors.ErrNotAuthorizedApprover
	}

	now := time.Now().UTC()
	r.Status = StatusRejected
	r.ApproverID = &actorUUID
	r.ApprovedHours = decimal.Zero
	r.DecidedAt = &now
	if reason != "" {
		r.Reason = reason
	}

	if err := qtx.Update(ctx, r); err != nil {
		s.logger.Error("reject overtime persist failed", zap.Error(err))
		return OvertimeResponse{}, err
	}

	if err := s.enqueueDecided(ctx, tx, r); err != nil {
		s.logger.Error("reject overtime enqueue notification failed", zap.Error(err))
		return OvertimeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return OvertimeResponse{}, err
	}
	s.logger.Info("reject overtime success", zap.String("request_id", id))

	return mapToResponse(*r), nil
}

func (s *service) enqueueRequested(ctx context.Context, tx *sql.Tx, r *Request) error {
	approverID := ""
	if r.ApproverID != nil {
		approverID = r.ApproverID.String()
	}
	payload, err := json.Marshal(events.OvertimeRequestedEvent{
		EventType:      "overtime.requested",
		RequestID:      r.ID.String(),
		EmployeeID:     r.EmployeeID.String(),
		ApproverID:     approverID,
		WorkDate:       r.WorkDate.Format(calendar.DateFormat),
		RequestedHours: r.RequestedHours.String(),
		OccurredAt:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, notification.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "overtime_request",
		AggregateID:   r.ID.String(),
		EventType:     "overtime.requested",
		Topic:         events.OvertimeRequestedTopic,
		Payload:       payload,
		Status:        notification.OutboxStatusPending,
	})
}

func (s *service) enqueueDecided(ctx context.Context, tx *sql.Tx, r *Request) error {
	approverID := ""
	if r.ApproverID != nil {
		approverID = r.ApproverID.String()
	}
	eventType := "overtime.approved"
	if r.Status == StatusRejected {
		eventType = "overtime.rejected"
	}
	payload, err := json.Marshal(events.OvertimeDecidedEvent{
		EventType:      eventType,
		RequestID:      r.ID.String(),
		EmployeeID:     r.EmployeeID.String(),
		ApproverID:     approverID,
		Status:         r.Status,
		WorkDate:       r.WorkDate.Format(calendar.DateFormat),
		RequestedHours: r.RequestedHours.String(),
		ApprovedHours:  r.ApprovedHours.String(),
		OccurredAt:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, notification.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "overtime_request",
		AggregateID:   r.ID.String(),
		EventType:     eventType,
		Topic:         events.OvertimeDecidedTopic,
		Payload:       payload,
		Status:        notification.OutboxStatusPending,
	})
}

func mapToResponse(r Request) OvertimeResponse {
	resp := OvertimeResponse{
		ID:             r.ID.String(),
		RequestNumber:  r.RequestNumber,
		EmployeeID:     r.EmployeeID.String(),
		OvertimeTypeID: r.OvertimeTypeID.String(),
		WorkDate:       r.WorkDate.Format(calendar.DateFormat),
		RequestedHours: r.RequestedHours.String(),
		ApprovedHours:  r.ApprovedHours.String(),
		Reason:         r.Reason,
		Status:         r.Status,
	}
	if r.ApproverID != nil {
		approverID := r.ApproverID.String()
		resp.ApproverID = &approverID
	}
	if r.DecidedAt != nil {
		decidedAt := r.DecidedAt.UTC().Format(time.RFC3339)
		resp.DecidedAt = &decidedAt
	}
	return resp
}

func mapToListResponse(requests []Request) []OvertimeResponse {
	responses := make([]OvertimeResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, mapToResponse(r))
	}
	return responses
}
