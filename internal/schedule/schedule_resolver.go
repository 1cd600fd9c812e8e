package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-workforce/internal/calendar"
	scheduleerrors "go-workforce/internal/schedule/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// DayClass classifies a date against a work schedule template.
type DayClass string

const (
	DayWorking DayClass = "WORKING"
	DayRest    DayClass = "REST"
)

// Classify returns WORKING iff the date's weekday is in the template's
// working set. A weekday in neither set counts as REST: ambiguous
// configuration must not consume entitlement.
func Classify(date time.Time, tmpl *WorkScheduleTemplate) DayClass {
	if tmpl.WorkingSet()[calendar.WeekdayOf(date)] {
		return DayWorking
	}
	return DayRest
}

//go:generate mockgen -source=schedule_resolver.go -destination=mock/schedule_resolver_mock.go -package=mock
type Resolver interface {
	// ResolveActiveContract returns the single authoritative active
	// contract for the employee.
	ResolveActiveContract(ctx context.Context, employeeID string) (*Contract, error)
	// ResolveActiveSchedule returns the employee's active contract and
	// the contract's active work schedule template.
	ResolveActiveSchedule(ctx context.Context, employeeID string) (*Contract, *WorkScheduleTemplate, error)
	// ResolveHolidays returns the public holidays inside the period,
	// keyed by normalized date. An empty map is a valid result.
	ResolveHolidays(ctx context.Context, period calendar.Period) (map[time.Time]Holiday, error)
}

type resolver struct {
	repo   Repository
	rdb    *redis.Client
	group  singleflight.Group
	logger *zap.Logger
}

const holidayCacheTTL = 6 * time.Hour

// NewResolver builds the schedule/holiday resolver. rdb may be nil; the
// holiday cache then degrades to direct repository reads.
func NewResolver(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Resolver {
	l := zap.L().Named("schedule.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("schedule.resolver")
	}
	return &resolver{repo: repo, rdb: rdb, logger: l}
}

func (r *resolver) ResolveActiveContract(ctx context.Context, employeeID string) (*Contract, error) {
	contract, err := r.repo.FindActiveContract(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduleerrors.ErrNoActiveContract
		}
		return nil, err
	}
	return contract, nil
}

func (r *resolver) ResolveActiveSchedule(ctx context.Context, employeeID string) (*Contract, *WorkScheduleTemplate, error) {
	contract, err := r.ResolveActiveContract(ctx, employeeID)
	if err != nil {
		return nil, nil, err
	}

	tmpl, err := r.repo.FindActiveTemplate(ctx, contract.ID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("contract without active schedule template",
				zap.String("employee_id", employeeID),
				zap.String("contract_id", contract.ID.String()),
			)
			return nil, nil, scheduleerrors.ErrNoActiveSchedule
		}
		return nil, nil, err
	}

	return contract, tmpl, nil
}

func (r *resolver) ResolveHolidays(ctx context.Context, period calendar.Period) (map[time.Time]Holiday, error) {
	start := period.Start
	end := period.LastDate()
	cacheKey := fmt.Sprintf("holidays:%s:%s",
		start.Format(calendar.DateFormat), end.Format(calendar.DateFormat))

	if cached, ok := r.cacheGet(ctx, cacheKey); ok {
		return indexHolidays(cached), nil
	}

	// singleflight menekan stampede saat banyak request periode sama.
	v, err, _ := r.group.Do(cacheKey, func() (any, error) {
		holidays, err := r.repo.FindHolidaysInRange(ctx, start, end)
		if err != nil {
			return nil, err
		}
		r.cacheSet(ctx, cacheKey, holidays)
		return holidays, nil
	})
	if err != nil {
		return nil, err
	}

	return indexHolidays(v.([]Holiday)), nil
}

func (r *resolver) cacheGet(ctx context.Context, key string) ([]Holiday, bool) {
	if r.rdb == nil {
		return nil, false
	}
	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("holiday cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var holidays []Holiday
	if err := json.Unmarshal([]byte(raw), &holidays); err != nil {
		r.logger.Warn("holiday cache decode failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return holidays, true
}

func (r *resolver) cacheSet(ctx context.Context, key string, holidays []Holiday) {
	if r.rdb == nil {
		return
	}
	raw, err := json.Marshal(holidays)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, key, raw, holidayCacheTTL).Err(); err != nil {
		r.logger.Warn("holiday cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func indexHolidays(holidays []Holiday) map[time.Time]Holiday {
	byDate := make(map[time.Time]Holiday, len(holidays))
	for _, h := range holidays {
		byDate[calendar.DateOnly(h.HolidayDate)] = h
	}
	return byDate
}
