package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EmployeeLocker serializes mutating operations per employee. Scheduling
// decisions are check-then-act: two concurrent approvals for the same
// employee could both pass conflict detection against a stale read, so
// every create/approve that touches an employee's ledger or balance runs
// under this lock. Different employees proceed in parallel.
type EmployeeLocker interface {
	Acquire(ctx context.Context, employeeID string) (release func(), err error)
}

const (
	lockTTL       = 30 * time.Second
	acquireRetry  = 50 * time.Millisecond
	lockKeyPrefix = "lock:employee:"
)

type redisLocker struct {
	rdb *redis.Client
}

// NewRedisLocker returns a lease-based locker shared across API instances.
// The TTL bounds how long a crashed holder can block an employee.
func NewRedisLocker(rdb *redis.Client) EmployeeLocker {
	return &redisLocker{rdb: rdb}
}

func (l *redisLocker) Acquire(ctx context.Context, employeeID string) (func(), error) {
	key := lockKeyPrefix + employeeID
	token := uuid.New().String()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(acquireRetry):
		}
	}

	release := func() {
		// Compare-and-delete atomik; lease yang sudah kedaluwarsa
		// mungkin sudah diambil pemegang lain dan tidak boleh
		// ikut terhapus.
		releaseScript.Run(context.Background(), l.rdb, []string{key}, token)
	}
	return release, nil
}

var releaseScript = redis.NewScript(
	`if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) end return 0`,
)

type keyedLocker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedLocker returns an in-process locker for single-instance
// deployments and tests.
func NewKeyedLocker() EmployeeLocker {
	return &keyedLocker{locks: make(map[string]*entry)}
}

func (l *keyedLocker) Acquire(ctx context.Context, employeeID string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[employeeID]
	if !ok {
		e = &entry{}
		l.locks[employeeID] = e
	}
	e.refs++
	l.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		e.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-ctx.Done():
		go func() {
			<-acquired
			l.release(employeeID, e)
		}()
		return nil, ctx.Err()
	}

	return func() { l.release(employeeID, e) }, nil
}

func (l *keyedLocker) release(employeeID string, e *entry) {
	e.mu.Unlock()
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, employeeID)
	}
	l.mu.Unlock()
}
