package lock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-workforce/internal/shared/lock"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// commandRecorder menangkap perintah redis tanpa server sungguhan.
type commandRecorder struct {
	commands *[]redis.Cmder
}

func (h commandRecorder) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h commandRecorder) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		*h.commands = append(*h.commands, cmd)
		switch c := cmd.(type) {
		case *redis.BoolCmd:
			c.SetVal(true)
		case *redis.Cmd:
			c.SetVal(int64(1))
		}
		return nil
	}
}

func (h commandRecorder) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRedisLocker_Release(t *testing.T) {
	t.Run("success - release is a single compare-and-delete script call", func(t *testing.T) {
		var commands []redis.Cmder
		rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
		rdb.AddHook(commandRecorder{commands: &commands})

		locker := lock.NewRedisLocker(rdb)
		release, err := locker.Acquire(context.Background(), "emp-1")
		assert.NoError(t, err)

		release()

		assert.Len(t, commands, 2)
		assert.Equal(t, "set", commands[0].Name())
		// Bukan pasangan GET lalu DEL; lease orang lain tidak boleh
		// terhapus kalau lease kita kedaluwarsa di antara dua langkah.
		assert.Equal(t, "evalsha", commands[1].Name())
		assert.Contains(t, commands[1].Args(), "lock:employee:emp-1")
	})
}

func TestKeyedLocker(t *testing.T) {
	t.Run("success - serializes same employee", func(t *testing.T) {
		locker := lock.NewKeyedLocker()

		release, err := locker.Acquire(context.Background(), "emp-1")
		assert.NoError(t, err)

		var wg sync.WaitGroup
		var second time.Time
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := locker.Acquire(context.Background(), "emp-1")
			assert.NoError(t, err)
			second = time.Now()
			r()
		}()

		time.Sleep(20 * time.Millisecond)
		released := time.Now()
		release()
		wg.Wait()

		assert.False(t, second.Before(released))
	})

	t.Run("negative - cancelled context gives up waiting", func(t *testing.T) {
		locker := lock.NewKeyedLocker()

		release, err := locker.Acquire(context.Background(), "emp-1")
		assert.NoError(t, err)
		defer release()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err = locker.Acquire(ctx, "emp-1")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
