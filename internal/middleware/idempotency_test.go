package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-workforce/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newMutationRouter(rdb *redis.Client, withUser bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if withUser {
		r.Use(func(c *gin.Context) { c.Set("user_id", "user-1") })
	}
	r.POST("/absences", middleware.ExtractUserID(), middleware.Idempotency(rdb), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestIdempotency(t *testing.T) {
	t.Run("success - request without idempotency key passes through", func(t *testing.T) {
		// Alamat sengaja mati; tanpa header, redis tidak boleh disentuh.
		rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
		router := newMutationRouter(rdb, true)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/absences", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("success - degraded mode without redis passes through", func(t *testing.T) {
		router := newMutationRouter(nil, true)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/absences", nil)
		req.Header.Set("Idempotency-Key", "abc-123")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative - missing auth context rejected before idempotency", func(t *testing.T) {
		router := newMutationRouter(nil, false)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/absences", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
