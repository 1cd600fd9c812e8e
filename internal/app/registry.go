package app

import (
	"database/sql"
	"net/http"

	"go-workforce/internal/absence"
	"go-workforce/internal/balance"
	"go-workforce/internal/ledger"
	"go-workforce/internal/notification"
	"go-workforce/internal/overtime"
	"go-workforce/internal/rbac"
	"go-workforce/internal/rbac/infra"
	"go-workforce/internal/schedule"
	"go-workforce/internal/shared/counter"
	"go-workforce/internal/shared/lock"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	scheduleRepo := schedule.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	ledgerRepo := ledger.NewRepository(gormDB)
	absenceRepo := absence.NewRepository(gormDB)
	overtimeRepo := overtime.NewRepository(gormDB)
	outboxRepo := notification.NewOutboxRepository(db)
	counterRepo := counter.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Locking ---
	// Redis lease kalau tersedia, fallback mutex per key dalam proses.
	var locks lock.EmployeeLocker
	if rdb != nil {
		locks = lock.NewRedisLocker(rdb)
	} else {
		locks = lock.NewKeyedLocker()
	}

	// --- Services ---
	resolver := schedule.NewResolver(scheduleRepo, rdb)
	absenceService := absence.NewService(db, absenceRepo, ledgerRepo, balanceRepo, resolver, locks, outboxRepo, counterRepo)
	overtimeService := overtime.NewService(db, overtimeRepo, resolver, locks, outboxRepo, counterRepo)

	// --- Handlers ---
	absenceHandler := absence.NewHandler(absenceService)
	overtimeHandler := overtime.NewHandler(overtimeService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		absence.RegisterRoutes(api, absenceHandler, rbacService, rdb)
		overtime.RegisterRoutes(api, overtimeHandler, rbacService, rdb)
		rbac.RegisterRoutes(api, rbacHandler, rbacService)
	}

	return nil
}
