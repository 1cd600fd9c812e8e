package absence

import (
	"go-workforce/internal/middleware"
	"go-workforce/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	absences := r.Group("/absences")
	absences.Use(middleware.AuthMiddleware())
	{
		absences.GET("", middleware.RBACAuthorize(rbacService, "absence", "read"), handler.GetAll)
		absences.GET("/:id", middleware.RBACAuthorize(rbacService, "absence", "read"), handler.GetById)

		// Route mutasi dilindungi Idempotency-Key supaya retry client
		// tidak membuat pengajuan ganda.
		mutate := absences.Group("", middleware.ExtractUserID(), middleware.Idempotency(rdb))
		mutate.POST("", middleware.RBACAuthorize(rbacService, "absence", "create"), handler.Create)
		mutate.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "absence", "approve"), handler.Approve)
		mutate.POST("/:id/reject", middleware.RBACAuthorize(rbacService, "absence", "approve"), handler.Reject)
	}
}
