package overtime

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
	overtimes := r.Group("/overtimes")
	overtimes.Use(middleware.AuthMiddleware())
	{
		overtimes.GET("", middleware.RBACAuthorize(rbacService, "overtime", "read"), handler.GetAll)
		overtimes.GET("/:id", middleware.RBACAuthorize(rbacService, "overtime", "read"), handler.GetById)

		mutate := overtimes.Group("", middleware.ExtractUserID(), middleware.Idempotency(rdb))
		mutate.POST("", middleware.RBACAuthorize(rbacService, "overtime", "create"), handler.Create)
		mutate.PUT("/:id", middleware.RBACAuthorize(rbacService, "overtime", "create"), handler.Update)
		mutate.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "overtime", "approve"), handler.Approve)
		mutate.POST("/:id/reject", middleware.RBACAuthorize(rbacService, "overtime", "approve"), handler.Reject)
	}
}
