package tenant

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ajbcloud/FutsalCulture-sub006/config"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/audit"
	mw "github.com/ajbcloud/FutsalCulture-sub006/internal/middleware"
)

// TenantRoutes sets up tenant context and join-code routes.
func TenantRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewTenantRepository(db)
	service := NewService(repo)
	recorder := audit.NewRecorder(db)
	controller := NewTenantController(repo, service, recorder, appConfig)

	authRoutes := router.Group("/")
	authRoutes.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		authRoutes.POST("/tenants/switch", controller.SwitchTenant)
		authRoutes.POST("/tenant/code/rotate", OwnerMiddleware(repo), controller.RotateJoinCode)
	}
}
