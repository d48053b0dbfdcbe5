package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/ajbcloud/FutsalCulture-sub006/config"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/admission"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/billing"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/tenant"
)

func SetupRoutes(db *gorm.DB, appConfig *config.Config) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	admission.AdmissionRoutes(api, db, appConfig)
	tenant.TenantRoutes(api, db, appConfig)
	billing.BillingRoutes(api, db, appConfig)

	return r
}
