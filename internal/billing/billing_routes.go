package billing

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ajbcloud/FutsalCulture-sub006/config"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/audit"
	mw "github.com/ajbcloud/FutsalCulture-sub006/internal/middleware"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/tenant"
	"github.com/ajbcloud/FutsalCulture-sub006/pkg/rmiddleware"
)

// BillingRoutes sets up the checkout endpoint and the processor webhook.
func BillingRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	subs := NewSubscriptionRepository(db)
	processor := NewStripeProcessor(appConfig.Stripe.SecretKey)
	recorder := audit.NewRecorder(db)
	service := NewService(subs, processor, recorder, appConfig.Stripe.WebhookSecret, appConfig.App.BaseURL)
	controller := NewBillingController(service, recorder)

	tenantRepo := tenant.NewTenantRepository(db)

	// The processor signs its payloads; the signature is the auth.
	router.POST("/billing/webhook", controller.Webhook)

	authRoutes := router.Group("/")
	authRoutes.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		authRoutes.POST("/billing/checkout", rmiddleware.OwnerMiddleware(tenantRepo), controller.Checkout)
	}
}
