package admission

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ajbcloud/FutsalCulture-sub006/config"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/audit"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/billing"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/consent"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/identity"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/invite"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/mailer"
	mw "github.com/ajbcloud/FutsalCulture-sub006/internal/middleware"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/tenant"
	"github.com/ajbcloud/FutsalCulture-sub006/pkg/ratelimit"
	"github.com/ajbcloud/FutsalCulture-sub006/pkg/rmiddleware"
)

// AdmissionRoutes sets up onboarding, join and invite management routes.
// The public endpoints sit behind the rate limiter; invite management
// requires an authenticated owner or coach.
func AdmissionRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	mail := mailer.NewLogMailer()
	recorder := audit.NewRecorder(db)

	tenantRepo := tenant.NewTenantRepository(db)
	tenantSvc := tenant.NewService(tenantRepo)

	tokenRepo := invite.NewTokenRepository(db)
	tokenSvc := invite.NewTokenService(
		tokenRepo,
		mail,
		appConfig.App.BaseURL,
		time.Duration(appConfig.Tokens.InviteTTLHours)*time.Hour,
		time.Duration(appConfig.Tokens.VerifyTTLHours)*time.Hour,
	)

	subsRepo := billing.NewSubscriptionRepository(db)
	processor := billing.NewStripeProcessor(appConfig.Stripe.SecretKey)
	billingSvc := billing.NewService(subsRepo, processor, recorder, appConfig.Stripe.WebhookSecret, appConfig.App.BaseURL)

	service := NewService(
		tenantRepo,
		tenantSvc,
		tokenSvc,
		consent.NewRepository(db),
		billingSvc,
		identity.NewService(db),
		recorder,
		mail,
		appConfig.App.ConsentPolicyVersion,
	)
	controller := NewAdmissionController(service, appConfig)

	limiter := ratelimit.New(
		time.Duration(appConfig.RateLimit.WindowSeconds)*time.Second,
		appConfig.RateLimit.MaxRequests,
	)

	public := router.Group("/")
	public.Use(limiter.Middleware())
	{
		public.POST("/get-started", controller.GetStarted)
		public.POST("/join/by-token", controller.JoinByToken)
		public.POST("/join/by-code", controller.JoinByCode)
		public.POST("/verify-email", controller.VerifyEmail)
	}

	invites := router.Group("/invites")
	invites.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	invites.Use(rmiddleware.InviteIssuerMiddleware(tenantRepo))
	{
		invites.POST("", controller.IssueInvite)
		invites.POST("/resend", controller.ResendInvite)
		invites.POST("/revoke", controller.RevokeInvite)
	}
}
