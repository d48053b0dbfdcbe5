package main

import (
	"log"

	"github.com/ajbcloud/FutsalCulture-sub006/config"
	_ "github.com/ajbcloud/FutsalCulture-sub006/docs"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/audit"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/billing"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/consent"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/invite"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/tenant"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/user"
	"github.com/ajbcloud/FutsalCulture-sub006/routes"
)

// @title FutsalCulture Admission API
// @version 1.0
// @description Organization onboarding, invitations, joining and billing sync.
// @host localhost:8088
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	err := config.DB.AutoMigrate(
		&user.User{},
		&tenant.Tenant{}, &tenant.Membership{}, &tenant.PendingJoinRequest{},
		&invite.InviteToken{}, &invite.VerifyToken{},
		&consent.Record{}, &consent.ParentPlayerLink{},
		&billing.Subscription{},
		&audit.Event{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	r := routes.SetupRoutes(config.DB, cfg)

	// Use port from loaded configuration
	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
