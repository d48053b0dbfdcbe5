package tenant

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajbcloud/FutsalCulture-sub006/config"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/audit"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/middleware"
	"github.com/ajbcloud/FutsalCulture-sub006/pkg/responses"
	"github.com/ajbcloud/FutsalCulture-sub006/pkg/token"
)

// TenantController handles tenant context switching and join-code rotation.
type TenantController struct {
	repo      TenantRepository
	service   *Service
	recorder  audit.Recorder
	appConfig *config.Config
}

func NewTenantController(repo TenantRepository, service *Service, recorder audit.Recorder, appConfig *config.Config) *TenantController {
	return &TenantController{
		repo:      repo,
		service:   service,
		recorder:  recorder,
		appConfig: appConfig,
	}
}

type SwitchTenantRequest struct {
	TenantID uint `json:"tenant_id" binding:"required"`
}

// SwitchTenant godoc
// @Summary Switch the caller's active organization
// @Tags Tenants
// @Accept json
// @Produce json
// @Param body body SwitchTenantRequest true "Target organization"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Security ApiKeyAuth
// @Router /tenants/switch [post]
func (tc *TenantController) SwitchTenant(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	var req SwitchTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	m, err := tc.repo.GetMembership(req.TenantID, userID)
	if err != nil {
		responses.InternalServerError(c, "Failed to check membership")
		return
	}
	if m == nil {
		responses.Forbidden(c, "You are not a member of this organization")
		return
	}

	accessToken, err := token.GenerateJWT(userID, req.TenantID, tc.appConfig.JWT.AccessTokenSecret, tc.appConfig.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		responses.InternalServerError(c, "Failed to issue access token")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Active organization switched", gin.H{
		"access_token": accessToken,
		"tenant_id":    req.TenantID,
		"role":         m.Role,
	})
}

// RotateJoinCode godoc
// @Summary Rotate the organization's join code
// @Description Issues a fresh join code; the old one stops working immediately.
// @Tags Tenants
// @Produce json
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Security ApiKeyAuth
// @Router /tenant/code/rotate [post]
func (tc *TenantController) RotateJoinCode(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	tenantID, err := middleware.GetActiveTenantID(c)
	if err != nil {
		responses.Forbidden(c, err.Error())
		return
	}

	newCode, err := tc.service.RotateJoinCode(tenantID)
	if err != nil {
		responses.InternalServerError(c, "Failed to rotate join code")
		return
	}

	tc.recorder.Record(tenantID, userID, audit.EventJoinCodeRotated, 0, nil)

	responses.SendSuccess(c, http.StatusOK, "Join code rotated", gin.H{
		"join_code": newCode,
	})
}
