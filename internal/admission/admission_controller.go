package admission

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajbcloud/FutsalCulture-sub006/config"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/invite"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/middleware"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/tenant"
	"github.com/ajbcloud/FutsalCulture-sub006/pkg/responses"
	"github.com/ajbcloud/FutsalCulture-sub006/pkg/token"
	"github.com/ajbcloud/FutsalCulture-sub006/pkg/validator"
)

// AdmissionController exposes onboarding, invitation and join endpoints.
type AdmissionController struct {
	service   *Service
	appConfig *config.Config
}

func NewAdmissionController(service *Service, appConfig *config.Config) *AdmissionController {
	return &AdmissionController{service: service, appConfig: appConfig}
}

// GetStarted godoc
// @Summary Onboard a new organization
// @Description Creates the organization, its owner membership and its billing record in one step.
// @Tags Admission
// @Accept json
// @Produce json
// @Param body body GetStartedRequest true "Organization details"
// @Success 201 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 502 {object} responses.ErrorResponse
// @Router /get-started [post]
func (ac *AdmissionController) GetStarted(c *gin.Context) {
	var req GetStartedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	result, err := ac.service.GetStarted(req)
	if err != nil {
		if errors.Is(err, ErrBillingUnavailable) {
			responses.SendError(c, http.StatusBadGateway, err.Error())
			return
		}
		responses.InternalServerError(c, "Failed to create organization")
		return
	}

	accessToken, err := token.GenerateJWT(result.UserID, result.TenantID, ac.appConfig.JWT.AccessTokenSecret, ac.appConfig.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		responses.InternalServerError(c, "Failed to issue access token")
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Organization created", gin.H{
		"tenant_id":    result.TenantID,
		"slug":         result.Slug,
		"join_code":    result.JoinCode,
		"user_id":      result.UserID,
		"access_token": accessToken,
	})
}

// IssueInvite godoc
// @Summary Invite a person into the active organization
// @Tags Invites
// @Accept json
// @Produce json
// @Param body body IssueInviteRequest true "Invitee and role"
// @Success 201 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Security ApiKeyAuth
// @Router /invites [post]
func (ac *AdmissionController) IssueInvite(c *gin.Context) {
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

	var req IssueInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	tok, err := ac.service.IssueInvite(tenantID, userID, req)
	if err != nil {
		if errors.Is(err, ErrUnsupportedRole) {
			responses.BadRequest(c, err.Error())
			return
		}
		responses.InternalServerError(c, "Failed to issue invite")
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Invite sent", gin.H{
		"invite_id":  tok.ID,
		"email":      tok.Email,
		"role":       tok.Role,
		"expires_at": tok.ExpiresAt,
	})
}

// ResendInvite godoc
// @Summary Re-deliver a pending invitation
// @Tags Invites
// @Accept json
// @Produce json
// @Param body body InviteActionRequest true "Invite to resend"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Failure 410 {object} responses.ErrorResponse
// @Security ApiKeyAuth
// @Router /invites/resend [post]
func (ac *AdmissionController) ResendInvite(c *gin.Context) {
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

	var req InviteActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	if err := ac.service.ResendInvite(tenantID, userID, req.InviteID); err != nil {
		ac.renderTokenError(c, err, "Failed to resend invite")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Invite resent", nil)
}

// RevokeInvite godoc
// @Summary Revoke a pending invitation
// @Description The token stops working immediately; already-consumed tokens cannot be revoked.
// @Tags Invites
// @Accept json
// @Produce json
// @Param body body InviteActionRequest true "Invite to revoke"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Security ApiKeyAuth
// @Router /invites/revoke [post]
func (ac *AdmissionController) RevokeInvite(c *gin.Context) {
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

	var req InviteActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	if err := ac.service.RevokeInvite(tenantID, userID, req.InviteID); err != nil {
		ac.renderTokenError(c, err, "Failed to revoke invite")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Invite revoked", nil)
}

// JoinByToken godoc
// @Summary Redeem an invitation token
// @Description Exactly one redemption succeeds per token; retries answer with the specific failure reason.
// @Tags Admission
// @Accept json
// @Produce json
// @Param body body JoinByTokenRequest true "Token and account details"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Failure 410 {object} responses.ErrorResponse
// @Router /join/by-token [post]
func (ac *AdmissionController) JoinByToken(c *gin.Context) {
	var req JoinByTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	result, err := ac.service.JoinByToken(req)
	if err != nil {
		ac.renderJoinError(c, err, "Failed to join organization")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Joined organization", result)
}

// JoinByCode godoc
// @Summary Join an organization by its shared code
// @Description Either admits the member immediately or queues the request when the organization requires approval.
// @Tags Admission
// @Accept json
// @Produce json
// @Param body body JoinByCodeRequest true "Code and account details"
// @Success 200 {object} responses.SuccessResponse
// @Success 202 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /join/by-code [post]
func (ac *AdmissionController) JoinByCode(c *gin.Context) {
	var req JoinByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	result, err := ac.service.JoinByCode(req)
	if err != nil {
		ac.renderJoinError(c, err, "Failed to join organization")
		return
	}

	if result.Queued {
		responses.SendSuccess(c, http.StatusAccepted, "Join request queued for approval", result)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Joined organization", result)
}

// VerifyEmail godoc
// @Summary Verify an email address
// @Tags Admission
// @Accept json
// @Produce json
// @Param body body VerifyEmailRequest true "Verification token"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Failure 410 {object} responses.ErrorResponse
// @Router /verify-email [post]
func (ac *AdmissionController) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	if err := ac.service.VerifyEmail(req.Token); err != nil {
		ac.renderTokenError(c, err, "Failed to verify email")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Email verified", nil)
}

// renderTokenError maps the three token failure modes onto distinct HTTP
// statuses so the caller can tell them apart.
func (ac *AdmissionController) renderTokenError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, invite.ErrTokenNotFound):
		responses.NotFound(c, "Invite")
	case errors.Is(err, invite.ErrTokenAlreadyUsed):
		responses.Conflict(c, err.Error())
	case errors.Is(err, invite.ErrTokenExpired):
		responses.SendError(c, http.StatusGone, err.Error())
	default:
		responses.InternalServerError(c, fallback)
	}
}

func (ac *AdmissionController) renderJoinError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrWrongCode):
		responses.NotFound(c, "Organization")
	case errors.Is(err, ErrUnsupportedRole):
		responses.BadRequest(c, err.Error())
	case errors.Is(err, ErrDomainNotAllowed):
		responses.Forbidden(c, err.Error())
	case errors.Is(err, tenant.ErrDuplicateMembership):
		responses.Conflict(c, err.Error())
	default:
		ac.renderTokenError(c, err, fallback)
	}
}
