package billing

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajbcloud/FutsalCulture-sub006/internal/audit"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/middleware"
	"github.com/ajbcloud/FutsalCulture-sub006/pkg/responses"
)

// BillingController exposes the checkout endpoint and the processor webhook.
type BillingController struct {
	service  *Service
	recorder audit.Recorder
}

func NewBillingController(service *Service, recorder audit.Recorder) *BillingController {
	return &BillingController{service: service, recorder: recorder}
}

type CheckoutRequest struct {
	Price string `json:"price" binding:"required"`
}

// Checkout godoc
// @Summary Open a checkout session for the active organization
// @Tags Billing
// @Accept json
// @Produce json
// @Param body body CheckoutRequest true "Processor price reference"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Security ApiKeyAuth
// @Router /billing/checkout [post]
func (bc *BillingController) Checkout(c *gin.Context) {
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

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	url, err := bc.service.CreateCheckoutSession(tenantID, req.Price)
	if err != nil {
		if errors.Is(err, ErrNoCustomer) {
			responses.Conflict(c, err.Error())
			return
		}
		responses.InternalServerError(c, "Failed to open checkout session")
		return
	}

	bc.recorder.Record(tenantID, userID, audit.EventCheckoutStarted, 0, map[string]interface{}{
		"price": req.Price,
	})

	responses.SendSuccess(c, http.StatusOK, "Checkout session created", gin.H{
		"redirect_url": url,
	})
}

// Webhook receives the processor's signed event stream. The body is read
// raw; any transformation before signature verification would break the
// signature, which covers the exact bytes received.
func (bc *BillingController) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		responses.BadRequest(c, "Failed to read request body")
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	if err := bc.service.ApplyWebhookEvent(payload, sig); err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			responses.BadRequest(c, "Invalid webhook signature")
			return
		}
		// A transient store failure; non-2xx makes the processor redeliver,
		// which is safe because applies are idempotent.
		responses.InternalServerError(c, "Failed to process webhook")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Webhook processed", nil)
}
