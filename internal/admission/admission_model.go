package admission

import "errors"

// Workflow-level failure taxonomy. Token failures pass through from the
// invite package untouched so their reason strings stay distinguishable.
var (
	ErrBillingUnavailable = errors.New("billing setup failed, organization was not created")
	ErrWrongCode          = errors.New("no organization matches this code")
	ErrUnsupportedRole    = errors.New("unsupported role for admission")
	ErrDomainNotAllowed   = errors.New("email domain is not allowed by this organization")
)

// GetStartedRequest onboards a new organization.
type GetStartedRequest struct {
	OrgName      string `json:"org_name" binding:"required,min=2,max=100"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
}

// GetStartedResult reports the onboarded tenant back to the caller.
type GetStartedResult struct {
	TenantID uint   `json:"tenant_id"`
	Slug     string `json:"slug"`
	JoinCode string `json:"join_code"`
	UserID   uint   `json:"user_id"`
}

// IssueInviteRequest mints an invitation for one person and one role.
type IssueInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// InviteActionRequest targets an existing invitation (resend / revoke).
type InviteActionRequest struct {
	InviteID uint `json:"invite_id" binding:"required"`
}

// JoinByTokenRequest redeems an invitation token.
type JoinByTokenRequest struct {
	Token       string `json:"token" binding:"required"`
	Name        string `json:"name"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	ParentEmail string `json:"parent_email" binding:"omitempty,email"`
}

// JoinByCodeRequest joins an organization through its shared code. Unlike a
// token, the code is reusable: it identifies the org, not an invitee.
type JoinByCodeRequest struct {
	Code        string `json:"code" binding:"required,len=8"`
	Email       string `json:"email" binding:"required,email"`
	Name        string `json:"name"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	Role        string `json:"role,omitempty"`
	ParentEmail string `json:"parent_email" binding:"omitempty,email"`
}

// JoinResult is the outcome of either join path. Queued means the tenant
// requires approval and no membership was created.
type JoinResult struct {
	TenantID  uint   `json:"tenant_id"`
	UserID    uint   `json:"user_id"`
	Role      string `json:"role,omitempty"`
	Queued    bool   `json:"queued"`
	Reference string `json:"reference,omitempty"`
}

// VerifyEmailRequest consumes an email-verification token.
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}
