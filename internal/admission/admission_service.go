package admission

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/ajbcloud/FutsalCulture-sub006/internal/audit"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/billing"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/consent"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/identity"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/invite"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/mailer"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/tenant"
)

// Service orchestrates the four admission paths over the token, membership,
// consent and billing services. Each path ends in either success plus an
// audit event or a typed failure.
type Service struct {
	tenants       tenant.TenantRepository
	tenantSvc     *tenant.Service
	tokens        *invite.TokenService
	consents      consent.Repository
	billing       *billing.Service
	identity      identity.Service
	recorder      audit.Recorder
	mail          mailer.Mailer
	policyVersion string
}

func NewService(
	tenants tenant.TenantRepository,
	tenantSvc *tenant.Service,
	tokens *invite.TokenService,
	consents consent.Repository,
	billingSvc *billing.Service,
	ident identity.Service,
	recorder audit.Recorder,
	mail mailer.Mailer,
	policyVersion string,
) *Service {
	return &Service{
		tenants:       tenants,
		tenantSvc:     tenantSvc,
		tokens:        tokens,
		consents:      consents,
		billing:       billingSvc,
		identity:      ident,
		recorder:      recorder,
		mail:          mail,
		policyVersion: policyVersion,
	}
}

// GetStarted onboards a new organization: resolve the acting user, open the
// processor customer, then commit tenant + owner membership + subscription.
// The processor call happens before any local rows exist, so a processor
// failure aborts with nothing to unwind; a later local failure compensates
// by deleting the tenant so no tenant can be left without a billing record.
// Failures after that point (verification email, audit) do not roll the
// tenant back; the audit trail and re-sent verification are the recovery
// path.
func (s *Service) GetStarted(req GetStartedRequest) (*GetStartedResult, error) {
	userID, err := s.identity.EnsureUser(req.ContactEmail, req.Password, identity.Profile{Name: req.ContactName})
	if err != nil {
		return nil, fmt.Errorf("resolving user: %w", err)
	}

	customerID, err := s.billing.OpenCustomer(req.ContactEmail, req.OrgName)
	if err != nil {
		log.Printf("admission: processor customer creation failed for %q: %v", req.OrgName, err)
		return nil, ErrBillingUnavailable
	}

	slug, err := s.tenantSvc.AllocateSlug(req.OrgName)
	if err != nil {
		return nil, err
	}
	joinCode, err := s.tenantSvc.AllocateJoinCode()
	if err != nil {
		return nil, err
	}

	t := &tenant.Tenant{
		Name:         req.OrgName,
		Slug:         slug,
		JoinCode:     joinCode,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		City:         req.City,
		Country:      req.Country,
		Status:       tenant.StatusActive,
	}
	err = s.tenants.WithTransaction(func(tx tenant.TenantRepository) error {
		if err := tx.CreateTenant(t); err != nil {
			return err
		}
		return tx.BindMembership(&tenant.Membership{
			TenantID: t.ID,
			UserID:   userID,
			Role:     string(tenant.RoleOwner),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("creating organization: %w", err)
	}

	if err := s.billing.InitializeSubscription(t.ID, customerID); err != nil {
		// The caller must not be told "done" while no billing record
		// exists; compensate by removing the tenant we just created.
		if delErr := s.tenants.DeleteTenant(t.ID); delErr != nil {
			log.Printf("admission: failed to compensate tenant %d after billing error: %v", t.ID, delErr)
		}
		log.Printf("admission: subscription initialization failed for tenant %d: %v", t.ID, err)
		return nil, ErrBillingUnavailable
	}

	if _, err := s.tokens.IssueVerify(userID, req.ContactEmail); err != nil {
		log.Printf("admission: could not issue verification token for user %d: %v", userID, err)
	}

	s.recorder.Record(t.ID, userID, audit.EventTenantCreated, 0, map[string]interface{}{
		"slug": slug,
	})

	return &GetStartedResult{
		TenantID: t.ID,
		Slug:     slug,
		JoinCode: joinCode,
		UserID:   userID,
	}, nil
}

// IssueInvite mints an invitation token scoped to (tenant, email, role).
// The caller's owner/coach role is enforced at the route; the role being
// granted is validated here.
func (s *Service) IssueInvite(tenantID, actorID uint, req IssueInviteRequest) (*invite.InviteToken, error) {
	role := tenant.ParseRole(req.Role)
	if role == tenant.RoleOther || role == tenant.RoleOwner {
		return nil, ErrUnsupportedRole
	}

	t, err := s.tenants.GetTenantByID(tenantID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("tenant %d not found", tenantID)
	}

	tok, err := s.tokens.IssueInvite(tenantID, t.Name, req.Email, string(role), actorID)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(tenantID, actorID, audit.EventInviteSent, tok.ID, map[string]interface{}{
		"email": req.Email,
		"role":  string(role),
	})
	return tok, nil
}

// ResendInvite re-delivers an existing pending invitation. The token
// service re-checks that the token belongs to tenantID.
func (s *Service) ResendInvite(tenantID, actorID, inviteID uint) error {
	t, err := s.tenants.GetTenantByID(tenantID)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("tenant %d not found", tenantID)
	}
	if err := s.tokens.Resend(tenantID, inviteID, t.Name); err != nil {
		return err
	}
	s.recorder.Record(tenantID, actorID, audit.EventInviteResent, inviteID, nil)
	return nil
}

// RevokeInvite expires an invitation immediately.
func (s *Service) RevokeInvite(tenantID, actorID, inviteID uint) error {
	if err := s.tokens.Revoke(tenantID, inviteID); err != nil {
		return err
	}
	s.recorder.Record(tenantID, actorID, audit.EventInviteRevoked, inviteID, nil)
	return nil
}

// JoinByToken redeems an invitation token: atomically consume it, resolve
// the invited user, capture consent when a minor's parent is named, then
// bind the membership. Token failures pass through with their distinct
// reasons.
func (s *Service) JoinByToken(req JoinByTokenRequest) (*JoinResult, error) {
	tok, err := s.tokens.ValidateAndConsume(req.Token)
	if err != nil {
		return nil, err
	}

	userID, err := s.identity.EnsureUser(tok.Email, req.Password, identity.Profile{Name: req.Name})
	if err != nil {
		return nil, fmt.Errorf("resolving user: %w", err)
	}

	role := tenant.ParseRole(tok.Role)
	if err := s.admitMember(tok.TenantID, userID, tok.Email, role, req.ParentEmail, consent.MethodInviteAccept); err != nil {
		return nil, err
	}

	s.recorder.Record(tok.TenantID, userID, audit.EventInviteAccepted, tok.ID, map[string]interface{}{
		"role": tok.Role,
	})

	return &JoinResult{TenantID: tok.TenantID, UserID: userID, Role: tok.Role}, nil
}

// JoinByCode admits a member through the tenant's shared join code. When
// the tenant requires approval the request is queued instead and no
// membership is created.
func (s *Service) JoinByCode(req JoinByCodeRequest) (*JoinResult, error) {
	t, err := s.tenants.FindTenantByCode(strings.ToUpper(strings.TrimSpace(req.Code)))
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrWrongCode
	}

	roleStr := req.Role
	if roleStr == "" {
		roleStr = string(tenant.RolePlayer)
	}
	role := tenant.ParseRole(roleStr)
	if role == tenant.RoleOther || role == tenant.RoleOwner {
		return nil, ErrUnsupportedRole
	}

	if !emailDomainAllowed(req.Email, t.AllowedDomains) {
		return nil, ErrDomainNotAllowed
	}

	userID, err := s.identity.EnsureUser(req.Email, req.Password, identity.Profile{Name: req.Name})
	if err != nil {
		return nil, fmt.Errorf("resolving user: %w", err)
	}

	if t.RequireApproval {
		// Re-submitting while a request is pending returns the existing
		// reference instead of enqueueing twice.
		if existing, err := s.tenants.GetPendingJoinRequest(t.ID, userID); err != nil {
			return nil, err
		} else if existing != nil {
			return &JoinResult{TenantID: t.ID, UserID: userID, Queued: true, Reference: existing.Reference}, nil
		}

		jr := &tenant.PendingJoinRequest{
			TenantID:    t.ID,
			UserID:      userID,
			Email:       req.Email,
			Role:        string(role),
			ParentEmail: req.ParentEmail,
			Reference:   uuid.NewString(),
			Status:      tenant.JoinRequestPending,
		}
		if err := s.tenants.CreateJoinRequest(jr); err != nil {
			return nil, err
		}
		s.recorder.Record(t.ID, userID, audit.EventJoinQueued, jr.ID, map[string]interface{}{
			"role": string(role),
		})
		return &JoinResult{TenantID: t.ID, UserID: userID, Queued: true, Reference: jr.Reference}, nil
	}

	if err := s.admitMember(t.ID, userID, req.Email, role, req.ParentEmail, consent.MethodCodeJoin); err != nil {
		return nil, err
	}

	s.recorder.Record(t.ID, userID, audit.EventMemberJoined, 0, map[string]interface{}{
		"role": string(role),
	})

	return &JoinResult{TenantID: t.ID, UserID: userID, Role: string(role)}, nil
}

// admitMember captures consent (when required) and binds the membership.
// Consent comes first: a consent failure must abort the admission rather
// than leave a minor joined without consent on file. The membership unique
// index arbitrates concurrent admissions of the same user.
func (s *Service) admitMember(tenantID, userID uint, email string, role tenant.Role, parentEmail, method string) error {
	if role.Minor() && parentEmail != "" {
		parentID, err := s.identity.EnsureUser(parentEmail, "", identity.Profile{})
		if err != nil {
			return fmt.Errorf("resolving parent: %w", err)
		}
		if err := s.consents.RecordConsent(tenantID, userID, parentID, method, s.policyVersion, map[string]interface{}{
			"parent_email": parentEmail,
		}); err != nil {
			return fmt.Errorf("recording consent: %w", err)
		}
		if err := s.consents.LinkParentPlayer(tenantID, parentID, userID); err != nil {
			return fmt.Errorf("linking parent: %w", err)
		}
		s.recorder.Record(tenantID, parentID, audit.EventConsentRecorded, userID, map[string]interface{}{
			"method": method,
		})
	}

	if err := s.tenants.BindMembership(&tenant.Membership{
		TenantID: tenantID,
		UserID:   userID,
		Role:     string(role),
	}); err != nil {
		return err
	}

	if t, err := s.tenants.GetTenantByID(tenantID); err == nil && t != nil {
		if err := s.mail.SendWelcomeEmail(email, t.Name); err != nil {
			log.Printf("admission: failed to send welcome email to %s: %v", email, err)
		}
	}
	return nil
}

// VerifyEmail consumes an email-verification token and marks the user
// verified.
func (s *Service) VerifyEmail(rawToken string) error {
	vt, err := s.tokens.ConsumeVerify(rawToken)
	if err != nil {
		return err
	}
	return s.identity.MarkUserVerified(vt.UserID)
}

func emailDomainAllowed(email string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range allowed {
		if strings.EqualFold(d, domain) {
			return true
		}
	}
	return false
}
