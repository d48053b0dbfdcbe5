package admission

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajbcloud/FutsalCulture-sub006/internal/audit"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/billing"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/consent"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/identity"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/invite"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/mailer"
	"github.com/ajbcloud/FutsalCulture-sub006/internal/tenant"
	"github.com/ajbcloud/FutsalCulture-sub006/pkg/codes"
)

// captureMailer records outbound mail instead of sending it.
type captureMailer struct {
	mu      sync.Mutex
	welcome []string // recipient emails, in order
	verify  []string // "to|link" so tests can extract the token
}

func (m *captureMailer) SendVerifyEmail(to, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verify = append(m.verify, to+"|"+link)
	return nil
}

func (m *captureMailer) SendInviteEmail(to, link, role, tenantName string) error { return nil }

func (m *captureMailer) SendWelcomeEmail(to, tenantName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcome = append(m.welcome, to)
	return nil
}

var _ mailer.Mailer = (*captureMailer)(nil)

type harness struct {
	svc       *Service
	tenants   *tenant.FakeTenantRepository
	tenantSvc *tenant.Service
	tokens    *invite.TokenService
	consents  *consent.FakeRepository
	subs      *billing.FakeSubscriptionRepository
	processor *billing.FakeProcessor
	ident     *identity.Fake
	recorder  *audit.CaptureRecorder
	mail      *captureMailer
}

func newHarness() *harness {
	tenants := tenant.NewFakeTenantRepository()
	tenantSvc := tenant.NewService(tenants)
	mail := &captureMailer{}
	tokens := invite.NewTokenService(invite.NewFakeTokenRepository(), mail, "https://app.example.com", 72*time.Hour, 24*time.Hour)
	consents := consent.NewFakeRepository()
	subs := billing.NewFakeSubscriptionRepository()
	processor := billing.NewFakeProcessor()
	recorder := audit.NewCaptureRecorder()
	ident := identity.NewFake()
	billingSvc := billing.NewService(subs, processor, recorder, "whsec_test", "https://app.example.com")

	svc := NewService(tenants, tenantSvc, tokens, consents, billingSvc, ident, recorder, mail, "2026-01")
	return &harness{
		svc:       svc,
		tenants:   tenants,
		tenantSvc: tenantSvc,
		tokens:    tokens,
		consents:  consents,
		subs:      subs,
		processor: processor,
		ident:     ident,
		recorder:  recorder,
		mail:      mail,
	}
}

// seedTenant creates an organization directly in the store for join tests.
func (h *harness) seedTenant(t *testing.T, mutate func(*tenant.Tenant)) *tenant.Tenant {
	t.Helper()
	code, err := codes.NewJoinCode()
	require.NoError(t, err)
	tn := &tenant.Tenant{
		Name:     "Acme FC",
		Slug:     "acme-fc",
		JoinCode: code,
		Status:   tenant.StatusActive,
	}
	if mutate != nil {
		mutate(tn)
	}
	require.NoError(t, h.tenants.CreateTenant(tn))
	return tn
}

func TestGetStartedCreatesOrganization(t *testing.T) {
	h := newHarness()

	result, err := h.svc.GetStarted(GetStartedRequest{
		OrgName:      "Acme FC",
		ContactName:  "Dana Owner",
		ContactEmail: "dana@acme.example",
		Password:     "s3cret-pass",
		City:         "Lisbon",
		Country:      "PT",
	})
	require.NoError(t, err)

	assert.Equal(t, "acme-fc", result.Slug)
	assert.Len(t, result.JoinCode, 8)
	for _, r := range result.JoinCode {
		assert.Contains(t, codes.JoinCodeAlphabet, string(r))
	}

	memberships := h.tenants.Memberships()
	require.Len(t, memberships, 1)
	assert.Equal(t, result.TenantID, memberships[0].TenantID)
	assert.Equal(t, result.UserID, memberships[0].UserID)
	assert.Equal(t, string(tenant.RoleOwner), memberships[0].Role)

	sub, err := h.subs.GetByTenant(result.TenantID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, billing.PlanFree, sub.Plan)
	assert.Equal(t, billing.StatusInactive, sub.Status)

	created := h.recorder.ByType(audit.EventTenantCreated)
	require.Len(t, created, 1)
	assert.Equal(t, result.TenantID, created[0].TenantID)
	assert.Equal(t, result.UserID, created[0].ActorID)

	require.Len(t, h.mail.verify, 1)
	assert.True(t, strings.HasPrefix(h.mail.verify[0], "dana@acme.example|"))
}

func TestGetStartedAllocatesSuffixedSlug(t *testing.T) {
	h := newHarness()

	first, err := h.svc.GetStarted(GetStartedRequest{
		OrgName: "Acme FC", ContactEmail: "one@acme.example", Password: "s3cret-pass",
	})
	require.NoError(t, err)
	second, err := h.svc.GetStarted(GetStartedRequest{
		OrgName: "Acme FC", ContactEmail: "two@acme.example", Password: "s3cret-pass",
	})
	require.NoError(t, err)

	assert.Equal(t, "acme-fc", first.Slug)
	assert.Equal(t, "acme-fc-2", second.Slug)
	assert.NotEqual(t, first.JoinCode, second.JoinCode)
}

func TestGetStartedBillingFailureCreatesNothing(t *testing.T) {
	h := newHarness()
	h.processor.Fail = true

	_, err := h.svc.GetStarted(GetStartedRequest{
		OrgName: "Acme FC", ContactEmail: "dana@acme.example", Password: "s3cret-pass",
	})
	require.ErrorIs(t, err, ErrBillingUnavailable)

	exists, err := h.tenants.SlugExists("acme-fc")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, h.tenants.Memberships())
	assert.Empty(t, h.recorder.Events())
}

func TestJoinByTokenMinorRecordsConsentOnce(t *testing.T) {
	h := newHarness()
	tn := h.seedTenant(t, nil)

	tok, err := h.tokens.IssueInvite(tn.ID, tn.Name, "kid@family.example", string(tenant.RolePlayer), 9)
	require.NoError(t, err)

	result, err := h.svc.JoinByToken(JoinByTokenRequest{
		Token:       tok.Token,
		Name:        "Kid Player",
		Password:    "s3cret-pass",
		ParentEmail: "parent@family.example",
	})
	require.NoError(t, err)
	assert.Equal(t, tn.ID, result.TenantID)
	assert.Equal(t, string(tenant.RolePlayer), result.Role)
	assert.False(t, result.Queued)

	records := h.consents.Records()
	require.Len(t, records, 1)
	assert.Equal(t, tn.ID, records[0].TenantID)
	assert.Equal(t, result.UserID, records[0].MinorUserID)
	assert.Equal(t, consent.MethodInviteAccept, records[0].Method)
	assert.Equal(t, "2026-01", records[0].PolicyVersion)
	require.Len(t, h.consents.Links(), 1)
	assert.Equal(t, result.UserID, h.consents.Links()[0].PlayerUserID)

	require.Len(t, h.recorder.ByType(audit.EventConsentRecorded), 1)
	require.Len(t, h.recorder.ByType(audit.EventInviteAccepted), 1)
	assert.Equal(t, []string{"kid@family.example"}, h.mail.welcome)

	// The token is single-use: a replay fails and mutates nothing.
	_, err = h.svc.JoinByToken(JoinByTokenRequest{
		Token: tok.Token, Password: "s3cret-pass", ParentEmail: "parent@family.example",
	})
	require.ErrorIs(t, err, invite.ErrTokenAlreadyUsed)
	assert.Len(t, h.consents.Records(), 1)
	assert.Len(t, h.consents.Links(), 1)
	assert.Len(t, h.tenants.Memberships(), 1)
}

func TestJoinByTokenAdultSkipsConsent(t *testing.T) {
	h := newHarness()
	tn := h.seedTenant(t, nil)

	tok, err := h.tokens.IssueInvite(tn.ID, tn.Name, "coach@acme.example", string(tenant.RoleCoach), 9)
	require.NoError(t, err)

	_, err = h.svc.JoinByToken(JoinByTokenRequest{Token: tok.Token, Name: "Coach", Password: "s3cret-pass"})
	require.NoError(t, err)

	assert.Empty(t, h.consents.Records())
	assert.Len(t, h.tenants.Memberships(), 1)
}

func TestJoinByTokenConsentFailureBlocksMembership(t *testing.T) {
	h := newHarness()
	tn := h.seedTenant(t, nil)
	h.consents.Fail = true

	tok, err := h.tokens.IssueInvite(tn.ID, tn.Name, "kid@family.example", string(tenant.RolePlayer), 9)
	require.NoError(t, err)

	_, err = h.svc.JoinByToken(JoinByTokenRequest{
		Token: tok.Token, Password: "s3cret-pass", ParentEmail: "parent@family.example",
	})
	require.Error(t, err)
	assert.Empty(t, h.tenants.Memberships())
}

func TestJoinByCodeAdmitsImmediately(t *testing.T) {
	h := newHarness()
	tn := h.seedTenant(t, nil)

	result, err := h.svc.JoinByCode(JoinByCodeRequest{
		Code: tn.JoinCode, Email: "player@acme.example", Name: "Player", Password: "s3cret-pass",
	})
	require.NoError(t, err)

	assert.False(t, result.Queued)
	assert.Equal(t, string(tenant.RolePlayer), result.Role)
	require.Len(t, h.tenants.Memberships(), 1)
	require.Len(t, h.recorder.ByType(audit.EventMemberJoined), 1)
	assert.Equal(t, []string{"player@acme.example"}, h.mail.welcome)
}

func TestJoinByCodeQueuesWhenApprovalRequired(t *testing.T) {
	h := newHarness()
	tn := h.seedTenant(t, func(tn *tenant.Tenant) { tn.RequireApproval = true })

	result, err := h.svc.JoinByCode(JoinByCodeRequest{
		Code: tn.JoinCode, Email: "player@acme.example", Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.True(t, result.Queued)
	assert.NotEmpty(t, result.Reference)
	assert.Empty(t, h.tenants.Memberships())
	require.Len(t, h.recorder.ByType(audit.EventJoinQueued), 1)

	// Re-submitting returns the same reference instead of enqueueing twice.
	again, err := h.svc.JoinByCode(JoinByCodeRequest{
		Code: tn.JoinCode, Email: "player@acme.example", Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, result.Reference, again.Reference)
	assert.Len(t, h.tenants.JoinRequests(), 1)
}

func TestJoinByCodeRotatedCodeStopsWorking(t *testing.T) {
	h := newHarness()
	tn := h.seedTenant(t, nil)
	oldCode := tn.JoinCode

	newCode, err := h.tenantSvc.RotateJoinCode(tn.ID)
	require.NoError(t, err)
	require.NotEqual(t, oldCode, newCode)

	_, err = h.svc.JoinByCode(JoinByCodeRequest{
		Code: oldCode, Email: "player@acme.example", Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, ErrWrongCode)

	_, err = h.svc.JoinByCode(JoinByCodeRequest{
		Code: newCode, Email: "player@acme.example", Password: "s3cret-pass",
	})
	assert.NoError(t, err)
}

func TestJoinByCodeEnforcesAllowedDomains(t *testing.T) {
	h := newHarness()
	tn := h.seedTenant(t, func(tn *tenant.Tenant) {
		tn.AllowedDomains = []string{"acme.example"}
	})

	_, err := h.svc.JoinByCode(JoinByCodeRequest{
		Code: tn.JoinCode, Email: "player@elsewhere.example", Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, ErrDomainNotAllowed)

	_, err = h.svc.JoinByCode(JoinByCodeRequest{
		Code: tn.JoinCode, Email: "player@ACME.example", Password: "s3cret-pass",
	})
	assert.NoError(t, err)
}

func TestJoinByCodeRejectsOwnerRole(t *testing.T) {
	h := newHarness()
	tn := h.seedTenant(t, nil)

	_, err := h.svc.JoinByCode(JoinByCodeRequest{
		Code: tn.JoinCode, Email: "x@acme.example", Password: "s3cret-pass", Role: "owner",
	})
	assert.ErrorIs(t, err, ErrUnsupportedRole)
}

func TestJoinByCodeDuplicateMembership(t *testing.T) {
	h := newHarness()
	tn := h.seedTenant(t, nil)

	_, err := h.svc.JoinByCode(JoinByCodeRequest{
		Code: tn.JoinCode, Email: "player@acme.example", Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = h.svc.JoinByCode(JoinByCodeRequest{
		Code: tn.JoinCode, Email: "player@acme.example", Password: "s3cret-pass", Role: "coach",
	})
	assert.ErrorIs(t, err, tenant.ErrDuplicateMembership)
	require.Len(t, h.tenants.Memberships(), 1)
	assert.Equal(t, string(tenant.RolePlayer), h.tenants.Memberships()[0].Role)
}

func TestIssueInviteRejectsOwnerAndUnknownRoles(t *testing.T) {
	h := newHarness()
	tn := h.seedTenant(t, nil)

	_, err := h.svc.IssueInvite(tn.ID, 9, IssueInviteRequest{Email: "x@acme.example", Role: "owner"})
	assert.ErrorIs(t, err, ErrUnsupportedRole)
	_, err = h.svc.IssueInvite(tn.ID, 9, IssueInviteRequest{Email: "x@acme.example", Role: "janitor"})
	assert.ErrorIs(t, err, ErrUnsupportedRole)

	tok, err := h.svc.IssueInvite(tn.ID, 9, IssueInviteRequest{Email: "x@acme.example", Role: "parent"})
	require.NoError(t, err)
	assert.Equal(t, string(tenant.RoleParent), tok.Role)
	require.Len(t, h.recorder.ByType(audit.EventInviteSent), 1)
}

func TestRevokeInviteAuditsAndBlocksRedemption(t *testing.T) {
	h := newHarness()
	tn := h.seedTenant(t, nil)

	tok, err := h.svc.IssueInvite(tn.ID, 9, IssueInviteRequest{Email: "x@acme.example", Role: "player"})
	require.NoError(t, err)

	require.NoError(t, h.svc.RevokeInvite(tn.ID, 9, tok.ID))
	require.Len(t, h.recorder.ByType(audit.EventInviteRevoked), 1)

	_, err = h.svc.JoinByToken(JoinByTokenRequest{Token: tok.Token, Password: "s3cret-pass"})
	assert.ErrorIs(t, err, invite.ErrTokenExpired)
}

func TestVerifyEmailMarksUserVerified(t *testing.T) {
	h := newHarness()

	result, err := h.svc.GetStarted(GetStartedRequest{
		OrgName: "Acme FC", ContactEmail: "dana@acme.example", Password: "s3cret-pass",
	})
	require.NoError(t, err)

	require.Len(t, h.mail.verify, 1)
	link := strings.SplitN(h.mail.verify[0], "|", 2)[1]
	raw := link[strings.Index(link, "token=")+len("token="):]

	require.NoError(t, h.svc.VerifyEmail(raw))
	assert.True(t, h.ident.Verified[result.UserID])

	// Verification tokens are single-use too.
	err = h.svc.VerifyEmail(raw)
	assert.ErrorIs(t, err, invite.ErrTokenAlreadyUsed)
}
