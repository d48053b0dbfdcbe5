package invite

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/ajbcloud/FutsalCulture-sub006/internal/mailer"
	"github.com/ajbcloud/FutsalCulture-sub006/pkg/codes"
)

// TokenService issues, redeems, revokes and re-delivers single-use tokens.
type TokenService struct {
	repo      TokenRepository
	mail      mailer.Mailer
	baseURL   string
	inviteTTL time.Duration
	verifyTTL time.Duration
}

func NewTokenService(repo TokenRepository, mail mailer.Mailer, baseURL string, inviteTTL, verifyTTL time.Duration) *TokenService {
	return &TokenService{
		repo:      repo,
		mail:      mail,
		baseURL:   baseURL,
		inviteTTL: inviteTTL,
		verifyTTL: verifyTTL,
	}
}

// IssueInvite mints an invitation token scoped to (tenant, email, role) and
// dispatches the invite email. A delivery failure is logged, not surfaced:
// the token exists either way and can be re-sent.
func (s *TokenService) IssueInvite(tenantID uint, tenantName, email, role string, issuedBy uint) (*InviteToken, error) {
	raw, err := codes.NewToken()
	if err != nil {
		return nil, err
	}
	t := &InviteToken{
		TenantID:   tenantID,
		Email:      email,
		Role:       role,
		Token:      raw,
		ExpiresAt:  time.Now().Add(s.inviteTTL),
		IssuedByID: issuedBy,
		Channel:    ChannelEmail,
	}
	if err := s.repo.CreateInvite(t); err != nil {
		return nil, err
	}
	if err := s.mail.SendInviteEmail(email, s.inviteLink(raw), role, tenantName); err != nil {
		log.Printf("invite: failed to send invite email to %s: %v", email, err)
	}
	return t, nil
}

// ValidateAndConsume atomically redeems an invitation token and returns its
// scope. Failures are ErrTokenNotFound, ErrTokenAlreadyUsed or
// ErrTokenExpired.
func (s *TokenService) ValidateAndConsume(token string) (*InviteToken, error) {
	return s.repo.ConsumeInvite(token)
}

// Revoke forces the token's expiry into the past. The token must belong to
// tenantID; the ownership re-check defends against a caller pointing at
// another tenant's token.
func (s *TokenService) Revoke(tenantID, tokenID uint) error {
	t, err := s.repo.GetInviteByID(tokenID)
	if err != nil {
		return err
	}
	if t == nil || t.TenantID != tenantID {
		return ErrTokenNotFound
	}
	if t.ConsumedAt != nil {
		return ErrTokenAlreadyUsed
	}
	return s.repo.ExpireInvite(t.ID)
}

// Resend re-delivers an existing pending token without minting a new one and
// without resetting its expiry. Same tenant-ownership re-check as Revoke.
func (s *TokenService) Resend(tenantID, tokenID uint, tenantName string) error {
	t, err := s.repo.GetInviteByID(tokenID)
	if err != nil {
		return err
	}
	if t == nil || t.TenantID != tenantID {
		return ErrTokenNotFound
	}
	if t.ConsumedAt != nil {
		return ErrTokenAlreadyUsed
	}
	if !t.ExpiresAt.After(time.Now()) {
		return ErrTokenExpired
	}
	return s.mail.SendInviteEmail(t.Email, s.inviteLink(t.Token), t.Role, tenantName)
}

// IssueVerify mints an email-verification token for (user, email) and
// dispatches the verification email.
func (s *TokenService) IssueVerify(userID uint, email string) (*VerifyToken, error) {
	raw, err := codes.NewToken()
	if err != nil {
		return nil, err
	}
	t := &VerifyToken{
		UserID:    userID,
		Email:     email,
		Token:     raw,
		ExpiresAt: time.Now().Add(s.verifyTTL),
	}
	if err := s.repo.CreateVerify(t); err != nil {
		return nil, err
	}
	if err := s.mail.SendVerifyEmail(email, s.verifyLink(raw)); err != nil {
		log.Printf("invite: failed to send verification email to %s: %v", email, err)
	}
	return t, nil
}

// ConsumeVerify atomically redeems an email-verification token.
func (s *TokenService) ConsumeVerify(token string) (*VerifyToken, error) {
	return s.repo.ConsumeVerify(token)
}

func (s *TokenService) inviteLink(raw string) string {
	return fmt.Sprintf("%s/join?token=%s", s.baseURL, url.QueryEscape(raw))
}

func (s *TokenService) verifyLink(raw string) string {
	return fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, url.QueryEscape(raw))
}
