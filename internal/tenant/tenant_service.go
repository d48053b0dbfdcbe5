package tenant

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ajbcloud/FutsalCulture-sub006/pkg/codes"
)

const (
	maxSlugAttempts     = 50
	maxJoinCodeAttempts = 5
)

// Service allocates the generated tenant identifiers (slug, join code) and
// rotates join codes.
type Service struct {
	repo TenantRepository
}

func NewService(repo TenantRepository) *Service {
	return &Service{repo: repo}
}

// Slugify lowers a display name into a URL slug: lowercase, runs of
// non-alphanumerics collapsed to single hyphens, edges trimmed.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// AllocateSlug returns the first free slug in the sequence base, base-2,
// base-3, ... A second "Acme FC" therefore gets acme-fc-2.
func (s *Service) AllocateSlug(name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "org"
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		exists, err := s.repo.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("tenant: could not allocate a slug for %q after %d attempts", name, maxSlugAttempts)
}

// AllocateJoinCode mints a globally unique join code, retrying the
// astronomically unlikely collision with a fresh candidate.
func (s *Service) AllocateJoinCode() (string, error) {
	for i := 0; i < maxJoinCodeAttempts; i++ {
		code, err := codes.NewJoinCode()
		if err != nil {
			return "", err
		}
		exists, err := s.repo.JoinCodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("tenant: could not allocate a unique join code after %d attempts", maxJoinCodeAttempts)
}

// RotateJoinCode issues a fresh code for the tenant. The old code is
// invalidated by the same UPDATE that persists the new one; there is no
// grace period.
func (s *Service) RotateJoinCode(tenantID uint) (string, error) {
	t, err := s.repo.GetTenantByID(tenantID)
	if err != nil {
		return "", err
	}
	if t == nil {
		return "", fmt.Errorf("tenant %d not found", tenantID)
	}
	code, err := s.AllocateJoinCode()
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateJoinCode(tenantID, code); err != nil {
		return "", err
	}
	return code, nil
}
