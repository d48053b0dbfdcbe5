package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Acme FC", want: "acme-fc"},
		{name: "punctuation collapsed", in: "St. Mary's  Futsal!!", want: "st-mary-s-futsal"},
		{name: "already slug", in: "acme-fc", want: "acme-fc"},
		{name: "leading and trailing junk", in: "  ***Acme***  ", want: "acme"},
		{name: "digits kept", in: "5-a-side 2024", want: "5-a-side-2024"},
		{name: "empty", in: "!!!", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestAllocateSlugAppendsNumericSuffix(t *testing.T) {
	repo := NewFakeTenantRepository()
	svc := NewService(repo)

	first, err := svc.AllocateSlug("Acme FC")
	require.NoError(t, err)
	assert.Equal(t, "acme-fc", first)
	require.NoError(t, repo.CreateTenant(&Tenant{Name: "Acme FC", Slug: first, JoinCode: "AAAAAAA1", ContactEmail: "a@x.com"}))

	second, err := svc.AllocateSlug("Acme FC")
	require.NoError(t, err)
	assert.Equal(t, "acme-fc-2", second)
	require.NoError(t, repo.CreateTenant(&Tenant{Name: "Acme FC", Slug: second, JoinCode: "AAAAAAA2", ContactEmail: "a@x.com"}))

	third, err := svc.AllocateSlug("Acme FC")
	require.NoError(t, err)
	assert.Equal(t, "acme-fc-3", third)
}

func TestAllocateSlugFallbackForUnsluggableName(t *testing.T) {
	svc := NewService(NewFakeTenantRepository())
	slug, err := svc.AllocateSlug("!!!")
	require.NoError(t, err)
	assert.Equal(t, "org", slug)
}

func TestAllocateJoinCodeShapeAndUniqueness(t *testing.T) {
	repo := NewFakeTenantRepository()
	svc := NewService(repo)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := svc.AllocateJoinCode()
		require.NoError(t, err)
		assert.Len(t, code, 8)
		assert.False(t, seen[code], "join codes must be pairwise distinct")
		seen[code] = true
		require.NoError(t, repo.CreateTenant(&Tenant{
			Name: "t", Slug: Slugify("t") + string(rune('a'+i)), JoinCode: code, ContactEmail: "a@x.com",
		}))
	}
}

func TestRotateJoinCodeInvalidatesOldCode(t *testing.T) {
	repo := NewFakeTenantRepository()
	svc := NewService(repo)

	tn := &Tenant{Name: "Acme FC", Slug: "acme-fc", JoinCode: "OLDCODE2", ContactEmail: "a@x.com"}
	require.NoError(t, repo.CreateTenant(tn))

	newCode, err := svc.RotateJoinCode(tn.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "OLDCODE2", newCode)

	byOld, err := repo.FindTenantByCode("OLDCODE2")
	require.NoError(t, err)
	assert.Nil(t, byOld, "old code must stop resolving immediately")

	byNew, err := repo.FindTenantByCode(newCode)
	require.NoError(t, err)
	require.NotNil(t, byNew)
	assert.Equal(t, tn.ID, byNew.ID)
}

func TestRotateJoinCodeUnknownTenant(t *testing.T) {
	svc := NewService(NewFakeTenantRepository())
	_, err := svc.RotateJoinCode(404)
	assert.Error(t, err)
}

func TestBindMembershipDuplicate(t *testing.T) {
	repo := NewFakeTenantRepository()

	require.NoError(t, repo.BindMembership(&Membership{TenantID: 1, UserID: 2, Role: string(RolePlayer)}))

	err := repo.BindMembership(&Membership{TenantID: 1, UserID: 2, Role: string(RoleCoach)})
	assert.ErrorIs(t, err, ErrDuplicateMembership)

	// The original binding is unchanged.
	m, err := repo.GetMembership(1, 2)
	require.NoError(t, err)
	assert.Equal(t, string(RolePlayer), m.Role)

	// Same user in another tenant is fine.
	assert.NoError(t, repo.BindMembership(&Membership{TenantID: 3, UserID: 2, Role: string(RoleCoach)}))
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleOwner, ParseRole("owner"))
	assert.Equal(t, RolePlayer, ParseRole("player"))
	assert.Equal(t, RoleOther, ParseRole("mascot"))
	assert.Equal(t, RoleOther, ParseRole(""))

	assert.True(t, RoleOwner.CanInvite())
	assert.True(t, RoleCoach.CanInvite())
	assert.False(t, RoleParent.CanInvite())
	assert.True(t, RolePlayer.Minor())
	assert.False(t, RoleCoach.Minor())
}
