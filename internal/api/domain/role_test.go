package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The capability matrix: for every predicate, exactly these roles pass.
func TestCapabilityPredicates(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		pred    func(Role) bool
		allowed []Role
	}{
		{"IsSuperAdmin", Role.IsSuperAdmin, []Role{RoleSuperAdmin}},
		{"IsChapterAdmin", Role.IsChapterAdmin, []Role{RoleChapterAdmin, RoleSuperAdmin}},
		{"IsExecutiveOrHigher", Role.IsExecutiveOrHigher, []Role{RoleExecutive, RoleChapterAdmin, RoleSuperAdmin}},
		{"HasGlobalAccess", Role.HasGlobalAccess, []Role{RoleSuperAdmin, RoleIndustryPartner}},
		{"HasCrossChapterAccess", Role.HasCrossChapterAccess, []Role{RoleSuperAdmin, RoleIndustryPartner}},
		{"CanManageResearch", Role.CanManageResearch, []Role{RoleExecutive, RoleChapterAdmin, RoleSuperAdmin, RoleIndustryPartner}},
		{"CanManageEvents", Role.CanManageEvents, []Role{RoleExecutive, RoleChapterAdmin, RoleSuperAdmin}},
		{"CanManageCourses", Role.CanManageCourses, []Role{RoleChapterAdmin, RoleSuperAdmin, RoleIndustryPartner}},
		{"HasAnalyticsAccess", Role.HasAnalyticsAccess, []Role{RoleChapterAdmin, RoleSuperAdmin}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			want := make(map[Role]bool, len(tc.allowed))
			for _, r := range tc.allowed {
				want[r] = true
			}

			for _, role := range Roles {
				require.Equal(t, want[role], tc.pred(role),
					"%s(%s)", tc.name, role)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, role := range Roles {
		parsed, ok := ParseRole(string(role))
		require.True(t, ok)
		require.Equal(t, role, parsed)
	}

	for _, bad := range []string{"", "admin", "SUPER_ADMIN", "members"} {
		_, ok := ParseRole(bad)
		require.False(t, ok, "ParseRole(%q)", bad)
	}
}

func TestGlobalRoles(t *testing.T) {
	t.Parallel()

	require.True(t, RoleSuperAdmin.Global())
	require.True(t, RoleIndustryPartner.Global())
	require.False(t, RoleChapterAdmin.Global())
	require.False(t, RoleExecutive.Global())
	require.False(t, RoleMember.Global())
}

func TestPermissionsDeriveFromRole(t *testing.T) {
	t.Parallel()

	require.Equal(t, PermissionFlags{
		CanManageChapter:        true,
		CanManageUsers:          true,
		CanManageResearch:       true,
		CanManageEvents:         true,
		CanAccessGlobalFeatures: true,
	}, RoleSuperAdmin.Permissions())

	require.Equal(t, PermissionFlags{}, RoleMember.Permissions())

	require.Equal(t, PermissionFlags{
		CanManageResearch:       true,
		CanAccessGlobalFeatures: true,
	}, RoleIndustryPartner.Permissions())
}

func TestNormalizeUniversity(t *testing.T) {
	t.Parallel()

	require.Equal(t, "covenant university", NormalizeUniversity("  Covenant   University "))
	require.Equal(t, "mit", NormalizeUniversity("MIT"))
	// Exact-match semantics: "MIT" and "MIT Sloan" stay distinct.
	require.NotEqual(t, NormalizeUniversity("MIT"), NormalizeUniversity("MIT Sloan"))
}

func TestChapterOpenSeats(t *testing.T) {
	t.Parallel()

	ended := testTime(2024, 6, 1)
	chapter := Chapter{
		ExecutiveTeam: []ExecutiveSeat{
			{ID: "s1", UserID: "u1", Position: "President"},
			{ID: "s2", UserID: "u2", Position: "Secretary", EndDate: &ended},
		},
	}

	require.NotNil(t, chapter.OpenSeat("President"))
	require.Nil(t, chapter.OpenSeat("Secretary"))
	require.NotNil(t, chapter.OpenSeatForUser("u1"))
	require.Nil(t, chapter.OpenSeatForUser("u2"))
	require.Len(t, chapter.CurrentExecutives(), 1)
}
