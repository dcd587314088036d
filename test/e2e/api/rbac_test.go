package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/threatcombat/threatcombat/pkg/apisdk"
)

func TestRoleAssignment(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	chapter := createChapter(t, admin, "UoN Chapter", "University of Nairobi")
	member := createActiveUser(t, admin, "Grace Wanjiku", "grace@students.uon.ac.ke", apisdk.RoleMember, chapter.ID)

	// Super admin promotes a chapter member to chapter admin
	promoted, err := admin.AssignRole(t.Context(), apisdk.AssignRoleRequest{
		Email:     member.Email,
		Role:      apisdk.RoleChapterAdmin,
		ChapterID: chapter.ID,
	})
	require.NoError(t, err)
	require.Equal(t, apisdk.RoleChapterAdmin, promoted.Role)

	// Chapter admin grants the executive role within their chapter
	peer := createActiveUser(t, admin, "Hassan Ali", "hassan@students.uon.ac.ke", apisdk.RoleMember, chapter.ID)
	chapterAdmin := loginAs(t, client, member.Email)

	exec, err := chapterAdmin.AssignExecutive(t.Context(), peer.Email)
	require.NoError(t, err)
	require.Equal(t, apisdk.RoleExecutive, exec.Role)

	// A chapter admin cannot mint another chapter admin
	third := createActiveUser(t, admin, "Irene Chebet", "irene@students.uon.ac.ke", apisdk.RoleMember, chapter.ID)
	_, err = chapterAdmin.AssignRole(t.Context(), apisdk.AssignRoleRequest{
		Email:     third.Email,
		Role:      apisdk.RoleChapterAdmin,
		ChapterID: chapter.ID,
	})
	requireAPIStatus(t, err, http.StatusForbidden)

	// Nobody can change their own role
	_, err = chapterAdmin.AssignExecutive(t.Context(), member.Email)
	requireAPIStatus(t, err, http.StatusForbidden, "self role change must be rejected")
}

func TestSuperAdminSeatRequiresPartner(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	chapter := createChapter(t, admin, "JKUAT Chapter", "JKUAT")
	member := createActiveUser(t, admin, "John Kamau", "john@students.jkuat.ac.ke", apisdk.RoleMember, chapter.ID)
	partner := createActiveUser(t, admin, "KQ Systems", "security@kqsystems.example", apisdk.RoleIndustryPartner, "")

	_, err := admin.AssignRole(t.Context(), apisdk.AssignRoleRequest{
		Email: member.Email,
		Role:  apisdk.RoleSuperAdmin,
	})
	requireAPIStatus(t, err, http.StatusForbidden, "only vetted partners can hold super admin")

	promoted, err := admin.AssignRole(t.Context(), apisdk.AssignRoleRequest{
		Email: partner.Email,
		Role:  apisdk.RoleSuperAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, apisdk.RoleSuperAdmin, promoted.Role)
}

func TestExecutivePromotionAndDemotion(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	chapter := createChapter(t, admin, "Strathmore Chapter", "Strathmore University")
	member := createActiveUser(t, admin, "Kevin Oduya", "kevin@students.strathmore.edu", apisdk.RoleMember, chapter.ID)

	promoted, err := admin.PromoteUser(t.Context(), member.ID, apisdk.PromoteRequest{
		Position: "Secretary",
		Term:     "2026-2027",
	})
	require.NoError(t, err)
	require.Equal(t, apisdk.RoleExecutive, promoted.Role)
	require.NotNil(t, promoted.ExecutivePosition)
	require.Equal(t, "Secretary", promoted.ExecutivePosition.Position)

	// The seat shows up on the chapter's executive team
	got, err := client.GetChapter(t.Context(), chapter.ID)
	require.NoError(t, err)
	require.Len(t, got.ExecutiveTeam, 1)
	require.Equal(t, member.ID, got.ExecutiveTeam[0].UserID)

	// The same seat cannot be filled twice in the same term
	second := createActiveUser(t, admin, "Lucy Atieno", "lucy@students.strathmore.edu", apisdk.RoleMember, chapter.ID)
	_, err = admin.PromoteUser(t.Context(), second.ID, apisdk.PromoteRequest{
		Position: "Secretary",
		Term:     "2026-2027",
	})
	requireAPIStatus(t, err, http.StatusConflict, "occupied seat should conflict")

	demoted, err := admin.DemoteUser(t.Context(), member.ID)
	require.NoError(t, err)
	require.Equal(t, apisdk.RoleMember, demoted.Role)

	// Demotion closes the seat, freeing the position
	_, err = admin.PromoteUser(t.Context(), second.ID, apisdk.PromoteRequest{
		Position: "Secretary",
		Term:     "2026-2027",
	})
	require.NoError(t, err)
}

func TestSuspensionBlocksLogin(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	chapter := createChapter(t, admin, "Egerton Chapter", "Egerton University")
	member := createActiveUser(t, admin, "Mary Wambui", "mary@students.egerton.ac.ke", apisdk.RoleMember, chapter.ID)

	session := loginAs(t, client, member.Email)

	suspended, err := admin.SuspendUser(t.Context(), member.ID)
	require.NoError(t, err)
	require.Equal(t, apisdk.StatusSuspended, suspended.MembershipStatus)

	// A fresh login is refused
	_, err = client.Login(t.Context(), member.Email, testPassword)
	requireAPIStatus(t, err, http.StatusUnauthorized)

	// The existing token is refused too: handlers check the current record
	_, err = session.Me(t.Context())
	requireAPIStatus(t, err, http.StatusForbidden)

	// Reactivation restores access
	restored, err := admin.ActivateUser(t.Context(), member.ID)
	require.NoError(t, err)
	require.Equal(t, apisdk.StatusActive, restored.MembershipStatus)

	_, err = client.Login(t.Context(), member.Email, testPassword)
	require.NoError(t, err)
}

func TestSelfModificationGuard(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	me, err := admin.Me(t.Context())
	require.NoError(t, err)

	_, err = admin.SuspendUser(t.Context(), me.User.ID)
	requireAPIStatus(t, err, http.StatusForbidden, "admins cannot suspend themselves")

	err = admin.DeleteUser(t.Context(), me.User.ID)
	requireAPIStatus(t, err, http.StatusForbidden, "admins cannot delete themselves")
}

func TestMemberAccessBoundaries(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	chapter := createChapter(t, admin, "Moi Chapter", "Moi University")
	member := createActiveUser(t, admin, "Nancy Akinyi", "nancy@students.mu.ac.ke", apisdk.RoleMember, chapter.ID)
	other := createActiveUser(t, admin, "Peter Kiprono", "peter@students.mu.ac.ke", apisdk.RoleMember, chapter.ID)

	session := loginAs(t, client, member.Email)

	// Members cannot enumerate users or read the audit log
	_, err := session.ListUsers(t.Context(), apisdk.UserListOptions{})
	requireAPIStatus(t, err, http.StatusForbidden)

	_, err = session.ListAudit(t.Context(), apisdk.AuditListOptions{})
	requireAPIStatus(t, err, http.StatusForbidden)

	// Members see themselves but not other members
	self, err := session.GetUser(t.Context(), member.ID)
	require.NoError(t, err)
	require.Equal(t, member.Email, self.Email)

	_, err = session.GetUser(t.Context(), other.ID)
	requireAPIStatus(t, err, http.StatusForbidden)

	// Members update their own profile, nobody else's
	newName := "Nancy A. Odhiambo"
	updated, err := session.UpdateUser(t.Context(), member.ID, apisdk.UpdateUserRequest{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, newName, updated.Name)

	_, err = session.UpdateUser(t.Context(), other.ID, apisdk.UpdateUserRequest{Name: &newName})
	requireAPIStatus(t, err, http.StatusForbidden)
}

func TestCrossChapterIsolation(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	chapterA := createChapter(t, admin, "Chapter A", "University A")
	chapterB := createChapter(t, admin, "Chapter B", "University B")

	adminA := createActiveUser(t, admin, "Admin A", "admin-a@university-a.example", apisdk.RoleChapterAdmin, chapterA.ID)
	memberB := createActiveUser(t, admin, "Member B", "member-b@university-b.example", apisdk.RoleMember, chapterB.ID)

	sessionA := loginAs(t, client, adminA.Email)

	// A chapter admin cannot touch members of another chapter
	_, err := sessionA.SuspendUser(t.Context(), memberB.ID)
	requireAPIStatus(t, err, http.StatusForbidden)

	_, err = sessionA.AssignExecutive(t.Context(), memberB.Email)
	requireAPIStatus(t, err, http.StatusForbidden)

	// Listings are pinned to the actor's chapter even with an explicit filter
	users, err := sessionA.ListUsers(t.Context(), apisdk.UserListOptions{Chapter: chapterB.ID})
	require.NoError(t, err)
	for _, u := range users {
		require.Equal(t, chapterA.ID, u.Chapter)
	}
}
