package api_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/threatcombat/threatcombat/pkg/apisdk"
)

// waitForEntries polls the audit log until the predicate returns a non-empty
// result. Audit writes are queued, so reads shortly after an action can miss.
func waitForEntries(t *testing.T, fetch func() ([]apisdk.AuditEntry, error)) []apisdk.AuditEntry {
	t.Helper()

	var entries []apisdk.AuditEntry
	require.Eventually(t, func() bool {
		var err error
		entries, err = fetch()
		return err == nil && len(entries) > 0
	}, 5*time.Second, 100*time.Millisecond, "expected audit entries to appear")

	return entries
}

func TestAuditTrail(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	chapter := createChapter(t, admin, "Audit Chapter", "Audit University")
	member := createActiveUser(t, admin, "Quincy Barasa", "quincy@audit.example", apisdk.RoleMember, chapter.ID)

	_, err := admin.SuspendUser(t.Context(), member.ID)
	require.NoError(t, err)

	entries := waitForEntries(t, func() ([]apisdk.AuditEntry, error) {
		return admin.ListAudit(t.Context(), apisdk.AuditListOptions{Action: "USER_SUSPEND"})
	})
	require.Equal(t, member.ID, entries[0].ResourceID)
	require.Equal(t, "HIGH", entries[0].RiskLevel)
	require.True(t, entries[0].Success)
	require.NotEmpty(t, entries[0].IPAddress)

	// A single entry is fetchable by ID
	entry, err := admin.GetAuditEntry(t.Context(), entries[0].ID)
	require.NoError(t, err)
	require.Equal(t, entries[0].ID, entry.ID)

	// The actor's own activity trail includes the suspension
	me, err := admin.Me(t.Context())
	require.NoError(t, err)

	activity := waitForEntries(t, func() ([]apisdk.AuditEntry, error) {
		return admin.UserActivity(t.Context(), me.User.ID, 50)
	})
	found := false
	for _, e := range activity {
		if e.Action == "USER_SUSPEND" {
			found = true
		}
	}
	require.True(t, found, "suspension should appear in the actor's activity")
}

func TestSuspiciousActivityAndReview(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	// A failed login is flagged for review
	_, err := client.Login(t.Context(), adminEmail, "definitely-wrong")
	requireAPIStatus(t, err, http.StatusUnauthorized)

	suspicious := waitForEntries(t, func() ([]apisdk.AuditEntry, error) {
		return admin.SuspiciousActivity(t.Context(), 1)
	})

	var flagged *apisdk.AuditEntry
	for i := range suspicious {
		if suspicious[i].RequiresReview && suspicious[i].ReviewStatus == apisdk.ReviewPending {
			flagged = &suspicious[i]
			break
		}
	}
	require.NotNil(t, flagged, "failed login should be pending review")

	// Review moves the entry forward and stamps the reviewer
	reviewed, err := admin.ReviewAuditEntry(t.Context(), flagged.ID, apisdk.ReviewRequest{
		Status: apisdk.ReviewResolved,
		Notes:  "Fat-fingered password, no action needed.",
	})
	require.NoError(t, err)
	require.Equal(t, apisdk.ReviewResolved, reviewed.ReviewStatus)
	require.NotEmpty(t, reviewed.ReviewerID)
	require.NotNil(t, reviewed.ReviewedAt)

	// Resolved is terminal
	_, err = admin.ReviewAuditEntry(t.Context(), flagged.ID, apisdk.ReviewRequest{
		Status: apisdk.ReviewEscalated,
	})
	requireAPIStatus(t, err, http.StatusBadRequest)
}

func TestAuditAccessControl(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	chapter := createChapter(t, admin, "Audit ACL Chapter", "Audit ACL University")
	chapterAdmin := createActiveUser(t, admin, "Rose Nyambura", "rose@auditacl.example", apisdk.RoleChapterAdmin, chapter.ID)

	session := loginAs(t, client, chapterAdmin.Email)

	// Chapter admins read the log but cannot advance reviews
	_, err := session.ListAudit(t.Context(), apisdk.AuditListOptions{Limit: 10})
	require.NoError(t, err)

	entries := waitForEntries(t, func() ([]apisdk.AuditEntry, error) {
		return admin.ListAudit(t.Context(), apisdk.AuditListOptions{Limit: 1})
	})

	_, err = session.ReviewAuditEntry(t.Context(), entries[0].ID, apisdk.ReviewRequest{
		Status: apisdk.ReviewReviewed,
	})
	requireAPIStatus(t, err, http.StatusForbidden, "review transitions are super admin only")
}
