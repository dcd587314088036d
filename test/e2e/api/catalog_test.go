package api_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/threatcombat/threatcombat/pkg/apisdk"
)

func TestResearchLifecycle(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	chapter := createChapter(t, admin, "Research Chapter", "Research University")
	exec := createActiveUser(t, admin, "Exec One", "exec@research.example", apisdk.RoleExecutive, chapter.ID)
	member := createActiveUser(t, admin, "Member One", "member@research.example", apisdk.RoleMember, chapter.ID)

	execSession := loginAs(t, client, exec.Email)
	memberSession := loginAs(t, client, member.Email)

	// Members cannot write research
	_, err := memberSession.CreateResearch(t.Context(), apisdk.ResearchRequest{Title: "Nope"})
	requireAPIStatus(t, err, http.StatusForbidden)

	// Executives create drafts in their own chapter
	draft, err := execSession.CreateResearch(t.Context(), apisdk.ResearchRequest{
		Title:    "Phishing Trends in East African Universities",
		Abstract: "A survey of credential phishing volume across campuses.",
	})
	require.NoError(t, err)
	require.Equal(t, chapter.ID, draft.ChapterID)
	require.Equal(t, exec.ID, draft.AuthorID)
	require.False(t, draft.Published)

	// Publishing is an update
	published, err := execSession.UpdateResearch(t.Context(), draft.ID, apisdk.ResearchRequest{
		Title:     draft.Title,
		Abstract:  draft.Abstract,
		Published: true,
	})
	require.NoError(t, err)
	require.True(t, published.Published)

	// Anyone can read the catalog, no session required
	entries, err := client.ListResearch(t.Context(), chapter.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, execSession.DeleteResearch(t.Context(), draft.ID))

	_, err = client.GetResearch(t.Context(), draft.ID)
	requireAPIStatus(t, err, http.StatusNotFound)
}

func TestEventCapabilities(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	chapter := createChapter(t, admin, "Events Chapter", "Events University")
	exec := createActiveUser(t, admin, "Exec Two", "exec@events.example", apisdk.RoleExecutive, chapter.ID)
	partner := createActiveUser(t, admin, "Partner Co", "partner@events.example", apisdk.RoleIndustryPartner, "")

	execSession := loginAs(t, client, exec.Email)
	partnerSession := loginAs(t, client, partner.Email)

	event, err := execSession.CreateEvent(t.Context(), apisdk.EventRequest{
		Title:    "CTF Bootcamp",
		StartsAt: time.Now().Add(48 * time.Hour),
		Location: "Main Campus Lab 4",
	})
	require.NoError(t, err)
	require.Equal(t, chapter.ID, event.ChapterID)

	// Industry partners do not run chapter events
	_, err = partnerSession.CreateEvent(t.Context(), apisdk.EventRequest{
		Title:    "Vendor Workshop",
		StartsAt: time.Now().Add(48 * time.Hour),
	})
	requireAPIStatus(t, err, http.StatusForbidden)

	events, err := client.ListEvents(t.Context(), chapter.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestCourseCapabilities(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	chapter := createChapter(t, admin, "Courses Chapter", "Courses University")
	exec := createActiveUser(t, admin, "Exec Three", "exec@courses.example", apisdk.RoleExecutive, chapter.ID)
	partner := createActiveUser(t, admin, "Training Partner", "partner@courses.example", apisdk.RoleIndustryPartner, "")

	execSession := loginAs(t, client, exec.Email)
	partnerSession := loginAs(t, client, partner.Email)

	// Courses are global content: partners and chapter admins, not executives
	_, err := execSession.CreateCourse(t.Context(), apisdk.CourseRequest{Title: "Nope"})
	requireAPIStatus(t, err, http.StatusForbidden)

	course, err := partnerSession.CreateCourse(t.Context(), apisdk.CourseRequest{
		Title:       "Intro to Malware Analysis",
		Description: "Static and dynamic analysis fundamentals.",
	})
	require.NoError(t, err)
	require.Equal(t, "beginner", course.Level, "level defaults to beginner")

	updated, err := partnerSession.UpdateCourse(t.Context(), course.ID, apisdk.CourseRequest{
		Title: course.Title,
		Level: "intermediate",
	})
	require.NoError(t, err)
	require.Equal(t, "intermediate", updated.Level)

	courses, err := client.ListCourses(t.Context())
	require.NoError(t, err)
	require.Len(t, courses, 1)
}

func TestCrossChapterCatalogWrites(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	chapterA := createChapter(t, admin, "Catalog A", "Catalog University A")
	chapterB := createChapter(t, admin, "Catalog B", "Catalog University B")

	exec := createActiveUser(t, admin, "Exec A", "exec@catalog-a.example", apisdk.RoleExecutive, chapterA.ID)
	partner := createActiveUser(t, admin, "Partner X", "partner@catalog-x.example", apisdk.RoleIndustryPartner, "")

	execSession := loginAs(t, client, exec.Email)
	partnerSession := loginAs(t, client, partner.Email)

	// Executives are bound to their own chapter
	_, err := execSession.CreateResearch(t.Context(), apisdk.ResearchRequest{
		Title:     "Out of Bounds",
		ChapterID: chapterB.ID,
	})
	requireAPIStatus(t, err, http.StatusForbidden)

	// Partners have cross-chapter access
	entry, err := partnerSession.CreateResearch(t.Context(), apisdk.ResearchRequest{
		Title:     "Industry Threat Landscape 2026",
		ChapterID: chapterB.ID,
	})
	require.NoError(t, err)
	require.Equal(t, chapterB.ID, entry.ChapterID)
}
