package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/store"
	"github.com/threatcombat/threatcombat/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedChapter(t *testing.T, s *Store, name, university string) domain.Chapter {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	c := domain.Chapter{
		ID:         idx.New().String(),
		Name:       name,
		University: university,
		Location:   "Nairobi",
		Status:     domain.ChapterActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.Chapters().Create(context.Background(), c))
	return c
}

func seedUser(t *testing.T, s *Store, email string, role domain.Role, chapterID string) domain.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	u := domain.User{
		ID:               idx.New().String(),
		Name:             "Test User",
		Email:            email,
		PasswordHash:     "argon2:dummy",
		Role:             role,
		ChapterID:        chapterID,
		MembershipStatus: domain.MembershipActive,
		EmailVerified:    true,
		University:       "Strathmore University",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestUsersRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	chapter := seedChapter(t, s, "Strathmore Chapter", "Strathmore University")

	t.Run("round trip preserves fields", func(t *testing.T) {
		u := seedUser(t, s, "alice@example.com", domain.RoleMember, chapter.ID)

		got, err := s.Users().GetByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Email, got.Email)
		require.Equal(t, domain.RoleMember, got.Role)
		require.Equal(t, chapter.ID, got.ChapterID)
		require.Equal(t, domain.MembershipActive, got.MembershipStatus)
		require.True(t, got.EmailVerified)
		require.Nil(t, got.LastLogin)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		seedUser(t, s, "Bob@Example.COM", domain.RoleMember, chapter.ID)

		got, err := s.Users().GetByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		require.Equal(t, "bob@example.com", got.Email)

		got, err = s.Users().GetByEmail(ctx, "BOB@EXAMPLE.COM")
		require.NoError(t, err)
		require.Equal(t, "bob@example.com", got.Email)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		seedUser(t, s, "carol@example.com", domain.RoleMember, chapter.ID)

		dup := domain.User{
			ID:               idx.New().String(),
			Name:             "Carol Again",
			Email:            "CAROL@example.com",
			PasswordHash:     "argon2:dummy",
			Role:             domain.RoleMember,
			ChapterID:        chapter.ID,
			MembershipStatus: domain.MembershipPending,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		}
		err := s.Users().Create(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		_, err := s.Users().GetByID(ctx, idx.New().String())
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("verification token lookup", func(t *testing.T) {
		u := seedUser(t, s, "dave@example.com", domain.RoleMember, chapter.ID)

		expires := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		u.EmailVerified = false
		u.EmailVerificationToken = "fingerprint-abc"
		u.EmailVerifyExpires = &expires
		require.NoError(t, s.Users().Update(ctx, u))

		got, err := s.Users().GetByVerificationToken(ctx, "fingerprint-abc")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.NotNil(t, got.EmailVerifyExpires)

		// empty fingerprint must never match blank columns
		_, err = s.Users().GetByVerificationToken(ctx, "")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("executive position survives serialization", func(t *testing.T) {
		u := seedUser(t, s, "erin@example.com", domain.RoleExecutive, chapter.ID)

		u.ExecutivePosition = &domain.ExecutivePosition{
			Position:  "Treasurer",
			Term:      "2026-2027",
			StartDate: time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, s.Users().Update(ctx, u))

		got, err := s.Users().GetByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ExecutivePosition)
		require.Equal(t, "Treasurer", got.ExecutivePosition.Position)
		require.True(t, got.ExecutivePosition.Active())
	})

	t.Run("list filters by role and chapter", func(t *testing.T) {
		other := seedChapter(t, s, "JKUAT Chapter", "JKUAT")
		seedUser(t, s, "frank@example.com", domain.RoleChapterAdmin, other.ID)

		admins, err := s.Users().List(ctx, store.UserFilter{Role: domain.RoleChapterAdmin})
		require.NoError(t, err)
		require.Len(t, admins, 1)
		require.Equal(t, "frank@example.com", admins[0].Email)

		members, err := s.Users().List(ctx, store.UserFilter{ChapterID: other.ID})
		require.NoError(t, err)
		require.Len(t, members, 1)
	})

	t.Run("stats aggregate by chapter", func(t *testing.T) {
		stats, err := s.Users().Stats(ctx, chapter.ID)
		require.NoError(t, err)
		require.Positive(t, stats.TotalUsers)
		require.Equal(t, 1, stats.Executives)
	})

	t.Run("clear expired tokens", func(t *testing.T) {
		u := seedUser(t, s, "gus@example.com", domain.RoleMember, chapter.ID)

		past := time.Now().Add(-time.Hour)
		u.PasswordResetToken = "stale-fingerprint"
		u.PasswordResetExpires = &past
		require.NoError(t, s.Users().Update(ctx, u))

		require.NoError(t, s.Users().ClearExpiredTokens(ctx, time.Now()))

		got, err := s.Users().GetByID(ctx, u.ID)
		require.NoError(t, err)
		require.Empty(t, got.PasswordResetToken)
		require.Nil(t, got.PasswordResetExpires)
	})
}

func TestChaptersRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	t.Run("find by normalized university is exact", func(t *testing.T) {
		seedChapter(t, s, "MIT Chapter", "  MIT ")

		got, err := s.Chapters().GetByUniversity(ctx, domain.NormalizeUniversity("mit"), domain.ChapterActive)
		require.NoError(t, err)
		require.Equal(t, "MIT Chapter", got.Name)

		// a distinct institution containing the same prefix must not match
		_, err = s.Chapters().GetByUniversity(ctx, domain.NormalizeUniversity("MIT Sloan"), domain.ChapterActive)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		seedChapter(t, s, "UoN Chapter", "University of Nairobi")

		dup := domain.Chapter{
			ID:         idx.New().String(),
			Name:       "UoN Chapter",
			University: "University of Nairobi",
			Status:     domain.ChapterActive,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		err := s.Chapters().Create(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("roster add and close", func(t *testing.T) {
		chapter := seedChapter(t, s, "KU Chapter", "Kenyatta University")
		u := seedUser(t, s, "helen@example.com", domain.RoleExecutive, chapter.ID)

		seat := domain.ExecutiveSeat{
			ID:        idx.New().String(),
			UserID:    u.ID,
			Position:  "President",
			Term:      "2026-2027",
			StartDate: time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, s.Chapters().AddExecutiveSeat(ctx, chapter.ID, seat))

		got, err := s.Chapters().GetByID(ctx, chapter.ID)
		require.NoError(t, err)
		require.Len(t, got.CurrentExecutives(), 1)
		require.NotNil(t, got.OpenSeat("President"))
		require.NotNil(t, got.OpenSeatForUser(u.ID))

		require.NoError(t, s.Chapters().CloseExecutiveSeat(ctx, seat.ID, time.Now()))

		got, err = s.Chapters().GetByID(ctx, chapter.ID)
		require.NoError(t, err)
		require.Empty(t, got.CurrentExecutives())
		require.Nil(t, got.OpenSeat("President"))

		// closing twice reports not found, the seat is no longer open
		err = s.Chapters().CloseExecutiveSeat(ctx, seat.ID, time.Now())
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestAuditLogsRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	newEntry := func(action domain.Action, ip string, createdAt time.Time) domain.AuditEntry {
		return domain.AuditEntry{
			ID:           idx.New().String(),
			Action:       action,
			Resource:     domain.ResourceAuthentication,
			IPAddress:    ip,
			Method:       "POST",
			URL:          "/api/auth/login",
			StatusCode:   401,
			Success:      false,
			RiskLevel:    domain.RiskMedium,
			ReviewStatus: domain.ReviewPending,
			CreatedAt:    createdAt,
		}
	}

	t.Run("count failed attempts respects ip and window", func(t *testing.T) {
		now := time.Now().UTC()
		for i := 0; i < 5; i++ {
			require.NoError(t, s.AuditLogs().Create(ctx,
				newEntry(domain.ActionLoginAttemptFailed, "10.0.0.1", now.Add(-time.Duration(i)*time.Minute))))
		}
		// outside the window
		require.NoError(t, s.AuditLogs().Create(ctx,
			newEntry(domain.ActionLoginAttemptFailed, "10.0.0.1", now.Add(-2*time.Hour))))
		// different ip
		require.NoError(t, s.AuditLogs().Create(ctx,
			newEntry(domain.ActionLoginAttemptFailed, "10.0.0.2", now)))
		// lockout entries never count toward the tally
		require.NoError(t, s.AuditLogs().Create(ctx,
			newEntry(domain.ActionAccountLockout, "10.0.0.1", now)))

		count, err := s.AuditLogs().CountFailedAttempts(ctx, "10.0.0.1", now.Add(-time.Hour))
		require.NoError(t, err)
		require.Equal(t, 5, count)
	})

	t.Run("details round trip", func(t *testing.T) {
		e := newEntry(domain.ActionLogin, "10.0.0.3", time.Now().UTC())
		e.ActorID = "user-1"
		e.ActorRole = domain.RoleMember
		e.Details = map[string]any{"email": "alice@example.com", "password": "[REDACTED]"}
		require.NoError(t, s.AuditLogs().Create(ctx, e))

		got, err := s.AuditLogs().GetByID(ctx, e.ID)
		require.NoError(t, err)
		require.Equal(t, "[REDACTED]", got.Details["password"])
		require.Equal(t, domain.RoleMember, got.ActorRole)
	})

	t.Run("suspicious surfaces high risk and flagged", func(t *testing.T) {
		critical := newEntry(domain.ActionRoleChange, "10.0.0.4", time.Now().UTC())
		critical.RiskLevel = domain.RiskCritical
		critical.RequiresReview = true
		require.NoError(t, s.AuditLogs().Create(ctx, critical))

		entries, err := s.AuditLogs().Suspicious(ctx, time.Now().Add(-24*time.Hour))
		require.NoError(t, err)

		var found bool
		for _, e := range entries {
			if e.ID == critical.ID {
				found = true
			}
		}
		require.True(t, found)
	})

	t.Run("review workflow update", func(t *testing.T) {
		e := newEntry(domain.ActionAccountLockout, "10.0.0.5", time.Now().UTC())
		e.RiskLevel = domain.RiskCritical
		e.RequiresReview = true
		require.NoError(t, s.AuditLogs().Create(ctx, e))

		at := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, s.AuditLogs().UpdateReview(ctx, e.ID,
			domain.ReviewReviewed, "reviewer-1", "confirmed brute force", at))

		got, err := s.AuditLogs().GetByID(ctx, e.ID)
		require.NoError(t, err)
		require.Equal(t, domain.ReviewReviewed, got.ReviewStatus)
		require.Equal(t, "reviewer-1", got.ReviewerID)
		require.NotNil(t, got.ReviewedAt)

		// the original record fields are untouched
		require.Equal(t, domain.ActionAccountLockout, got.Action)
		require.Equal(t, domain.RiskCritical, got.RiskLevel)
	})

	t.Run("list filters by action", func(t *testing.T) {
		entries, err := s.AuditLogs().List(ctx, store.AuditFilter{
			Action: domain.ActionAccountLockout,
		})
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		for _, e := range entries {
			require.Equal(t, domain.ActionAccountLockout, e.Action)
		}
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	chapter := seedChapter(t, s, "Tx Chapter", "Tx University")

	sentinel := errors.New("abort")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		u := domain.User{
			ID:               idx.New().String(),
			Name:             "Rollback Victim",
			Email:            "rollback@example.com",
			PasswordHash:     "argon2:dummy",
			Role:             domain.RoleMember,
			ChapterID:        chapter.ID,
			MembershipStatus: domain.MembershipPending,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		}
		if err := tx.Users().Create(ctx, u); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = s.Users().GetByEmail(ctx, "rollback@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCatalogRepos(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	chapter := seedChapter(t, s, "Catalog Chapter", "Catalog University")
	author := seedUser(t, s, "author@example.com", domain.RoleExecutive, chapter.ID)

	now := time.Now().UTC().Truncate(time.Second)

	t.Run("research scoped by chapter", func(t *testing.T) {
		entry := domain.Research{
			ID:        idx.New().String(),
			Title:     "Phishing Trends 2026",
			Abstract:  "A survey.",
			AuthorID:  author.ID,
			ChapterID: chapter.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, s.Research().Create(ctx, entry))

		entries, err := s.Research().ListByChapter(ctx, chapter.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		entry.Published = true
		entry.UpdatedAt = now.Add(time.Minute)
		require.NoError(t, s.Research().Update(ctx, entry))

		got, err := s.Research().GetByID(ctx, entry.ID)
		require.NoError(t, err)
		require.True(t, got.Published)

		require.NoError(t, s.Research().Delete(ctx, entry.ID))
		_, err = s.Research().GetByID(ctx, entry.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("events scoped by chapter", func(t *testing.T) {
		e := domain.Event{
			ID:          idx.New().String(),
			Title:       "CTF Night",
			Description: "Capture the flag.",
			ChapterID:   chapter.ID,
			CreatedBy:   author.ID,
			StartsAt:    now.Add(24 * time.Hour),
			EndsAt:      now.Add(28 * time.Hour),
			Location:    "Lab 3",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		require.NoError(t, s.Events().Create(ctx, e))

		events, err := s.Events().ListByChapter(ctx, chapter.ID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, "CTF Night", events[0].Title)
	})

	t.Run("courses are global", func(t *testing.T) {
		c := domain.Course{
			ID:          idx.New().String(),
			Title:       "Intro to Threat Hunting",
			Description: "Foundations.",
			CreatedBy:   author.ID,
			Level:       "beginner",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		require.NoError(t, s.Courses().Create(ctx, c))

		courses, err := s.Courses().List(ctx)
		require.NoError(t, err)
		require.Len(t, courses, 1)
	})
}
