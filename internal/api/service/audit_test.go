package service

import (
	"context"
	"testing"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/store"
	"github.com/stretchr/testify/require"
)

func TestClassifyRisk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action domain.Action
		status int
		want   domain.RiskLevel
	}{
		{domain.ActionUserDelete, 200, domain.RiskCritical},
		{domain.ActionChapterDelete, 200, domain.RiskCritical},
		{domain.ActionAccountLockout, 429, domain.RiskCritical},
		{domain.ActionSuspiciousActivity, 200, domain.RiskCritical},

		{domain.ActionUserSuspend, 200, domain.RiskHigh},
		{domain.ActionUserPromote, 200, domain.RiskHigh},
		{domain.ActionUserDemote, 200, domain.RiskHigh},
		{domain.ActionRoleChange, 200, domain.RiskHigh},
		{domain.ActionPasswordResetComplete, 200, domain.RiskHigh},

		{domain.ActionUserCreate, 201, domain.RiskMedium},
		{domain.ActionUserUpdate, 200, domain.RiskMedium},
		{domain.ActionPasswordChange, 200, domain.RiskMedium},
		{domain.ActionLoginAttemptFailed, 401, domain.RiskMedium},

		// failed requests not otherwise classified
		{domain.ActionLogin, 401, domain.RiskMedium},
		{domain.ActionChapterUpdate, 403, domain.RiskMedium},

		{domain.ActionLogin, 200, domain.RiskLow},
		{domain.ActionResearchCreate, 201, domain.RiskLow},
		{domain.ActionChapterUpdate, 200, domain.RiskLow},
	}

	for _, tc := range tests {
		got := ClassifyRisk(tc.action, tc.status)
		require.Equal(t, tc.want, got, "action=%s status=%d", tc.action, tc.status)
	}
}

func TestRequiresReview(t *testing.T) {
	t.Parallel()

	t.Run("critical always reviewed", func(t *testing.T) {
		for _, role := range domain.Roles {
			require.True(t, RequiresReview(domain.ActionUserDelete, domain.RiskCritical, role))
		}
	})

	t.Run("high risk reviewed unless actor is an admin", func(t *testing.T) {
		require.True(t, RequiresReview(domain.ActionRoleChange, domain.RiskHigh, domain.RoleExecutive))
		require.True(t, RequiresReview(domain.ActionRoleChange, domain.RiskHigh, domain.RoleMember))
		require.False(t, RequiresReview(domain.ActionRoleChange, domain.RiskHigh, domain.RoleChapterAdmin))
		require.False(t, RequiresReview(domain.ActionRoleChange, domain.RiskHigh, domain.RoleSuperAdmin))
	})

	t.Run("failed logins always reviewed", func(t *testing.T) {
		require.True(t, RequiresReview(domain.ActionLoginAttemptFailed, domain.RiskMedium, ""))
	})

	t.Run("low risk not reviewed", func(t *testing.T) {
		require.False(t, RequiresReview(domain.ActionLogin, domain.RiskLow, domain.RoleMember))
	})
}

func TestRedact(t *testing.T) {
	t.Parallel()

	t.Run("replaces sensitive keys at any depth", func(t *testing.T) {
		details := map[string]any{
			"email":    "alice@example.com",
			"password": "hunter2",
			"body": map[string]any{
				"password": "hunter2",
				"name":     "Alice",
			},
			"response": map[string]any{
				"token": "eyJhbGciOi...",
				"user":  map[string]any{"secret": "s3cret", "id": "1"},
			},
			"headers": []any{
				map[string]any{"authorization": "Bearer xyz"},
			},
		}

		got := Redact(details)

		require.Equal(t, RedactionMarker, got["password"])
		require.Equal(t, RedactionMarker, got["body"].(map[string]any)["password"])
		require.Equal(t, RedactionMarker, got["response"].(map[string]any)["token"])
		require.Equal(t, RedactionMarker, got["response"].(map[string]any)["user"].(map[string]any)["secret"])
		require.Equal(t, RedactionMarker, got["headers"].([]any)[0].(map[string]any)["authorization"])

		require.Equal(t, "alice@example.com", got["email"])
		require.Equal(t, "Alice", got["body"].(map[string]any)["name"])
	})

	t.Run("matching is case-sensitive", func(t *testing.T) {
		got := Redact(map[string]any{"Password": "visible", "password": "hidden"})
		require.Equal(t, "visible", got["Password"])
		require.Equal(t, RedactionMarker, got["password"])
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		in := map[string]any{"password": "hunter2"}
		_ = Redact(in)
		require.Equal(t, "hunter2", in["password"])
	})

	t.Run("nil passes through", func(t *testing.T) {
		require.Nil(t, Redact(nil))
	})
}

func TestFinalize(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("failed status forces success false", func(t *testing.T) {
		e := Finalize(domain.AuditEntry{Action: domain.ActionLogin, StatusCode: 401, Success: true}, now)
		require.False(t, e.Success)
	})

	t.Run("fills id timestamp risk and review", func(t *testing.T) {
		e := Finalize(domain.AuditEntry{Action: domain.ActionUserDelete, StatusCode: 200, Success: true}, now)
		require.NotEmpty(t, e.ID)
		require.Equal(t, now, e.CreatedAt)
		require.Equal(t, domain.RiskCritical, e.RiskLevel)
		require.True(t, e.RequiresReview)
		require.Equal(t, domain.ReviewPending, e.ReviewStatus)
	})

	t.Run("explicit risk level is respected", func(t *testing.T) {
		e := Finalize(domain.AuditEntry{Action: domain.ActionLogin, RiskLevel: domain.RiskHigh}, now)
		require.Equal(t, domain.RiskHigh, e.RiskLevel)
	})
}

func TestAuditRecorder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("record persists asynchronously", func(t *testing.T) {
		env.audit.Record(ctx, domain.AuditEntry{
			ActorID:    "actor-1",
			Action:     domain.ActionLogin,
			Resource:   domain.ResourceAuthentication,
			IPAddress:  "198.51.100.1",
			StatusCode: 200,
			Success:    true,
			Details:    map[string]any{"token": "raw-token-value"},
		})

		entries := env.auditEntries(t, store.AuditFilter{ActorID: "actor-1"})
		require.Len(t, entries, 1)
		require.Equal(t, RedactionMarker, entries[0].Details["token"])
		require.Equal(t, domain.RiskLow, entries[0].RiskLevel)
	})

	t.Run("lockout verdict is a pure function of the tally", func(t *testing.T) {
		const ip = "198.51.100.9"
		for i := 0; i < DefaultLockoutThreshold; i++ {
			env.audit.Record(ctx, domain.AuditEntry{
				Action:     domain.ActionLoginAttemptFailed,
				Resource:   domain.ResourceAuthentication,
				IPAddress:  ip,
				StatusCode: 401,
			})
		}
		env.flush(t)

		locked, err := env.audit.IsLockedOut(ctx, ip)
		require.NoError(t, err)
		require.True(t, locked)

		// same count, same verdict
		locked, err = env.audit.IsLockedOut(ctx, ip)
		require.NoError(t, err)
		require.True(t, locked)

		// lockout entries themselves never move the tally
		env.audit.Record(ctx, domain.AuditEntry{
			Action:     domain.ActionAccountLockout,
			Resource:   domain.ResourceAuthentication,
			IPAddress:  ip,
			StatusCode: 429,
		})
		env.flush(t)

		count, err := env.store.AuditLogs().CountFailedAttempts(ctx, ip, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		require.Equal(t, DefaultLockoutThreshold, count)
	})

	t.Run("below threshold is not locked", func(t *testing.T) {
		locked, err := env.audit.IsLockedOut(ctx, "198.51.100.200")
		require.NoError(t, err)
		require.False(t, locked)
	})
}

func TestSuspiciousActivity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.audit.Record(ctx, domain.AuditEntry{
		Action: domain.ActionLogin, Resource: domain.ResourceAuthentication,
		StatusCode: 200, Success: true, ActorID: "benign",
	})
	env.audit.Record(ctx, domain.AuditEntry{
		Action: domain.ActionUserDelete, Resource: domain.ResourceUser,
		StatusCode: 200, Success: true, ActorID: "critical-actor",
	})
	env.audit.Record(ctx, domain.AuditEntry{
		Action: domain.ActionLoginAttemptFailed, Resource: domain.ResourceAuthentication,
		StatusCode: 401, ActorID: "failed-actor",
	})
	env.flush(t)

	entries, err := env.audit.SuspiciousActivity(ctx, 1)
	require.NoError(t, err)

	actors := make(map[string]bool)
	for _, e := range entries {
		actors[e.ActorID] = true
	}
	require.True(t, actors["critical-actor"])
	require.True(t, actors["failed-actor"])
	require.False(t, actors["benign"])
}

func TestAdvanceReview(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.audit.Record(ctx, domain.AuditEntry{
		Action: domain.ActionAccountLockout, Resource: domain.ResourceAuthentication,
		IPAddress: "192.0.2.1", StatusCode: 429,
	})
	env.flush(t)

	entries, err := env.audit.List(ctx, store.AuditFilter{Action: domain.ActionAccountLockout})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	id := entries[0].ID

	t.Run("rejects unknown and pending targets", func(t *testing.T) {
		_, err := env.audit.AdvanceReview(ctx, id, "reviewer", "NONSENSE", "")
		require.ErrorIs(t, err, ErrValidation)

		_, err = env.audit.AdvanceReview(ctx, id, "reviewer", "PENDING", "")
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("advances and stamps reviewer", func(t *testing.T) {
		got, err := env.audit.AdvanceReview(ctx, id, "reviewer-7", "ESCALATED", "needs eyes")
		require.NoError(t, err)
		require.Equal(t, domain.ReviewEscalated, got.ReviewStatus)
		require.Equal(t, "reviewer-7", got.ReviewerID)
		require.Equal(t, "needs eyes", got.ReviewNotes)
		require.NotNil(t, got.ReviewedAt)
	})

	t.Run("resolved is terminal", func(t *testing.T) {
		_, err := env.audit.AdvanceReview(ctx, id, "reviewer-7", "RESOLVED", "closing out")
		require.NoError(t, err)

		_, err = env.audit.AdvanceReview(ctx, id, "reviewer-8", "ESCALATED", "")
		require.ErrorIs(t, err, ErrValidation)
	})
}
