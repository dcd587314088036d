package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/store"
)

type auditLogsRepo struct {
	db querier
}

const auditColumns = `id, actor_id, actor_role, actor_chapter, action,
	resource, resource_id, details, ip_address, user_agent, method, url,
	status_code, success, error_message, duration_ms, risk_level,
	requires_review, review_status, reviewer_id, review_notes, reviewed_at,
	created_at`

func scanAuditEntry(row rowScanner) (domain.AuditEntry, error) {
	var (
		e            domain.AuditEntry
		actorID      sql.NullString
		actorRole    sql.NullString
		actorChapter sql.NullString
		resourceID   sql.NullString
		details      sql.NullString
		reviewerID   sql.NullString
		reviewedAt   sql.NullTime
	)

	err := row.Scan(
		&e.ID, &actorID, &actorRole, &actorChapter, &e.Action,
		&e.Resource, &resourceID, &details, &e.IPAddress, &e.UserAgent,
		&e.Method, &e.URL, &e.StatusCode, &e.Success, &e.ErrorMessage,
		&e.DurationMS, &e.RiskLevel, &e.RequiresReview, &e.ReviewStatus,
		&reviewerID, &e.ReviewNotes, &reviewedAt, &e.CreatedAt,
	)
	if err != nil {
		return domain.AuditEntry{}, err
	}

	e.ActorID = mapNullString(actorID)
	e.ActorRole = domain.Role(mapNullString(actorRole))
	e.ActorChapter = mapNullString(actorChapter)
	e.ResourceID = mapNullString(resourceID)
	e.ReviewerID = mapNullString(reviewerID)
	e.ReviewedAt = mapNullTimePtr(reviewedAt)

	e.Details, err = mapDetails(details)
	if err != nil {
		return domain.AuditEntry{}, err
	}
	return e, nil
}

func (r *auditLogsRepo) Create(ctx context.Context, e domain.AuditEntry) error {
	var details sql.NullString
	if e.Details != nil {
		var err error
		if details, err = mapJSON(e.Details); err != nil {
			return err
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, actor_id, actor_role, actor_chapter, action, resource,
			resource_id, details, ip_address, user_agent, method, url,
			status_code, success, error_message, duration_ms, risk_level,
			requires_review, review_status, reviewer_id, review_notes,
			reviewed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, mapStringNull(e.ActorID), mapStringNull(string(e.ActorRole)),
		mapStringNull(e.ActorChapter), e.Action, e.Resource,
		mapStringNull(e.ResourceID), details, e.IPAddress, e.UserAgent,
		e.Method, e.URL, e.StatusCode, e.Success, e.ErrorMessage,
		e.DurationMS, e.RiskLevel, e.RequiresReview, e.ReviewStatus,
		mapStringNull(e.ReviewerID), e.ReviewNotes,
		mapOptionalTime(e.ReviewedAt), e.CreatedAt,
	)
	return mapConflict(err)
}

func (r *auditLogsRepo) GetByID(ctx context.Context, id string) (domain.AuditEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+auditColumns+` FROM audit_logs WHERE id = ?`, id)
	e, err := scanAuditEntry(row)
	if err != nil {
		return domain.AuditEntry{}, mapNotFound(err)
	}
	return e, nil
}

func (r *auditLogsRepo) CountFailedAttempts(ctx context.Context, ipAddress string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM audit_logs
		WHERE action = ? AND ip_address = ? AND created_at >= ?`,
		domain.ActionLoginAttemptFailed, ipAddress, since,
	).Scan(&count)
	return count, err
}

func (r *auditLogsRepo) UserActivity(ctx context.Context, actorID string, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_logs
		 WHERE actor_id = ? ORDER BY created_at DESC LIMIT ?`,
		actorID, limit)
	if err != nil {
		return nil, err
	}
	return collectAuditEntries(rows)
}

func (r *auditLogsRepo) Suspicious(ctx context.Context, since time.Time) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_logs
		 WHERE created_at >= ? AND (
			risk_level IN (?, ?)
			OR action IN (?, ?, ?)
			OR requires_review = 1
		 )
		 ORDER BY created_at DESC`,
		since, domain.RiskHigh, domain.RiskCritical,
		domain.ActionLoginAttemptFailed, domain.ActionAccountLockout,
		domain.ActionSuspiciousActivity)
	if err != nil {
		return nil, err
	}
	return collectAuditEntries(rows)
}

func (r *auditLogsRepo) List(ctx context.Context, f store.AuditFilter) ([]domain.AuditEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_logs WHERE 1=1`
	var args []any

	if f.ActorID != "" {
		query += ` AND actor_id = ?`
		args = append(args, f.ActorID)
	}
	if f.Action != "" {
		query += ` AND action = ?`
		args = append(args, f.Action)
	}
	if f.Resource != "" {
		query += ` AND resource = ?`
		args = append(args, f.Resource)
	}
	if !f.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, f.Since)
	}
	if f.IPAddress != "" {
		query += ` AND ip_address = ?`
		args = append(args, f.IPAddress)
	}
	query += ` ORDER BY created_at DESC`
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectAuditEntries(rows)
}

func (r *auditLogsRepo) UpdateReview(ctx context.Context, id string, status domain.ReviewStatus, reviewerID, notes string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE audit_logs SET
			review_status = ?, reviewer_id = ?, review_notes = ?, reviewed_at = ?
		WHERE id = ?`,
		status, mapStringNull(reviewerID), notes, at, id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func collectAuditEntries(rows *sql.Rows) ([]domain.AuditEntry, error) {
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
