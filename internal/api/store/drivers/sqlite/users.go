package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/store"
)

type usersRepo struct {
	db querier
}

const userColumns = `id, name, email, password_hash, role, chapter_id,
	membership_status, email_verified, email_verification_token,
	email_verify_expires, password_reset_token, password_reset_expires,
	executive_position, university, company, last_login, login_count,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u             domain.User
		chapterID     sql.NullString
		verifyToken   sql.NullString
		verifyExpires sql.NullTime
		resetToken    sql.NullString
		resetExpires  sql.NullTime
		execPos       sql.NullString
		lastLogin     sql.NullTime
	)

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &chapterID,
		&u.MembershipStatus, &u.EmailVerified, &verifyToken,
		&verifyExpires, &resetToken, &resetExpires,
		&execPos, &u.University, &u.Company, &lastLogin, &u.LoginCount,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.ChapterID = mapNullString(chapterID)
	u.EmailVerificationToken = mapNullString(verifyToken)
	u.EmailVerifyExpires = mapNullTimePtr(verifyExpires)
	u.PasswordResetToken = mapNullString(resetToken)
	u.PasswordResetExpires = mapNullTimePtr(resetExpires)
	u.LastLogin = mapNullTimePtr(lastLogin)

	u.ExecutivePosition, err = mapExecutivePosition(execPos)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = lower(?)`,
		strings.TrimSpace(email))
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetByVerificationToken(ctx context.Context, tokenHash string) (domain.User, error) {
	if tokenHash == "" {
		return domain.User{}, store.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_verification_token = ?`, tokenHash)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetByResetToken(ctx context.Context, tokenHash string) (domain.User, error) {
	if tokenHash == "" {
		return domain.User{}, store.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE password_reset_token = ?`, tokenHash)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) List(ctx context.Context, f store.UserFilter) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	var args []any

	if f.Role != "" {
		query += ` AND role = ?`
		args = append(args, f.Role)
	}
	if f.ChapterID != "" {
		query += ` AND chapter_id = ?`
		args = append(args, f.ChapterID)
	}
	if f.Status != "" {
		query += ` AND membership_status = ?`
		args = append(args, f.Status)
	}
	if f.University != "" {
		query += ` AND lower(university) = lower(?)`
		args = append(args, f.University)
	}
	if f.Search != "" {
		query += ` AND (lower(name) LIKE ? OR lower(email) LIKE ?)`
		pattern := "%" + strings.ToLower(f.Search) + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) Create(ctx context.Context, u domain.User) error {
	execPos, err := execPositionJSON(u.ExecutivePosition)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, name, email, password_hash, role, chapter_id,
			membership_status, email_verified, email_verification_token,
			email_verify_expires, password_reset_token, password_reset_expires,
			executive_position, university, company, last_login, login_count,
			created_at, updated_at
		) VALUES (?, ?, lower(?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, strings.TrimSpace(u.Email), u.PasswordHash, u.Role,
		mapStringNull(u.ChapterID), u.MembershipStatus, u.EmailVerified,
		mapStringNull(u.EmailVerificationToken), mapOptionalTime(u.EmailVerifyExpires),
		mapStringNull(u.PasswordResetToken), mapOptionalTime(u.PasswordResetExpires),
		execPos, u.University, u.Company, mapOptionalTime(u.LastLogin), u.LoginCount,
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *usersRepo) Update(ctx context.Context, u domain.User) error {
	execPos, err := execPositionJSON(u.ExecutivePosition)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			name = ?, email = lower(?), password_hash = ?, role = ?,
			chapter_id = ?, membership_status = ?, email_verified = ?,
			email_verification_token = ?, email_verify_expires = ?,
			password_reset_token = ?, password_reset_expires = ?,
			executive_position = ?, university = ?, company = ?,
			last_login = ?, login_count = ?, updated_at = ?
		WHERE id = ?`,
		u.Name, strings.TrimSpace(u.Email), u.PasswordHash, u.Role,
		mapStringNull(u.ChapterID), u.MembershipStatus, u.EmailVerified,
		mapStringNull(u.EmailVerificationToken), mapOptionalTime(u.EmailVerifyExpires),
		mapStringNull(u.PasswordResetToken), mapOptionalTime(u.PasswordResetExpires),
		execPos, u.University, u.Company,
		mapOptionalTime(u.LastLogin), u.LoginCount, u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		return mapConflict(err)
	}
	return requireRow(res)
}

func (r *usersRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) Stats(ctx context.Context, chapterID string) (store.UserStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN membership_status = 'active' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN membership_status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN membership_status = 'suspended' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN role = 'executive' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN role = 'chapter_admin' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN role = 'industry_partner' THEN 1 ELSE 0 END), 0)
		FROM users`
	var args []any
	if chapterID != "" {
		query += ` WHERE chapter_id = ?`
		args = append(args, chapterID)
	}

	var s store.UserStats
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&s.TotalUsers, &s.ActiveUsers, &s.PendingUsers, &s.SuspendedUsers,
		&s.Executives, &s.ChapterAdmins, &s.IndustryPartners,
	)
	if err != nil {
		return store.UserStats{}, err
	}
	return s, nil
}

func (r *usersRepo) ClearExpiredTokens(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			email_verification_token = NULL, email_verify_expires = NULL
		WHERE email_verify_expires IS NOT NULL AND email_verify_expires < ?`, now)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE users SET
			password_reset_token = NULL, password_reset_expires = NULL
		WHERE password_reset_expires IS NOT NULL AND password_reset_expires < ?`, now)
	return err
}

func execPositionJSON(pos *domain.ExecutivePosition) (sql.NullString, error) {
	if pos == nil {
		return sql.NullString{Valid: false}, nil
	}
	return mapJSON(pos)
}

// requireRow turns a zero-rows-affected update/delete into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
