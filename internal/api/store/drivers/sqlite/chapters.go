package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/store"
)

type chaptersRepo struct {
	db querier
}

const chapterColumns = `id, name, university, location, status, created_at, updated_at`

func scanChapter(row rowScanner) (domain.Chapter, error) {
	var c domain.Chapter
	err := row.Scan(&c.ID, &c.Name, &c.University, &c.Location, &c.Status,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Chapter{}, err
	}
	return c, nil
}

func (r *chaptersRepo) GetByID(ctx context.Context, id string) (domain.Chapter, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE id = ?`, id)
	c, err := scanChapter(row)
	if err != nil {
		return domain.Chapter{}, mapNotFound(err)
	}
	if c.ExecutiveTeam, err = r.roster(ctx, c.ID); err != nil {
		return domain.Chapter{}, err
	}
	return c, nil
}

func (r *chaptersRepo) GetByName(ctx context.Context, name string) (domain.Chapter, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE name = ?`, name)
	c, err := scanChapter(row)
	if err != nil {
		return domain.Chapter{}, mapNotFound(err)
	}
	if c.ExecutiveTeam, err = r.roster(ctx, c.ID); err != nil {
		return domain.Chapter{}, err
	}
	return c, nil
}

func (r *chaptersRepo) GetByUniversity(ctx context.Context, normalized string, status domain.ChapterStatus) (domain.Chapter, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+chapterColumns+` FROM chapters
		 WHERE university_normalized = ? AND status = ?
		 ORDER BY created_at LIMIT 1`,
		normalized, status)
	c, err := scanChapter(row)
	if err != nil {
		return domain.Chapter{}, mapNotFound(err)
	}
	if c.ExecutiveTeam, err = r.roster(ctx, c.ID); err != nil {
		return domain.Chapter{}, err
	}
	return c, nil
}

func (r *chaptersRepo) List(ctx context.Context, f store.ChapterFilter) ([]domain.Chapter, error) {
	query := `SELECT ` + chapterColumns + ` FROM chapters WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.University != "" {
		query += ` AND university_normalized = ?`
		args = append(args, domain.NormalizeUniversity(f.University))
	}
	if f.Location != "" {
		query += ` AND lower(location) = lower(?)`
		args = append(args, f.Location)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []domain.Chapter
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range chapters {
		if chapters[i].ExecutiveTeam, err = r.roster(ctx, chapters[i].ID); err != nil {
			return nil, err
		}
	}
	return chapters, nil
}

func (r *chaptersRepo) Create(ctx context.Context, c domain.Chapter) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chapters (id, name, university, university_normalized,
			location, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.University, domain.NormalizeUniversity(c.University),
		c.Location, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *chaptersRepo) Update(ctx context.Context, c domain.Chapter) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE chapters SET
			name = ?, university = ?, university_normalized = ?,
			location = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.University, domain.NormalizeUniversity(c.University),
		c.Location, c.Status, c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return mapConflict(err)
	}
	return requireRow(res)
}

func (r *chaptersRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chapters WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *chaptersRepo) AddExecutiveSeat(ctx context.Context, chapterID string, seat domain.ExecutiveSeat) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chapter_executives (id, chapter_id, user_id, position,
			term, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		seat.ID, chapterID, seat.UserID, seat.Position, seat.Term,
		seat.StartDate, mapOptionalTime(seat.EndDate),
	)
	return mapConflict(err)
}

func (r *chaptersRepo) CloseExecutiveSeat(ctx context.Context, seatID string, endedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE chapter_executives SET end_date = ?
		WHERE id = ? AND end_date IS NULL`,
		endedAt, seatID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *chaptersRepo) roster(ctx context.Context, chapterID string) ([]domain.ExecutiveSeat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, position, term, start_date, end_date
		FROM chapter_executives
		WHERE chapter_id = ?
		ORDER BY start_date`, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []domain.ExecutiveSeat
	for rows.Next() {
		var (
			seat    domain.ExecutiveSeat
			endDate sql.NullTime
		)
		if err := rows.Scan(&seat.ID, &seat.UserID, &seat.Position,
			&seat.Term, &seat.StartDate, &endDate); err != nil {
			return nil, err
		}
		seat.EndDate = mapNullTimePtr(endDate)
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}
