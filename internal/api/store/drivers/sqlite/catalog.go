package sqlite

import (
	"context"

	"github.com/threatcombat/threatcombat/internal/api/domain"
)

type researchRepo struct {
	db querier
}

const researchColumns = `id, title, abstract, author_id, chapter_id, published, created_at, updated_at`

func scanResearch(row rowScanner) (domain.Research, error) {
	var r domain.Research
	err := row.Scan(&r.ID, &r.Title, &r.Abstract, &r.AuthorID, &r.ChapterID,
		&r.Published, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r *researchRepo) GetByID(ctx context.Context, id string) (domain.Research, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+researchColumns+` FROM research WHERE id = ?`, id)
	entry, err := scanResearch(row)
	if err != nil {
		return domain.Research{}, mapNotFound(err)
	}
	return entry, nil
}

func (r *researchRepo) ListByChapter(ctx context.Context, chapterID string) ([]domain.Research, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+researchColumns+` FROM research
		 WHERE chapter_id = ? ORDER BY created_at DESC`, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Research
	for rows.Next() {
		entry, err := scanResearch(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *researchRepo) Create(ctx context.Context, entry domain.Research) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO research (id, title, abstract, author_id, chapter_id,
			published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Title, entry.Abstract, entry.AuthorID,
		entry.ChapterID, entry.Published, entry.CreatedAt, entry.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *researchRepo) Update(ctx context.Context, entry domain.Research) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE research SET
			title = ?, abstract = ?, published = ?, updated_at = ?
		WHERE id = ?`,
		entry.Title, entry.Abstract, entry.Published, entry.UpdatedAt,
		entry.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *researchRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM research WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type eventsRepo struct {
	db querier
}

const eventColumns = `id, title, description, chapter_id, created_by, starts_at, ends_at, location, created_at, updated_at`

func scanEvent(row rowScanner) (domain.Event, error) {
	var e domain.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.ChapterID,
		&e.CreatedBy, &e.StartsAt, &e.EndsAt, &e.Location,
		&e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *eventsRepo) GetByID(ctx context.Context, id string) (domain.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err != nil {
		return domain.Event{}, mapNotFound(err)
	}
	return e, nil
}

func (r *eventsRepo) ListByChapter(ctx context.Context, chapterID string) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE chapter_id = ? ORDER BY starts_at DESC`, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventsRepo) Create(ctx context.Context, e domain.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, title, description, chapter_id, created_by,
			starts_at, ends_at, location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Description, e.ChapterID, e.CreatedBy,
		e.StartsAt, e.EndsAt, e.Location, e.CreatedAt, e.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *eventsRepo) Update(ctx context.Context, e domain.Event) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events SET
			title = ?, description = ?, starts_at = ?, ends_at = ?,
			location = ?, updated_at = ?
		WHERE id = ?`,
		e.Title, e.Description, e.StartsAt, e.EndsAt, e.Location,
		e.UpdatedAt, e.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *eventsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type coursesRepo struct {
	db querier
}

const courseColumns = `id, title, description, created_by, level, created_at, updated_at`

func scanCourse(row rowScanner) (domain.Course, error) {
	var c domain.Course
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.CreatedBy,
		&c.Level, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *coursesRepo) GetByID(ctx context.Context, id string) (domain.Course, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)
	c, err := scanCourse(row)
	if err != nil {
		return domain.Course{}, mapNotFound(err)
	}
	return c, nil
}

func (r *coursesRepo) List(ctx context.Context) ([]domain.Course, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *coursesRepo) Create(ctx context.Context, c domain.Course) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO courses (id, title, description, created_by, level,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Description, c.CreatedBy, c.Level,
		c.CreatedAt, c.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *coursesRepo) Update(ctx context.Context, c domain.Course) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE courses SET
			title = ?, description = ?, level = ?, updated_at = ?
		WHERE id = ?`,
		c.Title, c.Description, c.Level, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *coursesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
