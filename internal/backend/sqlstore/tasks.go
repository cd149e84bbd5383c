package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskpro/internal/service"
)

const taskColumns = `id, title, description, status, priority, due_date, user_id, created_at`

// ListTasks returns the owner's tasks, newest first.
func (s *Store) ListTasks(ctx context.Context, ownerID string) ([]service.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []service.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// InsertTask stores a new row and returns it with its generated id.
func (s *Store) InsertTask(ctx context.Context, row service.TaskRow) (service.Task, error) {
	t := service.Task{
		ID:          uuid.NewString(),
		Title:       row.Title,
		Description: row.Description,
		Status:      row.Status,
		Priority:    row.Priority,
		DueDate:     row.DueDate,
		UserID:      row.UserID,
		CreatedAt:   s.now().UTC(),
	}
	if t.Status == "" {
		t.Status = service.StatusPending
	}
	if t.Priority == "" {
		t.Priority = service.PriorityMedium
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, ptrString(t.Description), string(t.Status), string(t.Priority),
		dateString(t.DueDate), t.UserID, t.CreatedAt.UnixNano())
	if err != nil {
		return service.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// UpdateTask rewrites every field of the task matching id and owner. It
// returns the number of matched rows.
func (s *Store) UpdateTask(ctx context.Context, id string, row service.TaskRow) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?
		WHERE id = ? AND user_id = ?`,
		row.Title, ptrString(row.Description), string(row.Status), string(row.Priority),
		dateString(row.DueDate), id, row.UserID)
	if err != nil {
		return 0, fmt.Errorf("update task: %w", err)
	}
	return res.RowsAffected()
}

// DeleteTask removes the task matching id and owner.
func (s *Store) DeleteTask(ctx context.Context, id, ownerID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete task: %w", err)
	}
	return res.RowsAffected()
}

// GetProfile returns service.ErrNotFound when the user has no profile row.
func (s *Store) GetProfile(ctx context.Context, userID string) (service.Profile, error) {
	var (
		p        service.Profile
		fullName sql.NullString
		email    sql.NullString
		created  int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, email, created_at FROM profiles WHERE id = ?`, userID).
		Scan(&p.ID, &fullName, &email, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return service.Profile{}, service.ErrNotFound
	}
	if err != nil {
		return service.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	p.FullName = fullName.String
	p.Email = email.String
	p.CreatedAt = time.Unix(0, created).UTC()
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (service.Task, error) {
	var (
		t           service.Task
		description sql.NullString
		due         sql.NullString
		status      string
		priority    string
		created     int64
	)
	if err := sc.Scan(&t.ID, &t.Title, &description, &status, &priority, &due, &t.UserID, &created); err != nil {
		return service.Task{}, fmt.Errorf("scan task: %w", err)
	}
	t.Status = service.Status(status)
	t.Priority = service.Priority(priority)
	t.CreatedAt = time.Unix(0, created).UTC()
	if description.Valid {
		d := description.String
		t.Description = &d
	}
	if due.Valid && due.String != "" {
		d, err := time.Parse(service.DateLayout, due.String)
		if err != nil {
			return service.Task{}, fmt.Errorf("task %s: bad due date %q: %w", t.ID, due.String, err)
		}
		t.DueDate = &d
	}
	return t, nil
}

func ptrString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func dateString(d *time.Time) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Format(service.DateLayout), Valid: true}
}
