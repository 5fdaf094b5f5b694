package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/belphemur/haushaltsheld/internal/household"
	"github.com/belphemur/haushaltsheld/internal/logging"
)

// timeLayout keeps stored instants lexicographically ordered.
const timeLayout = time.RFC3339

// Store persists users, groups and tasks in SQLite
type Store struct {
	db     *DB
	logger zerolog.Logger
}

var _ household.Repository = (*Store)(nil)

// NewStore creates a store on an open, migrated database
func NewStore(db *DB) *Store {
	return &Store{
		db:     db,
		logger: logging.GetLogger("store"),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// isUniqueViolation reports whether err comes from a UNIQUE or PRIMARY KEY constraint.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// CreateUser stores a user profile
func (s *Store) CreateUser(ctx context.Context, user household.User) error {
	_, err := s.db.conn.ExecContext(ctx, `
INSERT INTO users (id, email, name, group_id, created_at)
VALUES (?, ?, ?, NULLIF(?, ''), ?)`,
		user.ID, user.Email, user.Name, user.GroupID, formatTime(user.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "users.email") {
				return fmt.Errorf("email %s: %w", user.Email, household.ErrDuplicate)
			}
			return fmt.Errorf("id %s: %w", user.ID, household.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(ctx context.Context, userID string) (household.User, error) {
	row := s.db.conn.QueryRowContext(ctx, `
SELECT id, email, name, COALESCE(group_id, ''), created_at
FROM users WHERE id = ?`, userID)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return household.User{}, fmt.Errorf("user %s: %w", userID, household.ErrNotFound)
	}
	return user, err
}

// ListUsersByGroup returns the members of a group in join order
func (s *Store) ListUsersByGroup(ctx context.Context, groupID string) ([]household.User, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
SELECT u.id, u.email, u.name, COALESCE(u.group_id, ''), u.created_at
FROM group_members m
JOIN users u ON u.id = m.user_id
WHERE m.group_id = ?
ORDER BY m.rowid`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var users []household.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	return users, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (household.User, error) {
	var user household.User
	var createdAt string
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.GroupID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return household.User{}, err
		}
		return household.User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return household.User{}, err
	}
	user.CreatedAt = t
	return user, nil
}

// CreateGroup stores the group, adds the admin as first member and sets the
// admin's current group, in one transaction.
func (s *Store) CreateGroup(ctx context.Context, group household.Group) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		created := formatTime(group.CreatedAt)
		_, err := tx.ExecContext(ctx, `
INSERT INTO user_groups (id, name, invitation_code, admin_id, created_at)
VALUES (?, ?, ?, ?, ?)`,
			group.ID, group.Name, group.InvitationCode, group.AdminID, created)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("group %s: %w", group.ID, household.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert group: %w", err)
		}
		for _, memberID := range group.MemberIDs {
			if err := addMemberTx(ctx, tx, group.ID, memberID, created); err != nil {
				return err
			}
		}
		s.logger.Debug().Str("group_id", group.ID).Msg("Stored group")
		return nil
	})
}

// GetGroup retrieves a group with its member IDs
func (s *Store) GetGroup(ctx context.Context, groupID string) (household.Group, error) {
	return s.getGroup(ctx, `WHERE id = ?`, groupID)
}

// FindGroupByInvitationCode retrieves the group owning code
func (s *Store) FindGroupByInvitationCode(ctx context.Context, code string) (household.Group, error) {
	return s.getGroup(ctx, `WHERE invitation_code = ?`, code)
}

func (s *Store) getGroup(ctx context.Context, where string, arg string) (household.Group, error) {
	var group household.Group
	var createdAt string
	err := s.db.conn.QueryRowContext(ctx, `
SELECT id, name, invitation_code, admin_id, created_at
FROM user_groups `+where, arg).
		Scan(&group.ID, &group.Name, &group.InvitationCode, &group.AdminID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return household.Group{}, fmt.Errorf("group %s: %w", arg, household.ErrNotFound)
	}
	if err != nil {
		return household.Group{}, fmt.Errorf("failed to query group: %w", err)
	}
	if group.CreatedAt, err = parseTime(createdAt); err != nil {
		return household.Group{}, err
	}

	rows, err := s.db.conn.QueryContext(ctx, `
SELECT user_id FROM group_members WHERE group_id = ? ORDER BY rowid`, group.ID)
	if err != nil {
		return household.Group{}, fmt.Errorf("failed to query group members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return household.Group{}, fmt.Errorf("failed to scan member: %w", err)
		}
		group.MemberIDs = append(group.MemberIDs, id)
	}
	if err := rows.Err(); err != nil {
		return household.Group{}, fmt.Errorf("error iterating members: %w", err)
	}
	return group, nil
}

// AddMember adds a user to a group and makes it the user's current group
func (s *Store) AddMember(ctx context.Context, groupID, userID string) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM user_groups WHERE id = ?`, groupID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("group %s: %w", groupID, household.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to query group: %w", err)
		}
		return addMemberTx(ctx, tx, groupID, userID, formatTime(time.Now()))
	})
}

func addMemberTx(ctx context.Context, tx *sql.Tx, groupID, userID, joinedAt string) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)`,
		groupID, userID, joinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return household.ErrAlreadyMember
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE users SET group_id = ? WHERE id = ?`, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to update user group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", userID, household.ErrNotFound)
	}
	return nil
}

// CreateTask stores a task
func (s *Store) CreateTask(ctx context.Context, task household.Task) error {
	_, err := s.db.conn.ExecContext(ctx, `
INSERT INTO tasks (id, group_id, title, description, assigned_user_id, assigned_user_name, due_at, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.GroupID, task.Title, task.Description, task.AssignedUserID, task.AssignedUserName,
		formatTime(task.Date), string(task.Status), formatTime(task.CreatedAt), formatTime(task.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("task %s: %w", task.ID, household.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

const taskColumns = `id, group_id, title, description, assigned_user_id, assigned_user_name, due_at, status, created_at, updated_at`

// GetTask retrieves a task by ID
func (s *Store) GetTask(ctx context.Context, taskID string) (household.Task, error) {
	row := s.db.conn.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, taskID)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return household.Task{}, fmt.Errorf("task %s: %w", taskID, household.ErrNotFound)
	}
	return task, err
}

// ListTasks returns the tasks matching filter ordered by due date
func (s *Store) ListTasks(ctx context.Context, filter household.TaskFilter) ([]household.Task, error) {
	var conds []string
	var args []any
	if filter.GroupID != "" {
		conds = append(conds, "group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.AssigneeID != "" {
		conds = append(conds, "assigned_user_id = ?")
		args = append(args, filter.AssigneeID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.From != nil {
		conds = append(conds, "due_at >= ?")
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "due_at < ?")
		args = append(args, formatTime(*filter.To))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY due_at, title"

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []household.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	s.logger.Debug().Str("group_id", filter.GroupID).Int("count", len(tasks)).Msg("Listed tasks")
	return tasks, nil
}

func scanTask(row scanner) (household.Task, error) {
	var task household.Task
	var status, dueAt, createdAt, updatedAt string
	err := row.Scan(&task.ID, &task.GroupID, &task.Title, &task.Description,
		&task.AssignedUserID, &task.AssignedUserName, &dueAt, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return household.Task{}, err
		}
		return household.Task{}, fmt.Errorf("failed to scan task: %w", err)
	}
	task.Status = household.Status(status)
	if task.Date, err = parseTime(dueAt); err != nil {
		return household.Task{}, err
	}
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return household.Task{}, err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return household.Task{}, err
	}
	return task, nil
}

// UpdateTaskStatus sets a task's status
func (s *Store) UpdateTaskStatus(ctx context.Context, taskID string, status household.Status, updatedAt time.Time) error {
	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(updatedAt), taskID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return requireAffected(res, "task", taskID)
}

// DeleteTask removes a task
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return requireAffected(res, "task", taskID)
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, household.ErrNotFound)
	}
	return nil
}
