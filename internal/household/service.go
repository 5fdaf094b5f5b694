package household

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/belphemur/haushaltsheld/internal/logging"
	"github.com/belphemur/haushaltsheld/internal/signals"
)

// maxInvitationAttempts bounds retries when a generated code is already taken.
const maxInvitationAttempts = 5

// RegisterUserInput describes a profile to create
type RegisterUserInput struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CreateTaskInput describes a task to create
type CreateTaskInput struct {
	GroupID        string    `json:"group_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	AssignedUserID string    `json:"assigned_user_id"`
	Date           time.Time `json:"date"`
}

// Service implements the household use cases on top of a Repository
type Service struct {
	repo   Repository
	now    func() time.Time
	newID  func() string
	code   func() (string, error)
	logger zerolog.Logger
}

// NewService creates a household service
func NewService(repo Repository) *Service {
	return &Service{
		repo:   repo,
		now:    time.Now,
		newID:  uuid.NewString,
		code:   NewInvitationCode,
		logger: logging.GetLogger("household"),
	}
}

// WithClock replaces the time source, used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RegisterUser stores a profile for an identity. A blank ID gets a fresh one.
func (s *Service) RegisterUser(ctx context.Context, in RegisterUserInput) (User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return User{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = s.newID()
	}
	user := User{
		ID:        id,
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return User{}, fmt.Errorf("user already registered: %w", err)
		}
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info().Str("user_id", user.ID).Msg("Registered user")
	return user, nil
}

// GetUser returns a user profile
func (s *Service) GetUser(ctx context.Context, userID string) (User, error) {
	return s.repo.GetUser(ctx, userID)
}

// CreateGroup creates a group with adminID as its only member and makes it the
// admin's current group.
func (s *Service) CreateGroup(ctx context.Context, name, adminID string) (Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Group{}, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	if _, err := s.repo.GetUser(ctx, adminID); err != nil {
		return Group{}, fmt.Errorf("admin %s: %w", adminID, err)
	}

	group := Group{
		ID:        s.newID(),
		Name:      name,
		AdminID:   adminID,
		MemberIDs: []string{adminID},
		CreatedAt: s.now().UTC(),
	}

	for attempt := 1; ; attempt++ {
		code, err := s.code()
		if err != nil {
			return Group{}, err
		}
		group.InvitationCode = code

		err = s.repo.CreateGroup(ctx, group)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicate) || attempt >= maxInvitationAttempts {
			return Group{}, fmt.Errorf("failed to create group: %w", err)
		}
		s.logger.Debug().Int("attempt", attempt).Msg("Invitation code collision, retrying")
	}

	s.logger.Info().
		Str("group_id", group.ID).
		Str("admin_id", adminID).
		Msg("Created group")
	return group, nil
}

// JoinGroup adds userID to the group owning code.
func (s *Service) JoinGroup(ctx context.Context, code, userID string) (Group, error) {
	code = NormalizeInvitationCode(code)
	if code == "" {
		return Group{}, ErrInvalidInvitationCode
	}
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return Group{}, fmt.Errorf("user %s: %w", userID, err)
	}

	group, err := s.repo.FindGroupByInvitationCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Group{}, ErrInvalidInvitationCode
		}
		return Group{}, err
	}
	if group.HasMember(userID) {
		return Group{}, ErrAlreadyMember
	}

	if err := s.repo.AddMember(ctx, group.ID, userID); err != nil {
		return Group{}, fmt.Errorf("failed to join group: %w", err)
	}
	group.MemberIDs = append(group.MemberIDs, userID)

	s.logger.Info().
		Str("group_id", group.ID).
		Str("user_id", userID).
		Msg("User joined group")
	return group, nil
}

// GetGroup returns a group with its members
func (s *Service) GetGroup(ctx context.Context, groupID string) (Group, error) {
	return s.repo.GetGroup(ctx, groupID)
}

// ListMembers returns the users of a group
func (s *Service) ListMembers(ctx context.Context, groupID string) ([]User, error) {
	if _, err := s.repo.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.ListUsersByGroup(ctx, groupID)
}

// CreateTask adds a task to a group. The assignee must be a member.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.AssignedUserID) == "" {
		return Task{}, fmt.Errorf("%w: assigned user is required", ErrInvalidInput)
	}
	if in.Date.IsZero() {
		return Task{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	group, err := s.repo.GetGroup(ctx, in.GroupID)
	if err != nil {
		return Task{}, err
	}
	if !group.HasMember(in.AssignedUserID) {
		return Task{}, ErrNotMember
	}
	assignee, err := s.repo.GetUser(ctx, in.AssignedUserID)
	if err != nil {
		return Task{}, fmt.Errorf("assignee %s: %w", in.AssignedUserID, err)
	}

	now := s.now().UTC()
	task := Task{
		ID:               s.newID(),
		GroupID:          group.ID,
		Title:            title,
		Description:      strings.TrimSpace(in.Description),
		AssignedUserID:   assignee.ID,
		AssignedUserName: assignee.DisplayName(),
		Date:             in.Date,
		Status:           StatusOpen,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info().
		Str("group_id", task.GroupID).
		Str("task_id", task.ID).
		Str("assignee", task.AssignedUserID).
		Msg("Created task")
	signals.EmitTasksChanged(ctx, task.GroupID, task.ID)
	return task, nil
}

// ListTasks returns the tasks matching filter, sorted by due date.
func (s *Service) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	if filter.GroupID == "" {
		return nil, fmt.Errorf("%w: group is required", ErrInvalidInput)
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, filter.Status)
	}
	tasks, err := s.repo.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	SortByDate(tasks)
	return tasks, nil
}

// ListGroupTasks returns every task of a group.
func (s *Service) ListGroupTasks(ctx context.Context, groupID string) ([]Task, error) {
	return s.ListTasks(ctx, TaskFilter{GroupID: groupID})
}

// ToggleTask flips a task between open and completed.
func (s *Service) ToggleTask(ctx context.Context, taskID string) (Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	task.Status = task.Status.Toggled()
	task.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateTaskStatus(ctx, task.ID, task.Status, task.UpdatedAt); err != nil {
		return Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Debug().
		Str("task_id", task.ID).
		Str("status", string(task.Status)).
		Msg("Toggled task")
	signals.EmitTasksChanged(ctx, task.GroupID, task.ID)
	return task, nil
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, taskID string) error {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.logger.Info().Str("task_id", taskID).Msg("Deleted task")
	signals.EmitTasksChanged(ctx, task.GroupID, task.ID)
	return nil
}

// SortByDate orders tasks by due date, then title, in place.
func SortByDate(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
}
