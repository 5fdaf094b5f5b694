package household

import (
	"context"
	"time"
)

// TaskFilter narrows ListTasks. Zero fields do not filter.
type TaskFilter struct {
	GroupID    string
	AssigneeID string
	Status     Status
	From       *time.Time // inclusive
	To         *time.Time // exclusive
}

// UserRepository stores user profiles
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, userID string) (User, error)
	ListUsersByGroup(ctx context.Context, groupID string) ([]User, error)
}

// GroupRepository stores groups and their membership
type GroupRepository interface {
	// CreateGroup stores the group, records the admin as its first member and
	// makes it the admin's current group.
	CreateGroup(ctx context.Context, group Group) error
	GetGroup(ctx context.Context, groupID string) (Group, error)
	FindGroupByInvitationCode(ctx context.Context, code string) (Group, error)
	// AddMember adds the user to the group and makes it the user's current group.
	AddMember(ctx context.Context, groupID, userID string) error
}

// TaskRepository stores tasks
type TaskRepository interface {
	CreateTask(ctx context.Context, task Task) error
	GetTask(ctx context.Context, taskID string) (Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	UpdateTaskStatus(ctx context.Context, taskID string, status Status, updatedAt time.Time) error
	DeleteTask(ctx context.Context, taskID string) error
}

// Repository is the full storage surface the Service needs
type Repository interface {
	UserRepository
	GroupRepository
	TaskRepository
}

// Matches reports whether task passes the filter.
func (f TaskFilter) Matches(task Task) bool {
	if f.GroupID != "" && task.GroupID != f.GroupID {
		return false
	}
	if f.AssigneeID != "" && task.AssignedUserID != f.AssigneeID {
		return false
	}
	if f.Status != "" && task.Status != f.Status {
		return false
	}
	if f.From != nil && task.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && !task.Date.Before(*f.To) {
		return false
	}
	return true
}
