package household

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MockStore is an in-memory Repository for tests
type MockStore struct {
	mu     sync.RWMutex
	users  map[string]User
	groups map[string]Group
	tasks  map[string]Task
	order  []string
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{
		users:  map[string]User{},
		groups: map[string]Group{},
		tasks:  map[string]Task{},
	}
}

// CreateUser stores a user
func (m *MockStore) CreateUser(_ context.Context, user User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; ok {
		return fmt.Errorf("id %s: %w", user.ID, ErrDuplicate)
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("email %s: %w", user.Email, ErrDuplicate)
		}
	}
	m.users[user.ID] = user
	return nil
}

// GetUser returns a user
func (m *MockStore) GetUser(_ context.Context, userID string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[userID]
	if !ok {
		return User{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return user, nil
}

// ListUsersByGroup returns the members of a group in join order
func (m *MockStore) ListUsersByGroup(_ context.Context, groupID string) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	group, ok := m.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	users := make([]User, 0, len(group.MemberIDs))
	for _, id := range group.MemberIDs {
		if u, ok := m.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

// CreateGroup stores a group and sets the admin's current group
func (m *MockStore) CreateGroup(_ context.Context, group Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		if g.InvitationCode == group.InvitationCode {
			return fmt.Errorf("invitation code: %w", ErrDuplicate)
		}
	}
	group.MemberIDs = slices.Clone(group.MemberIDs)
	m.groups[group.ID] = group
	if u, ok := m.users[group.AdminID]; ok {
		u.GroupID = group.ID
		m.users[u.ID] = u
	}
	return nil
}

// GetGroup returns a group
func (m *MockStore) GetGroup(_ context.Context, groupID string) (Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	group, ok := m.groups[groupID]
	if !ok {
		return Group{}, fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	group.MemberIDs = slices.Clone(group.MemberIDs)
	return group, nil
}

// FindGroupByInvitationCode returns the group owning code
func (m *MockStore) FindGroupByInvitationCode(_ context.Context, code string) (Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.groups {
		if g.InvitationCode == code {
			g.MemberIDs = slices.Clone(g.MemberIDs)
			return g, nil
		}
	}
	return Group{}, fmt.Errorf("invitation code %s: %w", code, ErrNotFound)
}

// AddMember appends a member and sets the user's current group
func (m *MockStore) AddMember(_ context.Context, groupID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	group, ok := m.groups[groupID]
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	if slices.Contains(group.MemberIDs, userID) {
		return ErrAlreadyMember
	}
	group.MemberIDs = append(group.MemberIDs, userID)
	m.groups[groupID] = group
	if u, ok := m.users[userID]; ok {
		u.GroupID = groupID
		m.users[userID] = u
	}
	return nil
}

// CreateTask stores a task
func (m *MockStore) CreateTask(_ context.Context, task Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; ok {
		return fmt.Errorf("task %s: %w", task.ID, ErrDuplicate)
	}
	m.tasks[task.ID] = task
	m.order = append(m.order, task.ID)
	return nil
}

// GetTask returns a task
func (m *MockStore) GetTask(_ context.Context, taskID string) (Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return Task{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	return task, nil
}

// ListTasks returns tasks matching filter in insertion order
func (m *MockStore) ListTasks(_ context.Context, filter TaskFilter) ([]Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var tasks []Task
	for _, id := range m.order {
		task, ok := m.tasks[id]
		if !ok || !filter.Matches(task) {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// UpdateTaskStatus changes a task's status
func (m *MockStore) UpdateTaskStatus(_ context.Context, taskID string, status Status, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	task.Status = status
	task.UpdatedAt = updatedAt
	m.tasks[taskID] = task
	return nil
}

// DeleteTask removes a task
func (m *MockStore) DeleteTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[taskID]; !ok {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	delete(m.tasks, taskID)
	m.order = slices.DeleteFunc(m.order, func(id string) bool { return id == taskID })
	return nil
}
