package household

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belphemur/haushaltsheld/internal/signals"
)

var fixedNow = time.Date(2026, time.February, 10, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *MockStore) {
	t.Helper()
	store := NewMockStore()
	svc := NewService(store).WithClock(func() time.Time { return fixedNow })
	return svc, store
}

func registerUsers(t *testing.T, svc *Service, users ...RegisterUserInput) {
	t.Helper()
	for _, u := range users {
		_, err := svc.RegisterUser(context.Background(), u)
		require.NoError(t, err)
	}
}

func TestRegisterUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterUserInput{ID: "u1", Email: " anna@example.com ", Name: "Anna"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "anna@example.com", user.Email)
	assert.Equal(t, fixedNow, user.CreatedAt)

	generated, err := svc.RegisterUser(ctx, RegisterUserInput{Email: "ben@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, generated.ID)
	assert.Equal(t, "ben@example.com", generated.DisplayName())

	_, err = svc.RegisterUser(ctx, RegisterUserInput{ID: "u2"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RegisterUser(ctx, RegisterUserInput{ID: "u1", Email: "again@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "id u1")

	_, err = svc.RegisterUser(ctx, RegisterUserInput{Email: "anna@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "email anna@example.com")
}

func TestCreateGroup(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	registerUsers(t, svc, RegisterUserInput{ID: "admin", Email: "admin@example.com"})

	group, err := svc.CreateGroup(ctx, "  WG Sonnenweg ", "admin")
	require.NoError(t, err)
	assert.Equal(t, "WG Sonnenweg", group.Name)
	assert.Equal(t, []string{"admin"}, group.MemberIDs)
	assert.Regexp(t, `^[A-Z0-9]{6}$`, group.InvitationCode)

	admin, err := store.GetUser(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, group.ID, admin.GroupID)

	_, err = svc.CreateGroup(ctx, "", "admin")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateGroup(ctx, "Other", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateGroupRetriesOnCodeCollision(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerUsers(t, svc,
		RegisterUserInput{ID: "a", Email: "a@example.com"},
		RegisterUserInput{ID: "b", Email: "b@example.com"},
	)

	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	svc.code = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	first, err := svc.CreateGroup(ctx, "First", "a")
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", first.InvitationCode)

	second, err := svc.CreateGroup(ctx, "Second", "b")
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", second.InvitationCode)
}

func TestCreateGroupGivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerUsers(t, svc,
		RegisterUserInput{ID: "a", Email: "a@example.com"},
		RegisterUserInput{ID: "b", Email: "b@example.com"},
	)
	svc.code = func() (string, error) { return "SAME00", nil }

	_, err := svc.CreateGroup(ctx, "First", "a")
	require.NoError(t, err)

	_, err = svc.CreateGroup(ctx, "Second", "b")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestJoinGroup(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	registerUsers(t, svc,
		RegisterUserInput{ID: "admin", Email: "admin@example.com"},
		RegisterUserInput{ID: "ben", Email: "ben@example.com"},
	)
	group, err := svc.CreateGroup(ctx, "Home", "admin")
	require.NoError(t, err)

	tests := []struct {
		name    string
		code    string
		userID  string
		wantErr error
	}{
		{name: "unknown code", code: "ZZZZZZ", userID: "ben", wantErr: ErrInvalidInvitationCode},
		{name: "empty code", code: "  ", userID: "ben", wantErr: ErrInvalidInvitationCode},
		{name: "unknown user", code: group.InvitationCode, userID: "ghost", wantErr: ErrNotFound},
		{name: "admin already member", code: group.InvitationCode, userID: "admin", wantErr: ErrAlreadyMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.JoinGroup(ctx, tt.code, tt.userID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	joined, err := svc.JoinGroup(ctx, " "+strings.ToLower(group.InvitationCode)+" ", "ben")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "ben"}, joined.MemberIDs)

	ben, err := store.GetUser(ctx, "ben")
	require.NoError(t, err)
	assert.Equal(t, group.ID, ben.GroupID)

	_, err = svc.JoinGroup(ctx, group.InvitationCode, "ben")
	assert.ErrorIs(t, err, ErrAlreadyMember)

	members, err := svc.ListMembers(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "ben", members[1].ID)
}

func TestCreateTaskValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerUsers(t, svc,
		RegisterUserInput{ID: "admin", Email: "admin@example.com", Name: "Anna"},
		RegisterUserInput{ID: "outsider", Email: "out@example.com"},
	)
	group, err := svc.CreateGroup(ctx, "Home", "admin")
	require.NoError(t, err)

	due := time.Date(2026, time.February, 12, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		input   CreateTaskInput
		wantErr error
	}{
		{"missing title", CreateTaskInput{GroupID: group.ID, AssignedUserID: "admin", Date: due}, ErrInvalidInput},
		{"missing assignee", CreateTaskInput{GroupID: group.ID, Title: "Bad putzen", Date: due}, ErrInvalidInput},
		{"missing date", CreateTaskInput{GroupID: group.ID, Title: "Bad putzen", AssignedUserID: "admin"}, ErrInvalidInput},
		{"unknown group", CreateTaskInput{GroupID: "nope", Title: "Bad putzen", AssignedUserID: "admin", Date: due}, ErrNotFound},
		{"assignee not a member", CreateTaskInput{GroupID: group.ID, Title: "Bad putzen", AssignedUserID: "outsider", Date: due}, ErrNotMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTask(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerUsers(t, svc,
		RegisterUserInput{ID: "admin", Email: "admin@example.com", Name: "Anna"},
		RegisterUserInput{ID: "ben", Email: "ben@example.com"},
	)
	group, err := svc.CreateGroup(ctx, "Home", "admin")
	require.NoError(t, err)
	_, err = svc.JoinGroup(ctx, group.InvitationCode, "ben")
	require.NoError(t, err)

	var mu sync.Mutex
	var events []signals.TasksChangedData
	signals.OnTasksChanged(func(_ context.Context, data signals.TasksChangedData) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, data)
	}, t.Name())
	t.Cleanup(func() { signals.RemoveTasksChangedListener(t.Name()) })

	later, err := svc.CreateTask(ctx, CreateTaskInput{
		GroupID: group.ID, Title: "Müll rausbringen", AssignedUserID: "ben",
		Date: time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "ben@example.com", later.AssignedUserName)
	assert.Equal(t, StatusOpen, later.Status)

	earlier, err := svc.CreateTask(ctx, CreateTaskInput{
		GroupID: group.ID, Title: "Staubsaugen", AssignedUserID: "admin",
		Date: time.Date(2026, time.February, 11, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna", earlier.AssignedUserName)

	tasks, err := svc.ListGroupTasks(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, earlier.ID, tasks[0].ID, "tasks are sorted by due date")

	mine, err := svc.ListTasks(ctx, TaskFilter{GroupID: group.ID, AssigneeID: "ben"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, later.ID, mine[0].ID)

	toggled, err := svc.ToggleTask(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, toggled.Status)

	completed, err := svc.ListTasks(ctx, TaskFilter{GroupID: group.ID, Status: StatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)

	toggled, err = svc.ToggleTask(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, toggled.Status)

	require.NoError(t, svc.DeleteTask(ctx, earlier.ID))
	assert.ErrorIs(t, svc.DeleteTask(ctx, earlier.ID), ErrNotFound)
	_, err = svc.ToggleTask(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 5
	}, time.Second, 10*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	for _, e := range events {
		assert.Equal(t, group.ID, e.GroupID)
	}
}

func TestListTasksRequiresGroup(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ListTasks(context.Background(), TaskFilter{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ListTasks(context.Background(), TaskFilter{GroupID: "g", Status: "done"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTaskFilterMatches(t *testing.T) {
	from := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	filter := TaskFilter{GroupID: "g", From: &from, To: &to}

	assert.True(t, filter.Matches(Task{GroupID: "g", Date: from}))
	assert.False(t, filter.Matches(Task{GroupID: "g", Date: to}))
	assert.False(t, filter.Matches(Task{GroupID: "other", Date: from}))
}

func TestStatus(t *testing.T) {
	s, err := ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, s)

	s, err = ParseStatus("COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = ParseStatus("done")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, StatusCompleted, StatusOpen.Toggled())
	assert.Equal(t, StatusOpen, StatusCompleted.Toggled())
}

func TestNewInvitationCode(t *testing.T) {
	seen := map[string]bool{}
	for i := range 50 {
		code, err := NewInvitationCode()
		require.NoError(t, err)
		assert.Regexp(t, `^[A-Z0-9]{6}$`, code, fmt.Sprintf("code %d", i))
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

