// Package household holds the users, groups and tasks of a shared household
// and the rules for changing them.
package household

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"
)

// Status is the lifecycle state of a task
type Status string

const (
	StatusOpen      Status = "open"
	StatusCompleted Status = "completed"
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	return s == StatusOpen || s == StatusCompleted
}

// Toggled flips open and completed.
func (s Status) Toggled() Status {
	if s == StatusCompleted {
		return StatusOpen
	}
	return StatusCompleted
}

// ParseStatus parses a string into a Status, defaulting empty input to open.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusOpen, nil
	}
	status := Status(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: status %q (must be 'open' or 'completed')", ErrInvalidInput, s)
	}
	return status, nil
}

// User is a household member. The ID comes from the identity provider.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	GroupID   string    `json:"group_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName is the name, or the email when no name was given.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

// Group is a shared household. Members join it with the invitation code.
type Group struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	InvitationCode string    `json:"invitation_code"`
	AdminID        string    `json:"admin_id"`
	MemberIDs      []string  `json:"member_ids"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasMember reports whether userID belongs to the group.
func (g Group) HasMember(userID string) bool {
	return slices.Contains(g.MemberIDs, userID)
}

// Task is a chore due on a given day and assigned to one member.
type Task struct {
	ID               string    `json:"id"`
	GroupID          string    `json:"group_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	AssignedUserID   string    `json:"assigned_user_id"`
	AssignedUserName string    `json:"assigned_user_name"`
	Date             time.Time `json:"date"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DueAt implements calendar.Item.
func (t Task) DueAt() time.Time { return t.Date }

// AssigneeID implements calendar.Item.
func (t Task) AssigneeID() string { return t.AssignedUserID }

// IsCompleted reports whether the task is done.
func (t Task) IsCompleted() bool { return t.Status == StatusCompleted }

const (
	invitationAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	InvitationCodeLength = 6
)

// NewInvitationCode returns a random six character code from A-Z and 0-9.
func NewInvitationCode() (string, error) {
	var b strings.Builder
	b.Grow(InvitationCodeLength)
	limit := big.NewInt(int64(len(invitationAlphabet)))
	for range InvitationCodeLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate invitation code: %w", err)
		}
		b.WriteByte(invitationAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeInvitationCode upper-cases and trims user input.
func NormalizeInvitationCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
