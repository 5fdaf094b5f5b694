package household

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidInvitationCode = errors.New("invalid invitation code")
	ErrAlreadyMember         = errors.New("already a member of this group")
	ErrNotMember             = errors.New("user is not a member of this group")
	// ErrDuplicate is returned by repositories when a unique value such as an
	// invitation code or user email is already taken.
	ErrDuplicate = errors.New("duplicate")
)
