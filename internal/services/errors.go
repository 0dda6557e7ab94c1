package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service wraps exactly one of these,
// so callers can classify it with errors.Is or KindOf.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotAssignable = errors.New("not assignable")
	ErrNotDeletable  = errors.New("not deletable")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflict      = errors.New("conflict")
	ErrUnavailable   = errors.New("unavailable")
	ErrStorage       = errors.New("storage failure")
)

var (
	ErrTaskNotFound           = fmt.Errorf("task %w", ErrNotFound)
	ErrParentTaskNotFound     = fmt.Errorf("parent task %w", ErrNotFound)
	ErrUserNotFound           = fmt.Errorf("user %w", ErrNotFound)
	ErrOwnerNotFound          = fmt.Errorf("task owner %w", ErrNotFound)
	ErrNotTaskOwner           = fmt.Errorf("%w: only the task owner can perform this action", ErrUnauthorized)
	ErrRoleNotPermitted       = fmt.Errorf("%w: role is not permitted to perform this action", ErrUnauthorized)
	ErrTaskNotVisible         = fmt.Errorf("%w: task is not visible to this user", ErrUnauthorized)
	ErrDirectorProtected      = fmt.Errorf("%w: director accounts cannot be deleted or demoted", ErrUnauthorized)
	ErrNoManager              = fmt.Errorf("%w: user has no manager", ErrNotAssignable)
	ErrTaskInFlight           = fmt.Errorf("%w: tasks in progress or completed cannot be deleted", ErrNotDeletable)
	ErrUnknownStatus          = fmt.Errorf("%w: status must be PENDING, IN_PROGRESS or COMPLETED", ErrInvalidStatus)
	ErrTitleRequired          = fmt.Errorf("%w: title is required", ErrInvalidInput)
	ErrTitleEmpty             = fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	ErrInvalidRole            = fmt.Errorf("%w: unknown role", ErrInvalidInput)
	ErrInvalidManager         = fmt.Errorf("%w: manager must be an existing user with role MANAGER", ErrInvalidInput)
	ErrManagerHasTeam         = fmt.Errorf("%w: reassign the manager's team members before changing their role", ErrInvalidInput)
	ErrUsernameRequired       = fmt.Errorf("%w: username is required", ErrInvalidInput)
	ErrUsernameLength         = fmt.Errorf("%w: username must be between 3 and 50 characters", ErrInvalidInput)
	ErrEmailRequired          = fmt.Errorf("%w: email is required", ErrInvalidInput)
	ErrPasswordTooShort       = fmt.Errorf("%w: password too short", ErrInvalidInput)
	ErrNoTaskIDsProvided      = fmt.Errorf("%w: at least one task ID is required", ErrInvalidInput)
	ErrUsernameTaken          = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrEmailTaken             = fmt.Errorf("%w: email already exists", ErrConflict)
	ErrAIServiceNotConfigured = fmt.Errorf("%w: AI service is not configured", ErrUnavailable)
	ErrAINoTasksGenerated     = fmt.Errorf("%w: AI did not generate any tasks", ErrInvalidInput)
	ErrAINoValidTasks         = fmt.Errorf("%w: no valid tasks could be drafted from AI output", ErrInvalidInput)
)

// ErrInvalidCredentials and ErrInvalidSession are authentication failures;
// they carry no kind and map to 401 at the transport layer.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// ErrorKind classifies a service error.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "NotFound"
	KindUnauthorized    ErrorKind = "Unauthorized"
	KindNotAssignable   ErrorKind = "NotAssignable"
	KindNotDeletable    ErrorKind = "NotDeletable"
	KindInvalidStatus   ErrorKind = "InvalidStatus"
	KindInvalidInput    ErrorKind = "InvalidInput"
	KindConflict        ErrorKind = "Conflict"
	KindUnavailable     ErrorKind = "Unavailable"
	KindUnauthenticated ErrorKind = "Unauthenticated"
	KindStorage         ErrorKind = "StorageFailure"
)

var kinds = []struct {
	sentinel error
	kind     ErrorKind
}{
	{ErrNotFound, KindNotFound},
	{ErrUnauthorized, KindUnauthorized},
	{ErrNotAssignable, KindNotAssignable},
	{ErrNotDeletable, KindNotDeletable},
	{ErrInvalidStatus, KindInvalidStatus},
	{ErrInvalidInput, KindInvalidInput},
	{ErrConflict, KindConflict},
	{ErrUnavailable, KindUnavailable},
	{ErrInvalidCredentials, KindUnauthenticated},
	{ErrInvalidSession, KindUnauthenticated},
	{ErrStorage, KindStorage},
}

// KindOf returns the kind of err. Unclassified errors are treated as storage
// failures so they surface as server errors.
func KindOf(err error) ErrorKind {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindStorage
}

// storageError wraps a repository failure.
func storageError(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStorage, err)
}
