package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID  = "user_id"
	ContextKeyActor   = "actor"
	ContextKeyTask    = "task"
	ContextKeyToken   = "token"
	SessionCookieName = "task_session"
)

// Validation limits
const (
	MinPasswordLength = 6
	MinUsernameLength = 3
	MaxUsernameLength = 50
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Sessions
const (
	DefaultSessionTTL           = 7 * 24 * time.Hour
	DefaultSessionSweepInterval = 10 * time.Minute
	TokenIssuer                 = "task-hierarchy-api"
)

// MaxAIDraftTasks caps how many draft tasks a single AI request may return.
const MaxAIDraftTasks = 20
