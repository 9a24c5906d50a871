package constants

import "time"

// Session and context keys
const (
	SessionCookieName   = "dashboard_session"
	ContextKeyUserID    = "user_id"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
	HeaderRequestID     = "X-Request-ID"
)

// Authentication
const (
	MinPasswordLength = 6
	AvatarURLTemplate = "https://i.pravatar.cc/150?u=%s"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Progress bounds and the three-point task progress table
const (
	ProgressMin        = 0
	ProgressMax        = 100
	ProgressTodo       = 0
	ProgressInProgress = 50
	ProgressDone       = 100
)

// RecentActivityWindow bounds the "recent activity" count in member rollups.
const RecentActivityWindow = 7 * 24 * time.Hour

// DateLayout is the calendar-date format accepted for deadlines.
const DateLayout = "2006-01-02"
