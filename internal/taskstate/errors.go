package taskstate

// Task error codes carried by tasks in the error state.
const (
	ErrNone = iota
	ErrUnknown
	ErrNetwork
	ErrAccessDenied
	ErrServer
	ErrQuotaFull
	ErrRepoDeleted
	ErrRepoCorrupted
	ErrIncorrectPassword
	ErrWorktreeInvalid
	ErrDiskFull
	ErrInterrupted
	ErrCanceled
	ErrHandshake
)

var errorStrings = map[int]string{
	ErrNone:              "",
	ErrUnknown:           "Unknown error",
	ErrNetwork:           "Network error",
	ErrAccessDenied:      "Permission denied on server",
	ErrServer:            "Internal server error",
	ErrQuotaFull:         "Storage quota exceeded",
	ErrRepoDeleted:       "Library deleted on server",
	ErrRepoCorrupted:     "Library is damaged on server",
	ErrIncorrectPassword: "Incorrect password",
	ErrWorktreeInvalid:   "Local folder is missing or invalid",
	ErrDiskFull:          "Local disk is full",
	ErrInterrupted:       "Interrupted by daemon restart",
	ErrCanceled:          "Canceled",
	ErrHandshake:         "Failed to connect to server",
}

// ErrorString resolves a task error code to its message. Codes outside
// the table resolve to the ErrUnknown message.
func ErrorString(code int) string {
	if s, ok := errorStrings[code]; ok {
		return s
	}
	return errorStrings[ErrUnknown]
}
