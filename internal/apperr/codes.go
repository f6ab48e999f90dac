package apperr

// Code classifies an AppError for callers that branch on failure kind.
type Code string

const (
	CodeUnknown              Code = "UNKNOWN"
	CodeInvalidInput         Code = "INVALID_INPUT"
	CodeNotFound             Code = "NOT_FOUND"
	CodeAlreadyExists        Code = "ALREADY_EXISTS"
	CodeAuthenticationFailed Code = "AUTHENTICATION_FAILED"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeTransient            Code = "TRANSIENT"
	CodeTimeout              Code = "TIMEOUT"
	CodeUnavailable          Code = "UNAVAILABLE"
	CodeRelayRejected        Code = "RELAY_REJECTED"
	CodeInboxFull            Code = "INBOX_FULL"
	CodeInternal             Code = "INTERNAL"
)
