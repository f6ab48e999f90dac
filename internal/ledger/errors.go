package ledger

import (
	"errors"
	"fmt"
)

// Program error codes. They are part of the RPC wire format.
const (
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeInvalidAccount     = "INVALID_ACCOUNT"
	CodeMissingSignature   = "MISSING_SIGNATURE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeAlreadyInitialized = "ALREADY_INITIALIZED"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	CodeInboxFull          = "INBOX_FULL"
	CodeStaleState         = "STALE_STATE"
	CodeAlreadyProcessed   = "ALREADY_PROCESSED"
	CodeInvalidVAA         = "INVALID_VAA"
)

// ProgramError is a failure raised while executing an instruction. The
// whole transaction is rolled back.
type ProgramError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("program error %s: %s", e.Code, e.Message)
}

// Errorf builds a ProgramError.
func Errorf(code, format string, args ...any) *ProgramError {
	return &ProgramError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ProgramCode returns the ProgramError code in err's chain, or "".
func ProgramCode(err error) string {
	var pe *ProgramError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
