package apperr

var (
	ErrInvalidKeyLength       = InvalidInput("key has the wrong length")
	ErrInvalidAddress         = InvalidInput("invalid ledger address")
	ErrInvalidRecord          = InvalidInput("invalid file transfer record")
	ErrAlreadyRegistered      = New(CodeAlreadyExists, "identity already registered")
	ErrNotFound               = NotFound("not found")
	ErrRecipientNotRegistered = NotFound("recipient not registered")
	ErrInboxNotFound          = NotFound("inbox not initialized")
	ErrAuthenticationFailed   = New(CodeAuthenticationFailed, "authentication failed")
	ErrUnauthorized           = New(CodeUnauthorized, "signer not authorized")
	ErrTimeout                = New(CodeTimeout, "operation timed out")
	ErrStaleState             = New(CodeTransient, "ledger state changed during submission")
	ErrUnavailable            = New(CodeUnavailable, "service unavailable after retries")
	ErrPublishUnavailable     = New(CodeUnavailable, "content store unavailable")
	ErrRelayRejected          = New(CodeRelayRejected, "relay rejected the message")
	ErrInboxFull              = New(CodeInboxFull, "inbox is full")
)
