package engine

import "fmt"

// ErrorKind classifies engine failures the way the transport layer needs
// to map them onto RPC status codes (spec §7).
type ErrorKind string

const (
	Unauthenticated    ErrorKind = "unauthenticated"
	PermissionDenied   ErrorKind = "permission_denied"
	InvalidArgument    ErrorKind = "invalid_argument"
	NotFound           ErrorKind = "not_found"
	AlreadyExists      ErrorKind = "already_exists"
	FailedPrecondition ErrorKind = "failed_precondition"
	ResourceExhausted  ErrorKind = "resource_exhausted"
	Aborted            ErrorKind = "aborted"
	Internal           ErrorKind = "internal"
)

// EngineError is the single error type returned by every engine
// operation, so callers can switch on Kind rather than parsing strings.
type EngineError struct {
	Kind    ErrorKind
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds an EngineError with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *EngineError {
	return &EngineError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is an *EngineError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	ee, ok := err.(*EngineError)
	return ok && ee.Kind == kind
}

// KindOf returns err's ErrorKind, or Internal if err isn't an *EngineError.
func KindOf(err error) ErrorKind {
	if ee, ok := err.(*EngineError); ok {
		return ee.Kind
	}
	return Internal
}

var (
	ErrTableNotFound     = NewError(NotFound, "table not found")
	ErrPlayerNotSeated   = NewError(FailedPrecondition, "player is not seated at this table")
	ErrTableFull         = NewError(ResourceExhausted, "table has no empty seats")
	ErrAlreadySeated     = NewError(AlreadyExists, "player is already seated at this table")
	ErrNotYourTurn       = NewError(FailedPrecondition, "it is not this player's turn to act")
	ErrHandInProgress    = NewError(FailedPrecondition, "a hand is already in progress")
	ErrNoHandInProgress  = NewError(FailedPrecondition, "no hand is in progress")
	ErrNotEnoughPlayers  = NewError(FailedPrecondition, "at least two seated players are required to start a hand")
	ErrDebtCeilingExceeded = NewError(ResourceExhausted, "requested buy-in would exceed the player's debt ceiling")
)
