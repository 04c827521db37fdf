package workflow

import "errors"

// Failure taxonomy for dispatched complaint actions. Handlers map these to
// HTTP statuses with errors.Is; nothing downgrades one kind into another.
var (
	// ErrInvalidTransition: the requested (from, to) pair is not in the
	// transition table, or the authoritative status changed underneath the
	// caller. Recoverable; the client should refresh and reconcile.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrForbidden: the actor's role never has this capability, regardless
	// of complaint state.
	ErrForbidden = errors.New("role does not permit this action")

	// ErrInvalidState: the role is allowed the action in general but the
	// complaint is not currently in a state that permits it.
	ErrInvalidState = errors.New("complaint state does not permit this action")

	// ErrMissingJustification: the matched rule mandates remarks and none
	// were given. Recoverable; re-prompt the actor.
	ErrMissingJustification = errors.New("remarks are required for this action")

	// Evidence constraint violations. Recoverable; the caller adjusts input.
	ErrTooManyImages        = errors.New("image limit exceeded for this stage")
	ErrUnsupportedMediaType = errors.New("only image uploads are accepted")

	// ErrUpstreamStorage: transient object-store failure. Retryable.
	ErrUpstreamStorage = errors.New("evidence storage unavailable")
)

// Retryable reports whether the caller may meaningfully retry the same
// request without changing it.
func Retryable(err error) bool {
	return errors.Is(err, ErrUpstreamStorage)
}
