package actors

import "github.com/pkg/errors"

var (
	// ErrMailboxClosed is returned when a message is sent to, or was pending in,
	// the mailbox of an actor that stopped accepting messages
	ErrMailboxClosed = errors.New("actor mailbox closed")
	// ErrNoReply is returned by Ask when the actor handled the message without replying
	ErrNoReply = errors.New("actor did not reply")
	// ErrAskTimeout is returned by Ask when no reply arrived in time
	ErrAskTimeout = errors.New("command processing timeout")
	// ErrNotReady is returned by a dispatcher that is not receiving
	ErrNotReady = errors.New("not ready to process messages")
	// ErrNilMessage is returned when sending a nil message
	ErrNilMessage = errors.New("message is nil")

	// ErrCloseMailbox is returned from Actor.Receive to close the actor's
	// mailbox on this delivery. The in-flight request, pending messages and
	// every later send fail with ErrMailboxClosed.
	ErrCloseMailbox = errors.New("close mailbox")
)

// refusedError is an ErrMailboxClosed raised before the message reached the
// mailbox, so the message was never delivered
type refusedError struct {
	actorID string
}

func (e *refusedError) Error() string {
	return "actor " + e.actorID + ": " + ErrMailboxClosed.Error()
}

func (e *refusedError) Unwrap() error {
	return ErrMailboxClosed
}

// isRefused reports whether err means the message never entered a mailbox
func isRefused(err error) bool {
	var refused *refusedError
	return errors.As(err, &refused)
}
