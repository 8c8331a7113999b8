package actors

import (
	"context"

	"google.golang.org/protobuf/proto"
)

// Actor knows how to receive and process messages
type Actor interface {
	// Init is called once before the first message is delivered. It is
	// retried with exponential backoff while it returns an error.
	Init(ctx context.Context) error
	// Receive handles a single command. Replies go to replyToChan, which is
	// buffered for one message and closed by the runtime once Receive returns.
	// Returning ErrCloseMailbox (or an error wrapping it) closes the mailbox.
	Receive(ctx context.Context, command proto.Message, replyToChan chan<- proto.Message) error
}

// ActorFactory is a function that returns an actor, to be used as a factory
type ActorFactory func(actorID string) Actor
