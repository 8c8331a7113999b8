package actors

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	logger "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/proto"
)

const (
	defaultMailboxSize    = 10
	defaultAskTimeout     = 5 * time.Second
	defaultInitMaxRetries = 10

	// init backoff starts small and grows 10% per attempt, capped at a second
	initBackoffBase       = 5 * time.Millisecond
	initBackoffMax        = time.Second
	initBackoffMultiplier = 1.1
)

// commandWrapper wraps the actual command sent to the actor and
// the context
type commandWrapper struct {
	CommandCtx context.Context
	Command    proto.Message
	ReplyChan  chan proto.Message
}

// ActorRef has a mailbox and can process messages one at a time for the underlying actor
type ActorRef struct {
	ID string

	mailbox     chan *commandWrapper
	msgCount    atomic.Int64
	lastUpdated atomic.Int64
	// closing is closed once the mailbox stops accepting messages
	closing   chan struct{}
	closeOnce sync.Once
	// done is closed when the processing loop has exited
	done chan struct{}
	// senders hold the read lock while enqueuing; the loop takes the write
	// lock before draining so no message is left behind
	mtx   sync.RWMutex
	actor Actor

	askTimeout     time.Duration
	initMaxRetries uint64
}

// IdleTime returns how long the actor has been idle as a time.Duration
func (ref *ActorRef) IdleTime() time.Duration {
	return time.Since(time.Unix(0, ref.lastUpdated.Load()))
}

// ReceivedCount returns how many messages the actor has handled
func (ref *ActorRef) ReceivedCount() int64 {
	return ref.msgCount.Load()
}

// IsAccepting reports whether the mailbox still accepts messages
func (ref *ActorRef) IsAccepting() bool {
	select {
	case <-ref.closing:
		return false
	default:
		return true
	}
}

// Send sends a message to the actors' mailbox to be processed and
// supplies a reply channel for responses to the sender. The reply channel
// is closed once the actor has handled the message.
func (ref *ActorRef) Send(ctx context.Context, msg proto.Message) (<-chan proto.Message, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}
	// get the observability span
	spanCtx, span := getSpanContext(ctx, "ActorRef.Send")
	defer span.End()
	// acquire a read lock, the processing loop may be draining
	ref.mtx.RLock()
	defer ref.mtx.RUnlock()
	if !ref.IsAccepting() {
		return nil, &refusedError{actorID: ref.ID}
	}
	// set update time for activity
	ref.touch()
	// create the reply chan
	replyTo := make(chan proto.Message, 1)
	wrapped := &commandWrapper{
		CommandCtx: spanCtx,
		Command:    msg,
		ReplyChan:  replyTo,
	}
	select {
	case ref.mailbox <- wrapped:
		return replyTo, nil
	case <-ref.closing:
		return nil, &refusedError{actorID: ref.ID}
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "sending to actor %s", ref.ID)
	}
}

// Ask sends a message and waits for the reply
func (ref *ActorRef) Ask(ctx context.Context, msg proto.Message) (proto.Message, error) {
	replyChan, err := ref.Send(ctx, msg)
	if err != nil {
		return nil, err
	}
	timer := time.NewTimer(ref.askTimeout)
	defer timer.Stop()
	// try to get response up to a timeout
	select {
	case resp, ok := <-replyChan:
		if ok {
			return resp, nil
		}
		if !ref.IsAccepting() {
			return nil, errors.Wrapf(ErrMailboxClosed, "actor %s", ref.ID)
		}
		return nil, errors.Wrapf(ErrNoReply, "actor %s", ref.ID)
	case <-timer.C:
		return nil, errors.Wrapf(ErrAskTimeout, "actor %s", ref.ID)
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "waiting for actor %s", ref.ID)
	}
}

// Tell sends a message without waiting for a reply
func (ref *ActorRef) Tell(ctx context.Context, msg proto.Message) error {
	_, err := ref.Send(ctx, msg)
	return err
}

// Stop the actor. Messages already in the mailbox are processed first.
// Stop must not be called from the actor's own Receive; return
// ErrCloseMailbox instead.
func (ref *ActorRef) Stop() {
	ref.closeMailbox()
	<-ref.done
}

// Done is closed once the actor's processing loop has exited
func (ref *ActorRef) Done() <-chan struct{} {
	return ref.done
}

func (ref *ActorRef) touch() {
	ref.lastUpdated.Store(time.Now().UnixNano())
}

func (ref *ActorRef) closeMailbox() {
	ref.closeOnce.Do(func() {
		close(ref.closing)
	})
}

// run the actor loop
func (ref *ActorRef) run(bootCtx context.Context) {
	defer close(ref.done)
	// run the actor initialization
	if err := ref.selfInit(bootCtx); err != nil {
		ref.closeMailbox()
		ref.drain(false)
		return
	}
	// run the process loop
	ref.process()
	logger.Debug().Str("actor", ref.ID).Msg("actor shut down")
}

// process incoming messages until the mailbox closes
func (ref *ActorRef) process() {
	for {
		select {
		case <-ref.closing:
			ref.drain(true)
			return
		case received := <-ref.mailbox:
			if !ref.handle(received) {
				ref.drain(false)
				return
			}
		}
	}
}

// handle lets the actor process one command and reports whether the
// mailbox is still open afterwards
func (ref *ActorRef) handle(received *commandWrapper) bool {
	// closing the reply channel after the mailbox lets Ask tell a closed
	// mailbox apart from a missing reply
	defer close(received.ReplyChan)
	err := ref.actor.Receive(received.CommandCtx, received.Command, received.ReplyChan)
	ref.msgCount.Add(1)
	if err == nil {
		return true
	}
	if errors.Is(err, ErrCloseMailbox) {
		logger.Debug().
			Str("actor", ref.ID).
			Str("messageType", messageType(received.Command)).
			Msg("actor closed its mailbox")
		ref.closeMailbox()
		return false
	}
	logger.Error().
		Err(err).
		Str("actor", ref.ID).
		Str("messageType", messageType(received.Command)).
		Msg("error handling message")
	return true
}

// drain empties the mailbox once it is closed. Graceful drains hand the
// remaining messages to the actor, the others fail them.
func (ref *ActorRef) drain(graceful bool) {
	// wait for in-flight senders to give up, none can enqueue afterwards
	ref.mtx.Lock()
	ref.mtx.Unlock() //nolint:staticcheck
	for {
		select {
		case received := <-ref.mailbox:
			if graceful {
				graceful = ref.handle(received)
				continue
			}
			close(received.ReplyChan)
		default:
			return
		}
	}
}

// selfInit runs the actor initialization.
// An exponential backoff strategy is applied for some number of tries in case of error
// during the actor initialization. When the tries limit is reached then an error message
// is logged and the actor is not started
func (ref *ActorRef) selfInit(ctx context.Context) error {
	// get the observability span
	spanCtx, span := getSpanContext(ctx, "ActorRef.Init")
	defer span.End()
	// create the exponential backoff object
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = initBackoffBase
	expo.MaxInterval = initBackoffMax
	expo.Multiplier = initBackoffMultiplier
	expoBackoff := backoff.WithContext(backoff.WithMaxRetries(expo, ref.initMaxRetries), spanCtx)
	// start the actor initialization process
	err := backoff.Retry(func() error {
		return ref.actor.Init(spanCtx)
	}, expoBackoff)
	if err != nil {
		logger.Error().
			Err(err).
			Str("actor", ref.ID).
			Uint64("maxRetries", ref.initMaxRetries).
			Msg("failed to initialize actor")
		return errors.Wrapf(err, "initializing actor %s", ref.ID)
	}
	logger.Debug().Str("actor", ref.ID).Msg("actor has been successfully initialized")
	return nil
}

func messageType(msg proto.Message) string {
	return string(msg.ProtoReflect().Descriptor().FullName())
}
