package expect

import (
	"context"

	"github.com/google/uuid"
	logger "github.com/rs/zerolog/log"
	"github.com/super-flat/actorexpect/actors"
	"google.golang.org/protobuf/proto"
)

// Expect is the handle a test keeps on a stand-in actor: its address and the
// record of the commands it received.
type Expect[I, O proto.Message] struct {
	// Ref is the stand-in's address
	Ref *actors.ActorRef

	id       string
	behavior Behavior[I, O]
	calls    *CallLog[I]
}

// Send builds a stand-in answering incoming with outgoing. Any other command
// is answered with fallback, or closes the stand-in's mailbox when fallback is
// nil.
func Send[I, O proto.Message](ctx context.Context, incoming I, outgoing O, fallback O, opts ...Option) *Expect[I, O] {
	calls := NewProtoCallLog[I]()
	expectation := Expectation[I, O]{
		Incoming: protoClone(incoming),
		Outgoing: protoClone(outgoing),
	}
	if isPresent(fallback) {
		fallback = protoClone(fallback)
		expectation.Fallback = &fallback
	}
	behavior := NewMatchAndRespond(expectation, protoEqual[I], calls)
	return start[I, O](ctx, behavior, calls, opts)
}

// Placeholder builds a stand-in that never responds: the first delivery
// closes its mailbox. Deliveries are still recorded so tests can assert the
// placeholder was left alone.
func Placeholder(ctx context.Context, opts ...Option) *Expect[proto.Message, proto.Message] {
	calls := NewProtoCallLog[proto.Message]()
	behavior := NewAlwaysTerminate[proto.Message, proto.Message](calls)
	return start[proto.Message, proto.Message](ctx, behavior, calls, opts)
}

func start[I, O proto.Message](ctx context.Context, behavior Behavior[I, O], calls *CallLog[I], opts []Option) *Expect[I, O] {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.id == "" {
		cfg.id = "expect-" + uuid.NewString()
	}
	e := &Expect[I, O]{
		id:       cfg.id,
		behavior: behavior,
		calls:    calls,
	}
	e.Ref = actors.Spawn(ctx, cfg.id, e.Factory(), cfg.spawnOpts...)
	logger.Debug().Str("actor", cfg.id).Msg("stand-in started")
	return e
}

// TotalCalls returns how many commands were delivered, matching or not
func (e *Expect[I, O]) TotalCalls() int {
	return e.calls.Count()
}

// CallsOfVariant returns how many delivered commands equal probe
func (e *Expect[I, O]) CallsOfVariant(probe I) int {
	return e.calls.CountMatching(probe)
}

// Calls returns copies of the delivered commands in arrival order
func (e *Expect[I, O]) Calls() []I {
	return e.calls.Calls()
}

// Factory returns an actors.ActorFactory producing stand-ins that share this
// handle's behavior and call record, e.g. for an actors.Dispatcher.
func (e *Expect[I, O]) Factory() actors.ActorFactory {
	return func(actorID string) actors.Actor {
		return newStandIn[I, O](actorID, e.behavior)
	}
}

// isPresent reports whether msg is a non-nil message
func isPresent[M proto.Message](msg M) bool {
	m := proto.Message(msg)
	return m != nil && m.ProtoReflect().IsValid()
}

// Stop stops the stand-in's actor
func (e *Expect[I, O]) Stop() {
	e.Ref.Stop()
}
