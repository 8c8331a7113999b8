package expect

import (
	"context"

	"github.com/pkg/errors"
	"github.com/super-flat/actorexpect/actors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/protobuf/proto"
)

const tracerName = "github.com/super-flat/actorexpect/expect"

// standIn adapts a Behavior to the actors runtime
type standIn[I, O proto.Message] struct {
	id       string
	behavior Behavior[I, O]
}

var _ actors.Actor = (*standIn[proto.Message, proto.Message])(nil)

func newStandIn[I, O proto.Message](id string, behavior Behavior[I, O]) *standIn[I, O] {
	return &standIn[I, O]{id: id, behavior: behavior}
}

// Init implements actors.Actor
func (s *standIn[I, O]) Init(context.Context) error {
	return nil
}

// Receive implements actors.Actor. A command that is not an I panics: a
// stand-in handles a single command type and anything else is a broken test.
func (s *standIn[I, O]) Receive(ctx context.Context, command proto.Message, replyTo chan<- proto.Message) error {
	_, span := otel.Tracer(tracerName).Start(ctx, "StandIn.Receive")
	defer span.End()

	msg, ok := command.(I)
	if !ok {
		var want I
		panic(errors.Errorf("expect: stand-in %s cannot handle %T, it expects %T", s.id, command, want))
	}
	out, respond := s.behavior.Handle(msg)
	span.SetAttributes(attribute.Bool("expect.responded", respond))
	if !respond {
		return errors.Wrapf(actors.ErrCloseMailbox, "stand-in %s does not respond to %s", s.id, command.ProtoReflect().Descriptor().FullName())
	}
	// every sender gets its own copy
	replyTo <- proto.Clone(out)
	return nil
}
