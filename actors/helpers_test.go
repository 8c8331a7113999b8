package actors

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// testActor replies "pong: <value>" to string commands and reacts to a few
// magic values
type testActor struct {
	initFailures int32
	initCalls    atomic.Int32
	release      chan struct{}
}

func newTestActor() *testActor {
	return &testActor{}
}

func (a *testActor) Init(context.Context) error {
	if a.initCalls.Add(1) <= a.initFailures {
		return errors.New("not yet")
	}
	return nil
}

func (a *testActor) Receive(ctx context.Context, command proto.Message, replyTo chan<- proto.Message) error {
	msg, ok := command.(*wrapperspb.StringValue)
	if !ok {
		return errors.Errorf("unhandled command %T", command)
	}
	switch msg.GetValue() {
	case "close":
		return errors.Wrap(ErrCloseMailbox, "asked to close")
	case "fail":
		return errors.New("boom")
	case "silent":
		return nil
	case "wait":
		<-a.release
		return nil
	case "wait-then-close":
		<-a.release
		return ErrCloseMailbox
	}
	replyTo <- wrapperspb.String("pong: " + msg.GetValue())
	return nil
}

func factoryOf(actor Actor) ActorFactory {
	return func(string) Actor {
		return actor
	}
}

func testActorFactory(string) Actor {
	return newTestActor()
}
