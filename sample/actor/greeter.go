package actor

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	logger "github.com/rs/zerolog/log"
	"github.com/super-flat/actorexpect/actors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Stranger is the name used when the directory cannot resolve a user
const Stranger = "stranger"

// Greeter greets users by the display name a directory actor resolves for
// their user ID
type Greeter struct {
	ID        string
	directory *actors.ActorRef
}

// NewGreeter returns a Greeter asking directory for display names
func NewGreeter(ID string, directory *actors.ActorRef) *Greeter {
	return &Greeter{ID: ID, directory: directory}
}

// NewGreeterFactory returns a factory of greeters sharing one directory
func NewGreeterFactory(directory *actors.ActorRef) actors.ActorFactory {
	return func(actorID string) actors.Actor {
		return NewGreeter(actorID, directory)
	}
}

// Init implements actors.Actor
func (x *Greeter) Init(context.Context) error {
	if x.directory == nil {
		return errors.Errorf("greeter %s has no directory", x.ID)
	}
	return nil
}

// Receive implements actors.Actor. The command is the user ID.
func (x *Greeter) Receive(ctx context.Context, command proto.Message, replyToChan chan<- proto.Message) error {
	userID, ok := command.(*wrapperspb.StringValue)
	if !ok {
		return errors.Errorf("greeter %s cannot handle %T", x.ID, command)
	}
	name := Stranger
	resp, err := x.directory.Ask(ctx, userID)
	switch {
	case err != nil:
		logger.Warn().Err(err).Str("actor", x.ID).Str("user", userID.GetValue()).Msg("directory lookup failed")
	default:
		displayName, ok := resp.(*wrapperspb.StringValue)
		if !ok {
			return errors.Errorf("directory replied with %T", resp)
		}
		name = displayName.GetValue()
	}
	replyToChan <- wrapperspb.String(fmt.Sprintf("hello %s", name))
	return nil
}
