package actors

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	logger "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/proto"
)

// Dispatcher directly manages actors and dispatches messages to them
type Dispatcher struct {
	mtx         sync.Mutex
	isReceiving bool
	actors      *ActorMap

	maxActorInactivity   time.Duration
	passivationFrequency time.Duration
	bufferSize           int
	initMaxRetries       uint64

	askTimeout time.Duration

	actorFactory ActorFactory

	stop    chan struct{}
	stopped chan struct{}
}

// NewActorDispatcher returns a new Dispatcher
func NewActorDispatcher(actorFactory ActorFactory, opts ...DispatcherOpt) *Dispatcher {
	// create the dispatcher
	dispatcher := &Dispatcher{
		isReceiving:          false,
		actors:               NewActorMap(100),
		maxActorInactivity:   5 * time.Second,
		passivationFrequency: 5 * time.Second,
		bufferSize:           defaultMailboxSize,
		initMaxRetries:       defaultInitMaxRetries,
		askTimeout:           defaultAskTimeout,
		actorFactory:         actorFactory,
	}
	// set the custom options to override the default values
	for _, opt := range opts {
		opt(dispatcher)
	}
	// return the dispatcher
	return dispatcher
}

// Send a message to a specific actor, spawning it when needed. When the
// actor closed its own mailbox it is evicted and ErrMailboxClosed is
// returned; the next message to the same ID reaches a fresh actor. A message
// refused by a mailbox that was already closed is sent once more to a fresh
// actor.
func (x *Dispatcher) Send(ctx context.Context, actorID string, msg proto.Message) (proto.Message, error) {
	for attempt := 0; ; attempt++ {
		// get the actor ref
		actor, err := x.getActor(ctx, actorID)
		if err != nil {
			return nil, err
		}
		resp, err := actor.Ask(ctx, msg)
		if !errors.Is(err, ErrMailboxClosed) {
			return resp, err
		}
		// the passivation loop may have evicted it already
		if x.actors.DeleteIf(actorID, actor) {
			actor.Stop()
		}
		// the message was handled or dropped by the closed actor
		if !isRefused(err) || attempt > 0 {
			return nil, err
		}
	}
}

// Start the Dispatcher
func (x *Dispatcher) Start() {
	x.mtx.Lock()
	defer x.mtx.Unlock()
	if x.isReceiving {
		return
	}
	x.stop = make(chan struct{})
	x.stopped = make(chan struct{})
	go x.passivateLoop(x.stop, x.stopped)
	x.isReceiving = true
}

// Shutdown stops the passivation loop and every actor
func (x *Dispatcher) Shutdown() {
	x.mtx.Lock()
	if !x.isReceiving {
		x.mtx.Unlock()
		return
	}
	x.isReceiving = false
	close(x.stop)
	stopped := x.stopped
	x.mtx.Unlock()

	<-stopped
	for _, actor := range x.actors.List() {
		x.actors.Delete(actor.ID)
		actor.Stop()
	}
	logger.Info().Msg("(dispatcher) shut down")
}

// ActorCount returns the number of live actors
func (x *Dispatcher) ActorCount() int {
	return x.actors.Len()
}

func (x *Dispatcher) receiving() bool {
	x.mtx.Lock()
	defer x.mtx.Unlock()
	return x.isReceiving
}

// getActor gets or creates an actor in a thread-safe manner. Actors are only
// created while the dispatcher is receiving so Shutdown sees all of them.
func (x *Dispatcher) getActor(ctx context.Context, actorID string) (*ActorRef, error) {
	x.mtx.Lock()
	defer x.mtx.Unlock()
	if !x.isReceiving {
		return nil, ErrNotReady
	}
	factory := func() *ActorRef {
		return Spawn(ctx, actorID, x.actorFactory,
			WithMailboxSize(x.bufferSize),
			WithSendReplyTimeout(x.askTimeout),
			WithInitMaxRetries(x.initMaxRetries),
		)
	}
	return x.actors.GetOrCreate(actorID, factory), nil
}

// AwaitTermination blocks until the dispatcher is ready to shut down
func (x *Dispatcher) AwaitTermination() {
	awaitFrequency := time.Millisecond * 100
	for {
		if !x.receiving() {
			return
		}
		time.Sleep(awaitFrequency)
	}
}

// passivateLoop runs in a goroutine and stops inactive actors
func (x *Dispatcher) passivateLoop(stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(x.passivationFrequency)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// loop over actors
			for _, actor := range x.actors.List() {
				idleTime := actor.IdleTime()
				if idleTime < x.maxActorInactivity {
					continue
				}
				logger.Debug().
					Str("actor", actor.ID).
					Dur("idle", idleTime.Round(time.Millisecond)).
					Msg("(dispatcher) actor idle")
				// remove actor from map before stopping it so senders respawn it
				if x.actors.DeleteIf(actor.ID, actor) {
					actor.Stop()
					logger.Info().Str("actor", actor.ID).Msg("(dispatcher) actor passivated")
				}
			}
		}
	}
}

// ActorMap is a mutex guarded map of actors keyed by ID
type ActorMap struct {
	actors map[string]*ActorRef
	mtx    sync.Mutex
}

// NewActorMap returns an empty ActorMap
func NewActorMap(initialCapacity int) *ActorMap {
	return &ActorMap{
		actors: make(map[string]*ActorRef, initialCapacity),
		mtx:    sync.Mutex{},
	}
}

func (x *ActorMap) Get(id string) (value *ActorRef, exists bool) {
	x.mtx.Lock()
	defer x.mtx.Unlock()
	value, exists = x.actors[id]
	return value, exists
}

func (x *ActorMap) GetOrCreate(id string, factory func() *ActorRef) (value *ActorRef) {
	x.mtx.Lock()
	defer x.mtx.Unlock()
	actor, exists := x.actors[id]
	if !exists {
		actor = factory()
		x.actors[actor.ID] = actor
	}
	return actor
}

func (x *ActorMap) Set(value *ActorRef) {
	x.mtx.Lock()
	defer x.mtx.Unlock()
	x.actors[value.ID] = value
}

func (x *ActorMap) Delete(id string) {
	x.mtx.Lock()
	defer x.mtx.Unlock()
	delete(x.actors, id)
}

// DeleteIf removes id only while it still maps to actor
func (x *ActorMap) DeleteIf(id string, actor *ActorRef) bool {
	x.mtx.Lock()
	defer x.mtx.Unlock()
	if current, exists := x.actors[id]; exists && current == actor {
		delete(x.actors, id)
		return true
	}
	return false
}

func (x *ActorMap) Len() int {
	x.mtx.Lock()
	defer x.mtx.Unlock()
	return len(x.actors)
}

func (x *ActorMap) List() []*ActorRef {
	x.mtx.Lock()
	defer x.mtx.Unlock()
	out := make([]*ActorRef, 0, len(x.actors))
	for _, actor := range x.actors {
		out = append(out, actor)
	}
	return out
}
