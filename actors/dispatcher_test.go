package actors

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestDispatcherNotStarted(t *testing.T) {
	dispatcher := NewActorDispatcher(testActorFactory)

	_, err := dispatcher.Send(context.Background(), "actor-1", wrapperspb.String("hi"))
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestDispatcherSend(t *testing.T) {
	ctx := context.Background()
	dispatcher := NewActorDispatcher(testActorFactory, WithAskTimeout(time.Second))
	dispatcher.Start()
	defer dispatcher.Shutdown()

	for _, actorID := range []string{"actor-1", "actor-2", "actor-1"} {
		resp, err := dispatcher.Send(ctx, actorID, wrapperspb.String(actorID))
		require.NoError(t, err)
		assert.True(t, proto.Equal(wrapperspb.String("pong: "+actorID), resp))
	}
	assert.Equal(t, 2, dispatcher.ActorCount())
}

func TestDispatcherEvictsClosedActor(t *testing.T) {
	ctx := context.Background()
	dispatcher := NewActorDispatcher(testActorFactory)
	dispatcher.Start()
	defer dispatcher.Shutdown()

	_, err := dispatcher.Send(ctx, "actor-1", wrapperspb.String("close"))
	require.ErrorIs(t, err, ErrMailboxClosed)
	assert.Equal(t, 0, dispatcher.ActorCount())

	// a fresh actor takes over the ID
	resp, err := dispatcher.Send(ctx, "actor-1", wrapperspb.String("hi"))
	require.NoError(t, err)
	assert.True(t, proto.Equal(wrapperspb.String("pong: hi"), resp))
	assert.Equal(t, 1, dispatcher.ActorCount())
}

func TestDispatcherPassivation(t *testing.T) {
	ctx := context.Background()
	dispatcher := NewActorDispatcher(testActorFactory,
		WithPassivation(20*time.Millisecond),
		WithPassivationFrequency(10*time.Millisecond),
	)
	dispatcher.Start()
	defer dispatcher.Shutdown()

	_, err := dispatcher.Send(ctx, "actor-1", wrapperspb.String("hi"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return dispatcher.ActorCount() == 0
	}, time.Second, 10*time.Millisecond)

	// passivated actors are spawned again on demand
	_, err = dispatcher.Send(ctx, "actor-1", wrapperspb.String("hi"))
	assert.NoError(t, err)
}

func TestDispatcherShutdown(t *testing.T) {
	ctx := context.Background()
	dispatcher := NewActorDispatcher(testActorFactory)
	dispatcher.Start()

	_, err := dispatcher.Send(ctx, "actor-1", wrapperspb.String("hi"))
	require.NoError(t, err)

	dispatcher.Shutdown()
	dispatcher.AwaitTermination()
	assert.Equal(t, 0, dispatcher.ActorCount())

	_, err = dispatcher.Send(ctx, "actor-1", wrapperspb.String("hi"))
	assert.ErrorIs(t, err, ErrNotReady)
	// a second shutdown is a no-op
	dispatcher.Shutdown()
}

func TestDispatcherDoesNotRedeliverAfterEviction(t *testing.T) {
	ctx := context.Background()
	actor := &testActor{release: make(chan struct{})}
	var spawned atomic.Int32
	dispatcher := NewActorDispatcher(func(string) Actor {
		spawned.Add(1)
		return actor
	})
	dispatcher.Start()
	defer dispatcher.Shutdown()

	errc := make(chan error, 1)
	go func() {
		_, err := dispatcher.Send(ctx, "actor-1", wrapperspb.String("wait-then-close"))
		errc <- err
	}()
	require.Eventually(t, func() bool {
		return dispatcher.ActorCount() == 1
	}, time.Second, time.Millisecond)

	// evict the actor while it handles the message, as passivation would
	ref, ok := dispatcher.actors.Get("actor-1")
	require.True(t, ok)
	require.True(t, dispatcher.actors.DeleteIf("actor-1", ref))
	close(actor.release)

	assert.ErrorIs(t, <-errc, ErrMailboxClosed)
	ref.Stop()
	assert.EqualValues(t, 1, spawned.Load())
	assert.Equal(t, 0, dispatcher.ActorCount())
}

func TestDispatcherRetriesRefusedMessage(t *testing.T) {
	ctx := context.Background()
	dispatcher := NewActorDispatcher(testActorFactory)
	dispatcher.Start()
	defer dispatcher.Shutdown()

	// a closed actor still registered under the ID
	closed := Spawn(ctx, "actor-1", testActorFactory)
	closed.Stop()
	dispatcher.actors.Set(closed)

	resp, err := dispatcher.Send(ctx, "actor-1", wrapperspb.String("hi"))
	require.NoError(t, err)
	assert.True(t, proto.Equal(wrapperspb.String("pong: hi"), resp))
	assert.Equal(t, 1, dispatcher.ActorCount())
}

func TestDispatcherRefusedTwiceGivesUp(t *testing.T) {
	ctx := context.Background()
	dispatcher := NewActorDispatcher(factoryOf(&testActor{initFailures: 100}), WithInitRetries(0))
	dispatcher.Start()
	defer dispatcher.Shutdown()

	_, err := dispatcher.Send(ctx, "actor-1", wrapperspb.String("hi"))
	assert.ErrorIs(t, err, ErrMailboxClosed)
}

func TestDispatcherShutdownWhileSending(t *testing.T) {
	ctx := context.Background()
	dispatcher := NewActorDispatcher(testActorFactory)
	dispatcher.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for n := 0; ; n++ {
				actorID := fmt.Sprintf("actor-%d-%d", i, n%16)
				_, err := dispatcher.Send(ctx, actorID, wrapperspb.String("hi"))
				if errors.Is(err, ErrNotReady) {
					return
				}
			}
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	dispatcher.Shutdown()
	wg.Wait()

	// nothing was spawned behind the shutdown
	assert.Equal(t, 0, dispatcher.ActorCount())
	_, err := dispatcher.getActor(ctx, "actor-1")
	assert.ErrorIs(t, err, ErrNotReady)
}
