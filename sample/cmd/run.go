package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	logger "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/super-flat/actorexpect/actors"
	"github.com/super-flat/actorexpect/expect"
	"github.com/super-flat/actorexpect/sample/actor"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var (
	runSenders  int
	runDuration time.Duration
	runInterval time.Duration
)

func init() {
	runCMD.Flags().IntVar(&runSenders, "senders", 4, "number of concurrent senders")
	runCMD.Flags().DurationVar(&runDuration, "duration", 5*time.Second, "how long to send messages")
	runCMD.Flags().DurationVar(&runInterval, "interval", 10*time.Millisecond, "pause between messages of a sender")
	rootCmd.AddCommand(runCMD)
}

var runCMD = &cobra.Command{
	Use:   "run",
	Short: "Send greetings through a dispatcher and report latency",
	RunE: func(cmd *cobra.Command, args []string) error {
		return Sample(cmd.Context(), config, runSenders, runDuration, runInterval)
	},
}

// Sample greets users through a dispatcher of greeters whose directory is a
// stand-in that only knows user-0
func Sample(ctx context.Context, cfg actors.Config, senders int, lifespan, sleepTime time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	directory := expect.Send(ctx,
		wrapperspb.String("user-0"),
		wrapperspb.String("Ada"),
		wrapperspb.String("someone"),
		expect.WithID("directory"),
		expect.WithSpawnOpts(cfg.SpawnOpts()...),
	)
	defer directory.Stop()

	nd := actors.NewActorDispatcher(actor.NewGreeterFactory(directory.Ref), cfg.DispatcherOpts()...)
	nd.Start()
	defer nd.Shutdown()

	metrics := &counter{
		calls:    0,
		duration: time.Millisecond * 0,
		mtx:      &sync.Mutex{},
	}

	reportCtx, stopReporting := context.WithCancel(ctx)
	defer stopReporting()
	go doReporting(reportCtx, metrics)

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			senderID := fmt.Sprintf("sender-%d", i)
			actorID := fmt.Sprintf("greeter-%d", i)
			sendMessages(ctx, nd, senderID, actorID, sleepTime, metrics, lifespan)
		}(i)
	}
	wg.Wait()

	metrics.Report()
	logger.Info().
		Int("directoryCalls", directory.TotalCalls()).
		Int("knownUserCalls", directory.CallsOfVariant(wrapperspb.String("user-0"))).
		Msg("[Directory] stand-in record")
	return nil
}

func sendMessages(ctx context.Context, nd *actors.Dispatcher, senderID string, actorID string, sleepTime time.Duration, metrics *counter, lifespan time.Duration) {
	loopCount := 0

	outerStart := time.Now()

	for time.Since(outerStart) < lifespan {
		msg := wrapperspb.String(fmt.Sprintf("user-%d", loopCount%3))
		start := time.Now()
		resp, err := nd.Send(ctx, actorID, msg)
		if err != nil {
			logger.Error().Err(err).Str("sender", senderID).Msg("send failed")
			metrics.Fail()
		} else {
			metrics.Add(time.Since(start))
			logger.Debug().Str("sender", senderID).Str("actor", actorID).Interface("reply", resp).Msg("received")
		}
		loopCount += 1
		select {
		case <-ctx.Done():
			return
		case <-time.After(sleepTime):
		}
	}
}

func doReporting(ctx context.Context, metrics *counter) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.Report()
		}
	}
}

type counter struct {
	calls    int64
	failures int64
	duration time.Duration
	mtx      *sync.Mutex
}

func (c *counter) Add(t time.Duration) {
	c.mtx.Lock()
	c.calls += 1
	c.duration = c.duration + t
	c.mtx.Unlock()
}

func (c *counter) Fail() {
	c.mtx.Lock()
	c.failures += 1
	c.mtx.Unlock()
}

func (c *counter) Report() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	var avg time.Duration
	if c.calls > 0 {
		avg = c.duration / time.Duration(c.calls)
	}
	logger.Info().
		Dur("avg", avg).
		Int64("calls", c.calls).
		Int64("failures", c.failures).
		Msg("[Metrics]")
}
