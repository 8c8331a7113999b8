package actors

import "time"

// DispatcherOpt helps defines custom options
type DispatcherOpt func(dispatcher *Dispatcher)

// WithPassivationFrequency set the passivation frequency in seconds
func WithPassivationFrequency(passivationFrequency time.Duration) DispatcherOpt {
	return func(dispatcher *Dispatcher) {
		dispatcher.passivationFrequency = passivationFrequency
	}
}

// WithPassivation set how long in seconds an actor should be idle
func WithPassivation(passivateAfterSec time.Duration) DispatcherOpt {
	return func(dispatcher *Dispatcher) {
		dispatcher.maxActorInactivity = passivateAfterSec
	}
}

// WithDispatcherBufferSize sets the mailbox size of the actors the dispatcher spawns
func WithDispatcherBufferSize(bufferSize int) DispatcherOpt {
	return func(dispatcher *Dispatcher) {
		dispatcher.bufferSize = bufferSize
	}
}

// WithAskTimeout set how long in seconds an actor should reply a command
// in an Ask pattern
func WithAskTimeout(askTimeout time.Duration) DispatcherOpt {
	return func(dispatcher *Dispatcher) {
		dispatcher.askTimeout = askTimeout
	}
}

// WithInitRetries sets how many times the dispatcher's actors retry Init
func WithInitRetries(maxRetries uint64) DispatcherOpt {
	return func(dispatcher *Dispatcher) {
		dispatcher.initMaxRetries = maxRetries
	}
}

// spawnConfig holds the settings of a single ActorRef
type spawnConfig struct {
	mailboxSize    int
	askTimeout     time.Duration
	initMaxRetries uint64
}

func defaultSpawnConfig() *spawnConfig {
	return &spawnConfig{
		mailboxSize:    defaultMailboxSize,
		askTimeout:     defaultAskTimeout,
		initMaxRetries: defaultInitMaxRetries,
	}
}

// SpawnOpt customizes an actor created with Spawn
type SpawnOpt func(cfg *spawnConfig)

// WithMailboxSize sets how many messages can wait in the mailbox
func WithMailboxSize(size int) SpawnOpt {
	return func(cfg *spawnConfig) {
		if size > 0 {
			cfg.mailboxSize = size
		}
	}
}

// WithSendReplyTimeout sets how long Ask waits for a reply
func WithSendReplyTimeout(timeout time.Duration) SpawnOpt {
	return func(cfg *spawnConfig) {
		cfg.askTimeout = timeout
	}
}

// WithInitMaxRetries sets how many times a failing Init is retried.
// Zero means Init runs exactly once.
func WithInitMaxRetries(maxRetries uint64) SpawnOpt {
	return func(cfg *spawnConfig) {
		cfg.initMaxRetries = maxRetries
	}
}
