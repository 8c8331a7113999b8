package actors

import "context"

// Spawn is a utility function that help create a new actor and return the ActorRef,
// so you can send it messages
func Spawn(ctx context.Context, ID string, actorFactory ActorFactory, opts ...SpawnOpt) *ActorRef {
	// get the observability span
	spanCtx, span := getSpanContext(ctx, "Actor.Spawn")
	defer span.End()
	// apply the custom options over the defaults
	cfg := defaultSpawnConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	// create the inner actor
	actor := actorFactory(ID)
	// create the actor actorRef
	actorRef := &ActorRef{
		ID:             ID,
		mailbox:        make(chan *commandWrapper, cfg.mailboxSize),
		closing:        make(chan struct{}),
		done:           make(chan struct{}),
		actor:          actor,
		askTimeout:     cfg.askTimeout,
		initMaxRetries: cfg.initMaxRetries,
	}
	actorRef.touch()
	// async initialize the actor and start processing messages
	go actorRef.run(spanCtx)
	// return the actorRef
	return actorRef
}
