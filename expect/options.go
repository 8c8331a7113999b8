package expect

import "github.com/super-flat/actorexpect/actors"

type config struct {
	id        string
	spawnOpts []actors.SpawnOpt
}

// Option customizes a stand-in
type Option func(cfg *config)

// WithID sets the stand-in's actor ID instead of a generated one
func WithID(id string) Option {
	return func(cfg *config) {
		cfg.id = id
	}
}

// WithSpawnOpts passes options to actors.Spawn
func WithSpawnOpts(opts ...actors.SpawnOpt) Option {
	return func(cfg *config) {
		cfg.spawnOpts = append(cfg.spawnOpts, opts...)
	}
}
