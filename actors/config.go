package actors

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// environment variables read by LoadConfig
const (
	EnvMailboxSize          = "ACTORS_MAILBOX_SIZE"
	EnvAskTimeout           = "ACTORS_ASK_TIMEOUT"
	EnvInitMaxRetries       = "ACTORS_INIT_MAX_RETRIES"
	EnvPassivateAfter       = "ACTORS_PASSIVATE_AFTER"
	EnvPassivationFrequency = "ACTORS_PASSIVATION_FREQUENCY"
	EnvLogLevel             = "ACTORS_LOG_LEVEL"
)

// Config gathers the runtime settings that can come from the environment
type Config struct {
	MailboxSize          int
	AskTimeout           time.Duration
	InitMaxRetries       uint64
	PassivateAfter       time.Duration
	PassivationFrequency time.Duration
	LogLevel             zerolog.Level
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		MailboxSize:          defaultMailboxSize,
		AskTimeout:           defaultAskTimeout,
		InitMaxRetries:       defaultInitMaxRetries,
		PassivateAfter:       5 * time.Second,
		PassivationFrequency: 5 * time.Second,
		LogLevel:             zerolog.InfoLevel,
	}
}

// LoadConfig reads the given .env files, later files winning, and then
// the process environment, which wins over every file. Unset keys keep
// their default value.
func LoadConfig(files ...string) (Config, error) {
	values := map[string]string{}
	for _, file := range files {
		fileValues, err := godotenv.Read(file)
		if err != nil {
			return Config{}, errors.Wrapf(err, "reading %s", file)
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}

	cfg := DefaultConfig()
	if v, ok := lookup(EnvMailboxSize); ok {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return Config{}, errors.Errorf("%s must be a positive integer, got %q", EnvMailboxSize, v)
		}
		cfg.MailboxSize = size
	}
	if v, ok := lookup(EnvInitMaxRetries); ok {
		retries, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, errors.Wrapf(err, "parsing %s", EnvInitMaxRetries)
		}
		cfg.InitMaxRetries = retries
	}
	durations := []struct {
		key    string
		target *time.Duration
	}{
		{EnvAskTimeout, &cfg.AskTimeout},
		{EnvPassivateAfter, &cfg.PassivateAfter},
		{EnvPassivationFrequency, &cfg.PassivationFrequency},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "parsing %s", d.key)
		}
		if parsed <= 0 {
			return Config{}, errors.Errorf("%s must be positive, got %s", d.key, v)
		}
		*d.target = parsed
	}
	if v, ok := lookup(EnvLogLevel); ok {
		level, err := zerolog.ParseLevel(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "parsing %s", EnvLogLevel)
		}
		cfg.LogLevel = level
	}
	return cfg, nil
}

// SpawnOpts converts the config into options for Spawn
func (c Config) SpawnOpts() []SpawnOpt {
	return []SpawnOpt{
		WithMailboxSize(c.MailboxSize),
		WithSendReplyTimeout(c.AskTimeout),
		WithInitMaxRetries(c.InitMaxRetries),
	}
}

// DispatcherOpts converts the config into options for NewActorDispatcher
func (c Config) DispatcherOpts() []DispatcherOpt {
	return []DispatcherOpt{
		WithDispatcherBufferSize(c.MailboxSize),
		WithAskTimeout(c.AskTimeout),
		WithInitRetries(c.InitMaxRetries),
		WithPassivation(c.PassivateAfter),
		WithPassivationFrequency(c.PassivationFrequency),
	}
}
