package cmd

import (
	"os"

	"github.com/rs/zerolog"
	logger "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/super-flat/actorexpect/actors"
)

var (
	envFiles []string
	config   actors.Config
)

var rootCmd = &cobra.Command{
	Use:   "sample",
	Short: "Greeter actors backed by a stand-in directory",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := actors.LoadConfig(envFiles...)
		if err != nil {
			return err
		}
		config = cfg
		logger.Logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(cfg.LogLevel)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, ".env files to read settings from")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
