// Package cli wires the ledgerd commands.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/settleng/goledgerd/internal/config"
)

// Version is stamped by the build.
var Version = "dev"

var cfgFile string

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ledgerd",
		Short: "Deterministic settlement ledger daemon",
		Long: `ledgerd runs the settlement ledger: a deterministic engine applying
signed transactions over escrow, auctions, multisig wallets, payment
channels, timelocks and crowdfund campaigns.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (TOML)")
	root.AddCommand(newVersionCommand())
	root.AddCommand(newServerCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ledgerd version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ledgerd", Version)
		},
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out = os.Stderr
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if cfg.Log.Pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out})
	}
	return logger
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
