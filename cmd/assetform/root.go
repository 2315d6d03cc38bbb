package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-assetform/pkg/config"
	"github.com/goliatone/go-assetform/pkg/orchestrator"
)

// cli carries state shared by subcommands after the root pre-run.
type cli struct {
	configPath string
	ledgerURL  string
	publicKey  string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "assetform",
		Short:         "Track new assets on the ledger",
		Long:          "Serve the Track New Asset form over HTTP or fill it in from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "path to a JSON or YAML config file")
	flags.StringVar(&c.ledgerURL, "ledger-url", "", "ledger REST API base URL (overrides config)")
	flags.StringVar(&c.publicKey, "public-key", "", "public key of the current user (overrides config)")
	flags.StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		newServeCommand(c),
		newTrackCommand(c),
		newRenderCommand(c),
		newAgentsCommand(c),
	)
	return root
}

func (c *cli) load() error {
	level, err := parseLevel(c.logLevel)
	if err != nil {
		return err
	}
	c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if c.ledgerURL != "" {
		cfg.Ledger.BaseURL = c.ledgerURL
	}
	if c.publicKey != "" {
		cfg.Ledger.PublicKey = c.publicKey
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.cfg = cfg
	return nil
}

func (c *cli) orchestrator(options ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	base := []orchestrator.Option{
		orchestrator.WithConfig(c.cfg),
		orchestrator.WithLogger(c.logger),
	}
	o := orchestrator.New(append(base, options...)...)
	if err := o.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}
