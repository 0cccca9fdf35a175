package commands

import (
	"fmt"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/triagemesh/triagemesh/completion"
	"github.com/triagemesh/triagemesh/completion/anthropic"
	"github.com/triagemesh/triagemesh/completion/openai"
	"github.com/triagemesh/triagemesh/config"
	"github.com/triagemesh/triagemesh/core"
	"github.com/triagemesh/triagemesh/logging"
	"github.com/triagemesh/triagemesh/session"
	"github.com/triagemesh/triagemesh/session/sqlite"
)

const Version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:     "triagemesh",
	Short:   "Deterministic multi-stage incident triage pipeline",
	Long:    `triagemesh routes incident reports through specialist triage stages (assessment, guidance, resources, outreach) coordinated by a deterministic supervisor.`,
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML config file. Environment variables with the TRIAGE_ prefix override file values.")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(assessCmd)
}

// runtime bundles the services shared by the subcommands.
type runtime struct {
	cfg    *config.Config
	logger logging.Logger
	client completion.Client
	store  core.SessionStore
	closer func() error
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger, client: client, closer: func() error { return nil }}

	switch cfg.Session.Backend {
	case "sqlite":
		store, err := sqlite.New(cfg.Session.Path)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		rt.store = store
		rt.closer = store.Close
	default:
		rt.store = session.NewInMemoryStore()
	}

	return rt, nil
}

func newClient(cfg *config.Config) (completion.Client, error) {
	switch cfg.Provider.Name {
	case "openai":
		return openai.New(func(o *openai.Options) {
			if cfg.Provider.Model != "" {
				o.Model = cfg.Provider.Model
			}
			o.Temperature = cfg.Provider.Temperature
			o.MaxCompletionTokens = int64(cfg.Provider.MaxTokens)
		}), nil
	case "anthropic":
		return anthropic.New(func(o *anthropic.Options) {
			if cfg.Provider.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Provider.Model)
			}
			o.Temperature = cfg.Provider.Temperature
			o.MaxTokens = int64(cfg.Provider.MaxTokens)
			o.APIKey = cfg.Provider.APIKey
		}), nil
	case "mock":
		return completion.NewMock(), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider.Name)
	}
}
