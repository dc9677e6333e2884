// Package cli is the postman-sync command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"postman-sync/internal/client"
	"postman-sync/internal/config"
	syncerrors "postman-sync/internal/errors"
	"postman-sync/internal/history"
	"postman-sync/internal/llm"
	"postman-sync/internal/logging"
	"postman-sync/internal/reporter"
	"postman-sync/internal/syncer"
)

// app holds what every command shares.
type app struct {
	configPath string
	collection string
	logLevel   string

	cfg    *config.Config
	logger zerolog.Logger
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), syncerrors.Describe(err))
		cancel()
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "postman-sync",
		Short: "Keep a Postman collection in step with a Rails API",
		Long: `postman-sync reconciles endpoint descriptions derived from a Rails application
with a Postman collection. Requests are matched by method and path, changed
requests are regenerated, and hand-written documentation is preserved.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default is ./"+config.DefaultPath+" when present)")
	root.PersistentFlags().StringVar(&a.collection, "collection", "", "Postman collection UID (overrides POSTMAN_COLLECTION_UID)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		a.previewCommand(),
		a.syncCommand(),
		a.docsCommand(),
		a.checkCommand(),
		a.routesCommand(),
		a.importOpenAPICommand(),
		a.analyzeCommand(),
		a.historyCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.collection != "" {
		cfg.Postman.CollectionUID = a.collection
	}
	a.cfg = cfg

	logCfg := logging.DefaultConfig()
	logCfg.Output = cmd.ErrOrStderr()
	if a.logLevel != "" {
		logCfg.Level = a.logLevel
	}
	a.logger = logging.New(logCfg)
	return nil
}

// service builds a Service with every collaborator the configuration
// enables. The returned func releases them.
func (a *app) service(ctx context.Context, needHistory bool) (*syncer.Service, func(), error) {
	postmanClient := client.New(client.Config{
		BaseURL: a.cfg.Postman.BaseURL,
		APIKey:  a.cfg.Postman.APIKey,
		Timeout: a.cfg.RequestTimeout(),
		Retry: client.RetryConfig{
			Attempts: a.cfg.Postman.Retry.Attempts,
			Delay:    a.cfg.RetryDelay(),
		},
	}, a.logger)

	opts := []syncer.Option{
		syncer.WithReporter(reporter.NewReporter(reporter.ReportingConfig{
			Format:    a.cfg.Reporting.Format,
			OutputDir: a.cfg.Reporting.OutputDir,
		})),
	}

	// Analyze reports an invalid llm section; other commands run without it.
	if a.cfg.LLM.APIKey != "" {
		if err := a.cfg.LLM.Validate(); err != nil {
			a.logger.Warn().Err(err).Msg("controller analysis disabled")
		} else {
			analyzer, err := llm.NewClient(llm.FromSettings(a.cfg.LLM), a.logger)
			if err != nil {
				return nil, nil, err
			}
			opts = append(opts, syncer.WithAnalyzer(analyzer))
		}
	}

	release := func() {}
	if history.Enabled(a.cfg.History) {
		store, err := history.Open(ctx, a.cfg.History, a.logger)
		switch {
		case err != nil && needHistory:
			return nil, nil, err
		case err != nil:
			a.logger.Warn().Err(err).Msg("run history disabled")
		default:
			opts = append(opts, syncer.WithHistory(store))
			release = func() { store.Close() }
		}
	}

	return syncer.New(a.cfg, postmanClient, a.logger, opts...), release, nil
}

func write(w io.Writer, text string) error {
	_, err := fmt.Fprintln(w, text)
	return err
}
