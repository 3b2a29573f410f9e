// Package cli implements outreachctl, the command-line client that runs the
// outreach pipeline in-process.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"outreach/internal/app"
	"outreach/internal/config"
	"outreach/internal/db"
	"outreach/internal/logger"
	"outreach/internal/pipeline"
	"outreach/internal/records"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// environment holds the components commands share. Fields already set are
// kept, which lets tests inject fakes.
type environment struct {
	cfg       *config.Config
	yaml      *config.YAMLConfig
	logger    *zap.Logger
	store     records.Store
	database  *db.DB
	processor *pipeline.Processor
}

func (e *environment) load(ctx context.Context, configFile string, debug bool) error {
	if e.cfg == nil {
		e.cfg = config.Load()
	}
	if e.logger == nil {
		level := "warn"
		if debug {
			level = "debug"
		}
		zlog, err := logger.New("production", level)
		if err != nil {
			return err
		}
		e.logger = zlog
	}
	if e.yaml == nil {
		var (
			yamlCfg *config.YAMLConfig
			err     error
		)
		if configFile != "" {
			yamlCfg, err = config.LoadYAMLConfigFrom(configFile)
		} else {
			yamlCfg, err = config.LoadYAMLConfig()
		}
		if err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
		e.yaml = yamlCfg
	}
	if e.store == nil {
		store, database, err := app.OpenStore(ctx, e.cfg, e.logger)
		if err != nil {
			return err
		}
		e.store = store
		e.database = database
	}
	if e.processor == nil {
		processor, err := app.NewProcessor(e.cfg, e.yaml, e.store, e.logger)
		if err != nil {
			return err
		}
		e.processor = processor
	}
	return nil
}

func (e *environment) close() {
	if e.database != nil {
		e.database.Close()
		e.database = nil
	}
	if e.logger != nil {
		_ = e.logger.Sync()
	}
}

// Execute runs the root command.
func Execute() error {
	// .env is optional
	_ = godotenv.Load()
	return execute(context.Background(), &environment{}, nil)
}

// execute runs the root command with args, or os.Args when args is nil, and
// releases env on every exit path.
func execute(ctx context.Context, env *environment, args []string) error {
	defer env.close()
	root := newRootCommand(env)
	if args != nil {
		root.SetArgs(args)
	}
	return root.ExecuteContext(ctx)
}

func newRootCommand(env *environment) *cobra.Command {
	var (
		configFile string
		debug      bool
	)

	root := &cobra.Command{
		Use:           "outreachctl",
		Short:         "Find community discussions and build tracking links",
		Long:          "outreachctl analyzes content pages, searches communities for related discussions and manages UTM tracking links.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["skipEnv"] == "true" {
				return nil
			}
			return env.load(cmd.Context(), configFile, debug)
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (default is $CONFIG_FILE or ./config.yaml)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(&cobra.Command{
		Use:         "version",
		Short:       "Print the version number",
		Annotations: map[string]string{"skipEnv": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "outreachctl version %s\n", Version)
		},
	})
	root.AddCommand(newFiltersCommand())
	root.AddCommand(newProcessCommand(env))
	root.AddCommand(newSearchCommand(env))
	root.AddCommand(newTrackingCommand(env))
	root.AddCommand(newRecordsCommand(env))

	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
