// Package cli implements the datagen command line tool.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/datagen/internal/config"
	"github.com/JonMunkholm/datagen/internal/core"
	"github.com/JonMunkholm/datagen/internal/logging"
	"github.com/spf13/cobra"
)

// app carries state shared by subcommands once the root pre-run has loaded
// configuration and opened history.
type app struct {
	cfg     *config.Config
	history core.HistoryStore
	service *core.Service

	historyBackend string
	historyPath    string
	logLevel       string
}

// newRootCmd creates the root command for datagen.
func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datagen",
		Short: "Generate synthetic test datasets as JSON, CSV, XML or SQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsService(cmd) {
				return nil
			}
			return a.open(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.historyBackend, "history-backend", config.BackendSQLite, "History storage: sqlite, memory or postgres")
	flags.StringVar(&a.historyPath, "history-db", "", "SQLite history file (default from HISTORY_SQLITE_PATH)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL)")

	cmd.AddCommand(
		newGenerateCmd(a),
		newSchemaCmd(a),
		newHistoryCmd(a),
		newCategoriesCmd(),
		newFormatsCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command with args, writing to stdout and stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	a := &app{}
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

// needsService reports whether cmd touches generation or history.
func needsService(cmd *cobra.Command) bool {
	return cmd.Annotations["service"] == "true"
}

var serviceAnnotation = map[string]string{"service": "true"}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	// The flag default only applies when HISTORY_BACKEND is unset
	if cmd.Flags().Changed("history-backend") || os.Getenv("HISTORY_BACKEND") == "" {
		cfg.History.Backend = a.historyBackend
	}
	if a.historyPath != "" {
		cfg.History.SQLitePath = a.historyPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	history, err := core.OpenHistory(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	service, err := core.NewService(history, cfg)
	if err != nil {
		history.Close()
		return err
	}

	a.cfg, a.history, a.service = cfg, history, service
	return nil
}

func (a *app) close() error {
	if a.history == nil {
		return nil
	}
	err := a.history.Close()
	a.history = nil
	return err
}

// writeOutput writes data to path, or to w with a trailing newline when
// path is empty or "-".
func writeOutput(w io.Writer, path, data string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(w, data)
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
