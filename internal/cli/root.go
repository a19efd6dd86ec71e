// Package cli implements posclient, the device-side command that records
// sales while offline and drains them to the server.
package cli

import (
	"fmt"

	"stolarpos/internal/config"
	"stolarpos/internal/infra"
	"stolarpos/internal/offline"
	"stolarpos/internal/syncer"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the configuration shared by every command.
type RootOptions struct {
	Format    string // "json" | "text"
	DBPath    string
	ServerURL string

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the posclient root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "posclient",
		Short: "Stolar POS device client",
		Long:  "Records sales in the on-device offline queue and syncs them to the Stolar POS server.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			if opts.DBPath != "" {
				cfg.OfflineDBPath = opts.DBPath
			}
			if opts.ServerURL != "" {
				cfg.ServerBaseURL = opts.ServerURL
			}
			infra.ConfigureLogger(cfg.IsProduction())
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "offline queue database (overrides OFFLINE_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.ServerURL, "server", "", "server base URL (overrides SERVER_BASE_URL)")

	cmd.AddCommand(NewRecordCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openBuffer opens the SQLite-backed queue. The returned close func must be
// called once the command is done with the buffer.
func (o *RootOptions) openBuffer() (*offline.Buffer, func() error, error) {
	store, err := offline.OpenSQLite(o.cfg.OfflineDBPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "open offline queue", err)
	}
	return offline.NewBuffer(store), store.Close, nil
}

func (o *RootOptions) newReconciler(buf *offline.Buffer) *syncer.Reconciler {
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		Name:             "sales",
		FailureThreshold: o.cfg.CBFailureThreshold,
		OpenTimeout:      o.cfg.CBOpenTimeout,
	})
	return syncer.New(
		buf,
		syncer.NewHTTPProbe(o.cfg.ServerBaseURL, o.cfg.ReachabilityTimeout),
		syncer.NewHTTPSubmitter(o.cfg.ServerBaseURL, o.cfg.SubmitTimeout, cb),
	)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}
