// Package cli implements evidentiactl, the operator tool for migrations,
// integrity sweeps and offline analysis against the configured store.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"evidentia/internal/evidence/bootstrap"
	"evidentia/internal/evidence/service"
	"evidentia/internal/platform/config"
	"evidentia/internal/platform/logger"
	"evidentia/pkg/domain"
)

type app struct {
	out  io.Writer
	load func() (config.Server, error)
	cfg  config.Server
	log  *slog.Logger

	logLevel string
}

// Execute runs the root command against the environment configuration.
func Execute() error {
	return NewRootCommand(os.Stdout, config.FromEnv).Execute()
}

// NewRootCommand builds the command tree. load supplies the configuration
// once flags are parsed.
func NewRootCommand(out io.Writer, load func() (config.Server, error)) *cobra.Command {
	a := &app{out: out, load: load}
	root := &cobra.Command{
		Use:   "evidentiactl",
		Short: "Operate an evidentia evidence store",
		Long: `evidentiactl runs against the store named by EVIDENTIA_STORAGE_DRIVER and
EVIDENTIA_DATABASE_DSN (or the YAML file in EVIDENTIA_CONFIG).

Check a profile before building a submission:
  evidentiactl verify --profile <id>
  evidentiactl gaps --profile <id>
  evidentiactl pack build --profile <id> --start 2026-01-01 --end 2026-03-31 --sign`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			level := cfg.LogLevel
			if a.logLevel != "" {
				level = a.logLevel
			}
			a.log = logger.NewWithWriter(cmd.ErrOrStderr(), level)
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(a.migrateCmd())
	root.AddCommand(a.verifyCmd())
	root.AddCommand(a.gapsCmd())
	root.AddCommand(a.statsCmd())
	root.AddCommand(a.packCmd())
	root.AddCommand(a.exportCmd())
	root.AddCommand(a.auditSinkCmd())
	return root
}

// withService builds the service for one command and tears it down after.
func (a *app) withService(ctx context.Context, fn func(*service.Service) error) error {
	c, err := bootstrap.Build(ctx, a.cfg, a.log, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			a.log.Warn("cleanup failed", "error", err)
		}
	}()
	return fn(c.Service)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func profileFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "profile", "", "profile id (UUID)")
	_ = cmd.MarkFlagRequired("profile")
}

func rangeFlags(cmd *cobra.Command, start, end *string) {
	cmd.Flags().StringVar(start, "start", "", "first logical date, YYYY-MM-DD")
	cmd.Flags().StringVar(end, "end", "", "last logical date, YYYY-MM-DD")
}

func parseRange(start, end string) (domain.DateRange, error) {
	if start == "" && end == "" {
		return domain.DateRange{}, nil
	}
	if start == "" || end == "" {
		return domain.DateRange{}, fmt.Errorf("--start and --end must be given together")
	}
	s, err := domain.ParseDate(start)
	if err != nil {
		return domain.DateRange{}, err
	}
	e, err := domain.ParseDate(end)
	if err != nil {
		return domain.DateRange{}, err
	}
	r := domain.DateRange{Start: s, End: e}
	return r, r.Validate()
}
