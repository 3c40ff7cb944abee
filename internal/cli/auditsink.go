package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"evidentia/internal/evidence/bootstrap"
	"evidentia/pkg/platform/audit/consumer"
)

func (a *app) auditSinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit-sink",
		Short: "Copy audit events from Kafka into the evidence database",
		Long: `audit-sink joins the configured consumer group on the audit topic and writes
every event to the audit_events table. It runs until interrupted. Replays after
a restart are harmless: each event is keyed by its topic position.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(a.cfg.Kafka.Brokers) == 0 {
				return errors.New("audit-sink needs EVIDENTIA_KAFKA_BROKERS")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			_, db, err := bootstrap.OpenStore(ctx, a.cfg.Storage)
			if err != nil {
				return err
			}
			if db == nil {
				return errors.New("audit-sink needs a sqlite or postgres storage driver")
			}
			defer db.Close()
			sink, err := bootstrap.OpenAuditDatabase(ctx, a.cfg.Storage.Driver, db)
			if err != nil {
				return err
			}

			c, err := consumer.New(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic, a.cfg.Kafka.SinkGroup,
				consumer.NewStoreRouter(sink, a.log), a.log)
			if err != nil {
				return err
			}
			defer c.Close()

			a.log.InfoContext(ctx, "audit sink started",
				"topic", a.cfg.Kafka.Topic,
				"group", a.cfg.Kafka.SinkGroup,
				"storage", a.cfg.Storage.Driver,
			)
			if err := c.Run(ctx); err != nil {
				return fmt.Errorf("audit sink: %w", err)
			}
			a.log.InfoContext(ctx, "audit sink stopped")
			return nil
		},
	}
}
