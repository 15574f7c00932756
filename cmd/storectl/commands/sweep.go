package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/events"
	"storefront/internal/repos"
	"storefront/internal/services"

	"github.com/spf13/cobra"
)

var olderThan time.Duration

// sweepCmd cancels stale pending orders once
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Cancel pending orders older than a cutoff",
	Long: `Cancel orders that are still awaiting payment after the given age.
Paid, shipped and already cancelled orders are never touched.

Examples:
  storectl sweep --older-than 24h
  storectl sweep                      # uses PENDING_ORDER_TTL`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd)
	},
}

func init() {
	sweepCmd.Flags().DurationVar(&olderThan, "older-than", 0, "Age after which a pending order is cancelled")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command) error {
	db, cfg, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ttl := olderThan
	if ttl <= 0 {
		ttl = cfg.PendingOrderTTL
	}
	if ttl <= 0 {
		return fmt.Errorf("no cutoff: pass --older-than or set PENDING_ORDER_TTL")
	}

	pub := events.FromBrokers(cfg.KafkaBrokers)
	if k, ok := pub.(*events.Kafka); ok {
		defer k.Close()
	}
	svc := services.NewOrderService(repos.NewOrderRepo(db))
	svc.Events = pub

	n, err := svc.SweepStale(cmd.Context(), ttl)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return json.NewEncoder(out).Encode(map[string]any{"cancelled": n, "older_than": ttl.String()})
	}
	fmt.Fprintf(out, "cancelled %d pending order(s) older than %s\n", n, ttl)
	return nil
}
