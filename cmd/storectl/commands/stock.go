package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/services"

	"github.com/spf13/cobra"
)

var (
	restockQty  int
	restockNote string
	actorEmail  string
)

// restockCmd books inbound stock
var restockCmd = &cobra.Command{
	Use:   "restock PRODUCT_ID",
	Short: "Add stock to a product",
	Long: `Append an inbound movement to the stock ledger and raise the product's
on-hand quantity by the same amount.

Examples:
  storectl restock p-kettle --qty 10 --note "March delivery"
  storectl restock p-kettle --qty 2 --as admin@storefront.test`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRestock(cmd, args[0])
	},
}

// stockLogCmd prints the ledger for one product
var stockLogCmd = &cobra.Command{
	Use:   "stock-log PRODUCT_ID",
	Short: "Show a product's stock movements, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStockLog(cmd, args[0])
	},
}

func init() {
	restockCmd.Flags().IntVar(&restockQty, "qty", 0, "Units to add (required, at least 1)")
	restockCmd.Flags().StringVar(&restockNote, "note", "", "Free-text note stored with the movement")
	restockCmd.Flags().StringVar(&actorEmail, "as", "admin@storefront.test", "Email of the admin performing the restock")
	_ = restockCmd.MarkFlagRequired("qty")
	rootCmd.AddCommand(restockCmd, stockLogCmd)
}

func runRestock(cmd *cobra.Command, productID string) error {
	db, _, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	actor, err := repos.NewUserRepo(db).ByEmail(actorEmail)
	if err != nil {
		return fmt.Errorf("look up %s: %w", actorEmail, err)
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("%s: %w", actorEmail, domain.ErrForbidden)
	}

	svc := services.NewStockService(repos.NewStore(db))
	m, err := svc.Restock(cmd.Context(), actor, productID, restockQty, restockNote)
	if err != nil {
		return err
	}
	qty, err := svc.Availability(productID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return json.NewEncoder(out).Encode(map[string]any{"movement": m, "on_hand": qty.Qty})
	}
	fmt.Fprintf(out, "restocked %s by %d, on hand now %d\n", productID, restockQty, qty.Qty)
	return nil
}

func runStockLog(cmd *cobra.Command, productID string) error {
	db, _, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	p, moves, err := services.NewStockService(repos.NewStore(db)).Log(productID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return json.NewEncoder(out).Encode(map[string]any{"product": p, "movements": moves})
	}

	fmt.Fprintf(out, "%s (%s), on hand %d\n\n", p.Name, p.SKU, p.Quantity)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tTYPE\tQTY\tBY\tNOTE")
	for _, m := range moves {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", m.CreatedAt, m.Type, m.Quantity, m.PerformerName, m.Note)
	}
	return w.Flush()
}
