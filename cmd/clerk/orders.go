package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/shopclerk/internal/clerk"
	"github.com/zulandar/shopclerk/internal/config"
)

func newOrdersCmd() *cobra.Command {
	var configPath string
	var digest bool

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List recorded orders",
		Long:  "Reads the configured order store and prints every recorded order, oldest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrders(cmd, configPath, digest)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "clerk.yaml", "path to Shopclerk config file")
	cmd.Flags().BoolVar(&digest, "digest", false, "print the last-24h digest instead of the full list")
	return cmd
}

func runOrders(cmd *cobra.Command, configPath string, digest bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if digest {
		text, err := clerk.BuildDailyDigest(store, time.Now())
		if err != nil {
			return fmt.Errorf("orders: build digest: %w", err)
		}
		if text == "" {
			fmt.Fprintln(out, "No orders in the last 24 hours.")
			return nil
		}
		fmt.Fprintln(out, text)
		return nil
	}

	orders, err := store.LoadAll()
	if err != nil {
		return fmt.Errorf("orders: load: %w", err)
	}
	if len(orders) == 0 {
		fmt.Fprintln(out, "No orders recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tCODE\tPRODUCT\tCUSTOMER\tPHONE\tPRICE")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			o.Timestamp, o.ProductID, o.ProductName, o.CustomerName, o.Phone, o.Price)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d order(s)\n", len(orders))
	return nil
}
