package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/procurelens/procure-cli/internal/store"
)

var (
	recordsKind   string
	recordsVendor string
	recordsLimit  int
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect stored analysis records",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.ListRecords(ctx, store.RecordFilter{
			Kind:   recordsKind,
			Vendor: recordsVendor,
			Limit:  recordsLimit,
		})
		if err != nil {
			return err
		}
		return printJSON(records)
	},
}

var recordsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch one record by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		record, err := st.GetRecord(ctx, args[0])
		if err != nil {
			return err
		}
		if record == nil {
			return eris.Errorf("record not found: %s", args[0])
		}
		return printJSON(record)
	},
}

func init() {
	recordsListCmd.Flags().StringVar(&recordsKind, "kind", "", "filter by kind (audit or rfq)")
	recordsListCmd.Flags().StringVar(&recordsVendor, "vendor", "", "filter by vendor")
	recordsListCmd.Flags().IntVar(&recordsLimit, "limit", 0, "max records to return")
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsGetCmd)
	rootCmd.AddCommand(recordsCmd)
}
