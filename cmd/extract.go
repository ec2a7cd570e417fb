package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/procurelens/procure-cli/internal/rules"
	"github.com/procurelens/procure-cli/internal/store"
)

var extractSave bool

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract and validate an audit record from a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}

		record, err := newExtractor(cfg).ExtractAudit(ctx, string(data))
		if err != nil {
			return err
		}

		id := store.AuditID(record.Type, record.Vendor, record.Date, time.Now())
		result := map[string]any{
			"id":         id,
			"record":     record,
			"validation": rules.Validate(record),
		}

		if extractSave {
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			payload, err := jsonMarshal(result)
			if err != nil {
				return err
			}
			if err := st.CreateRecord(ctx, store.Record{
				ID:      id,
				Kind:    store.KindAudit,
				Vendor:  record.Vendor,
				Payload: payload,
			}); err != nil {
				return err
			}
			zap.L().Info("audit record saved", zap.String("id", id))
		}

		return printJSON(result)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "persist the result to the store")
	rootCmd.AddCommand(extractCmd)
}
