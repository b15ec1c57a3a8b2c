package main

import (
	"fmt"

	"invoicer/internal/logger"
	"invoicer/internal/repository"
	"invoicer/internal/service"

	"github.com/spf13/cobra"
)

func newNextNumberCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next-number",
		Short: "Allocate the next invoice number of an owner",
		Long: `Consumes one value of the owner's invoice sequence and prints it.

The number is not attached to any invoice, so it leaves a gap in the owner's
sequence. Use it to reserve numbers for invoices issued outside the API.`,
		Example: `  invoicectl next-number --user 109876543210987654321`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent(logger.ComponentCLI)
			userID, _ := cmd.Flags().GetString("user")

			db, err := a.connect()
			if err != nil {
				return err
			}

			sequence := service.NewSequenceService(repository.NewCounterRepository(db))
			invoiceNo, err := sequence.NextInvoiceNumber(cmd.Context(), userID)
			if err != nil {
				return err
			}

			log.Info().Str("user_id", userID).Str("invoice_no", invoiceNo).Msg("invoice number allocated")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), invoiceNo)
			return err
		},
	}

	cmd.Flags().String("user", "", "Owner id (Google subject)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
