package main

import (
	"time"

	"invoicer/internal/repository"
	"invoicer/internal/service"

	"github.com/spf13/cobra"
)

func newAnalyticsCmd(a *app) *cobra.Command {
	analyticsCmd := &cobra.Command{
		Use:   "analytics",
		Short: "Print an owner's revenue reports as JSON",
	}
	analyticsCmd.PersistentFlags().String("user", "", "Owner id (Google subject)")
	_ = analyticsCmd.MarkPersistentFlagRequired("user")

	newService := func() (service.AnalyticsService, error) {
		db, err := a.connect()
		if err != nil {
			return nil, err
		}
		return service.NewAnalyticsService(repository.NewInvoiceRepository(db), a.cfg.Location(), a.cfg.AnalyticsMonthLocale, time.Now), nil
	}

	revenueCmd := &cobra.Command{
		Use:     "revenue",
		Short:   "Collected revenue per month of a year",
		Example: `  invoicectl analytics revenue --user 1098765 --year 2024`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			year, _ := cmd.Flags().GetInt("year")

			analytics, err := newService()
			if err != nil {
				return err
			}
			data, err := analytics.MonthlyRevenue(cmd.Context(), userID, year)
			if err != nil {
				return err
			}
			return printJSON(cmd, data)
		},
	}
	revenueCmd.Flags().Int("year", 0, "Year to report (default current year)")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Due, Expired and Paid invoice counts of a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			year, _ := cmd.Flags().GetInt("year")

			analytics, err := newService()
			if err != nil {
				return err
			}
			data, err := analytics.StatusBreakdown(cmd.Context(), userID, year)
			if err != nil {
				return err
			}
			return printJSON(cmd, data)
		},
	}
	statusCmd.Flags().Int("year", 0, "Year to report (default current year)")

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Today's income, this month's invoices and outstanding total",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")

			analytics, err := newService()
			if err != nil {
				return err
			}
			data, err := analytics.DashboardStats(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printJSON(cmd, data)
		},
	}

	analyticsCmd.AddCommand(revenueCmd, statusCmd, dashboardCmd)
	return analyticsCmd
}
