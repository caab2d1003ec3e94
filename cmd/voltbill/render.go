package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	billdomain "github.com/smallbiznis/voltbill/internal/bill/domain"
	reportdomain "github.com/smallbiznis/voltbill/internal/report/domain"
	"github.com/spf13/cobra"
)

var (
	renderBillID   string
	renderCustomer string
	renderMonth    string
	renderOutDir   string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the PDF report of a stored bill",
	Long: `Render looks a bill up by --bill or by --customer and --month (YYYY-MM)
and writes its PDF report into --out.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderBillID, "bill", "", "bill id")
	renderCmd.Flags().StringVar(&renderCustomer, "customer", "", "customer id")
	renderCmd.Flags().StringVar(&renderMonth, "month", "", "billing month as YYYY-MM")
	renderCmd.Flags().StringVar(&renderOutDir, "out", ".", "output directory")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderBillID == "" && (renderCustomer == "" || renderMonth == "") {
		return errors.New("either --bill or both --customer and --month are required")
	}

	var (
		billSvc   billdomain.Service
		reportSvc reportdomain.Service
	)
	stop, err := startApp(cmd.Context(), &billSvc, &reportSvc)
	if err != nil {
		return err
	}
	defer stop()

	billID := renderBillID
	if billID == "" {
		month, err := time.Parse("2006-01", renderMonth)
		if err != nil {
			return fmt.Errorf("invalid --month %q: %w", renderMonth, err)
		}
		bill, err := billSvc.GetByCustomerMonth(cmd.Context(), renderCustomer, month)
		if err != nil {
			return err
		}
		billID = bill.ID.String()
	}

	report, err := reportSvc.RenderBill(cmd.Context(), billID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(renderOutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(renderOutDir, report.Filename)
	if err := os.WriteFile(path, report.Data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, stored at %s)\n", path, report.Engine, report.Object.Location)
	return nil
}
