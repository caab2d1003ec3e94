package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	ingestdomain "github.com/smallbiznis/voltbill/internal/ingest/domain"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Import meter exports named naloga-lokacija-<customer id>.csv",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	var svc ingestdomain.Service
	stop, err := startApp(cmd.Context(), &svc)
	if err != nil {
		return err
	}
	defer stop()

	out := newImportTable(cmd.OutOrStdout())

	var errs []error
	for _, path := range args {
		result, err := importFile(cmd, svc, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		writeImportRow(out, result)
	}
	if err := out.Flush(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func newImportTable(w io.Writer) *tabwriter.Writer {
	out := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(out, "FILE\tCUSTOMER\tINSERTED\tDUPLICATES\tSKIPPED\tINVALID\tFAILED\tMONTH\tBILL")
	return out
}

func writeImportRow(w io.Writer, result ingestdomain.UploadResult) {
	fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
		result.Filename,
		result.CustomerID,
		result.Inserted,
		result.Duplicates,
		result.Skipped,
		result.Invalid,
		result.Failed,
		result.BillingMonth,
		result.BillOutcome,
	)
}

func importFile(cmd *cobra.Command, svc ingestdomain.Service, path string) (ingestdomain.UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ingestdomain.UploadResult{}, err
	}
	defer f.Close()

	return svc.Upload(cmd.Context(), ingestdomain.UploadRequest{
		Filename: path,
		Body:     f,
	})
}
