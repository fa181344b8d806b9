package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/snoopsim/datarecording"
	"github.com/sarchlab/snoopsim/mem/bus"
	"github.com/sarchlab/snoopsim/mem/snoopcache"
	"github.com/sarchlab/snoopsim/tracing"
)

var (
	inspectTable string
	inspectWhere string
	inspectLimit int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [recording.sqlite3]",
	Short: "Print the records of a recorded run.",
	Long: "`inspect` lists the tables of a recording made with " +
		"`run --record`. With --table, it prints the matching rows.",
	Args: cobra.ExactArgs(1),
	RunE: inspectRecording,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	f := inspectCmd.Flags()
	f.StringVar(&inspectTable, "table", "",
		"Table to print: access or bus_transaction")
	f.StringVar(&inspectWhere, "where", "", "SQL condition on the rows")
	f.IntVar(&inspectLimit, "limit", 20, "Maximum number of rows, 0 for all")
}

func inspectRecording(cmd *cobra.Command, args []string) error {
	reader, err := datarecording.NewReader(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(tracing.AccessTable, snoopcache.AccessRecord{})
	reader.MapTable(tracing.BusTransactionTable, bus.TransactionRecord{})

	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if inspectTable == "" {
		return listTables(ctx, out, reader)
	}

	rows, total, err := reader.Query(ctx, inspectTable,
		datarecording.QueryParams{
			Where:   inspectWhere,
			OrderBy: "Cycle",
			Limit:   inspectLimit,
		})
	if err != nil {
		return err
	}

	for _, row := range rows {
		fmt.Fprintf(out, "%+v\n", row)
	}

	fmt.Fprintf(out, "%d of %d rows\n", len(rows), total)

	return nil
}

func listTables(
	ctx context.Context,
	out io.Writer,
	reader datarecording.DataReader,
) error {
	tables, err := reader.StoredTables(ctx)
	if err != nil {
		return err
	}

	for _, table := range tables {
		n, err := reader.Count(ctx, table, datarecording.QueryParams{})
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s\t%d rows\n", table, n)
	}

	return nil
}
