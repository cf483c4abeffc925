package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

const dumpRowLimit = 20

func newDumpCommand(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "dump [table...]",
		Short: "Print tables with their row counts and first rows",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pool, err := openExisting(ctx, opts.dbPath)
			if err != nil {
				return err
			}
			defer pool.Close()

			return dump(ctx, pool.Primary(), cmd.OutOrStdout(), args, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", dumpRowLimit, "Rows to print per table")
	return cmd
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// dump prints the requested tables, or every table when none are named.
// Table names are checked against sqlite_master before being interpolated.
func dump(ctx context.Context, db *sql.DB, w io.Writer, only []string, limit int) error {
	tables, err := listTables(ctx, db)
	if err != nil {
		return err
	}

	if len(only) > 0 {
		known := make(map[string]bool, len(tables))
		for _, t := range tables {
			known[t] = true
		}
		for _, t := range only {
			if !known[t] {
				return fmt.Errorf("unknown table %q", t)
			}
		}
		tables = only
	}

	for _, t := range tables {
		if err := dumpTable(ctx, db, w, t, limit); err != nil {
			return fmt.Errorf("table %s: %w", t, err)
		}
	}
	return nil
}

func dumpTable(ctx context.Context, db *sql.DB, w io.Writer, table string, limit int) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "`+table+`"`).Scan(&count); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s (%d rows)\n%s\n", strings.ToUpper(table), count, strings.Repeat("-", 80))
	if count == 0 {
		fmt.Fprintln(w, "  (empty)")
		return nil
	}

	rows, err := db.QueryContext(ctx, `SELECT * FROM "`+table+`" LIMIT ?`, limit)
	if err != nil {
		return err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  "+strings.Join(cols, "\t"))

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		cells := make([]string, len(cols))
		for i, v := range vals {
			cells[i] = formatCell(cols[i], v)
		}
		fmt.Fprintln(tw, "  "+strings.Join(cells, "\t"))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if count > limit {
		fmt.Fprintf(w, "  ... and %d more rows\n", count-limit)
	}
	return nil
}

func formatCell(col string, v any) string {
	if col == "password" {
		return "********"
	}
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
