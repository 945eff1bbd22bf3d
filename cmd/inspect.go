package cmd

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iksnae/fliey/internal"
	"github.com/spf13/cobra"
)

var (
	inspectFormat     string
	inspectSampleRows int
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [database-path]",
	Short: "Inspect a fliey SQLite database",
	Long: `Inspect the schema and contents of a fliey SQLite database (history or
SQLite bridge). Without an argument the configured history database is used,
or the bridge database when history is kept in YAML.

Examples:
  fliey inspect                         # Configured database
  fliey inspect ~/.local/share/fliey/history.db --sample 5
  fliey inspect --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var dbPath string
		switch {
		case len(args) > 0:
			dbPath = args[0]
		case cfg.History.Backend == "sqlite":
			dbPath = cfg.History.Path
		case cfg.Bridge.Backend == "sqlite":
			dbPath = cfg.Bridge.DBPath
		default:
			return &internal.ValidationError{Field: "database-path", Message: "no SQLite store is configured; pass a path"}
		}
		if inspectFormat != "text" && inspectFormat != "json" {
			return &internal.ValidationError{Field: "format", Message: fmt.Sprintf("must be text or json, got %q", inspectFormat)}
		}

		report, err := inspectDatabase(dbPath, inspectSampleRows)
		if err != nil {
			return err
		}
		if inspectFormat == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

type databaseReport struct {
	Path   string        `json:"path"`
	Tables []tableReport `json:"tables"`
}

type tableReport struct {
	Name    string              `json:"name"`
	Rows    int                 `json:"rows"`
	Columns []ColumnInfo        `json:"columns"`
	Sample  []map[string]string `json:"sample,omitempty"`
}

type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"notNull"`
	PrimaryKey bool   `json:"primaryKey"`
}

func inspectDatabase(dbPath string, sampleRows int) (*databaseReport, error) {
	db, err := internal.OpenDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	counts, err := internal.TableCounts(db)
	if err != nil {
		return nil, &internal.StorageError{Path: dbPath, Op: "read", Err: err}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	report := &databaseReport{Path: dbPath}
	for _, name := range names {
		columns, err := getTableSchema(db, name)
		if err != nil {
			return nil, &internal.StorageError{Path: dbPath, Op: "read", Err: fmt.Errorf("schema of %s: %w", name, err)}
		}
		table := tableReport{Name: name, Rows: counts[name], Columns: columns}
		if table.Rows > 0 && sampleRows > 0 {
			table.Sample, err = sampleData(db, name, columns, sampleRows)
			if err != nil {
				internal.LogWarn("Error sampling %s: %v", name, err)
			}
		}
		report.Tables = append(report.Tables, table)
	}
	return report, nil
}

func printReport(out io.Writer, report *databaseReport) {
	fmt.Fprintf(out, "📋 Database: %s\n", report.Path)
	fmt.Fprintf(out, "📊 Found %d table(s)\n\n", len(report.Tables))

	for _, table := range report.Tables {
		fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		fmt.Fprintf(out, "📦 Table: %s\n", table.Name)
		fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		fmt.Fprintf(out, "📊 Rows: %d\n\n", table.Rows)

		fmt.Fprintf(out, "📐 Schema:\n")
		for _, col := range table.Columns {
			pk := ""
			if col.PrimaryKey {
				pk = " [PRIMARY KEY]"
			}
			notNull := ""
			if col.NotNull {
				notNull = " NOT NULL"
			}
			fmt.Fprintf(out, "  • %s: %s%s%s\n", col.Name, col.Type, notNull, pk)
		}

		if len(table.Sample) > 0 {
			fmt.Fprintf(out, "\n📄 Sample Data (first %d rows):\n", len(table.Sample))
			for i, row := range table.Sample {
				fmt.Fprintf(out, "\n  Row %d:\n", i+1)
				for _, col := range table.Columns {
					fmt.Fprintf(out, "    %s: %s\n", col.Name, row[col.Name])
				}
			}
		}
		fmt.Fprintln(out)
	}
}

func getTableSchema(db *sql.DB, tableName string) ([]ColumnInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var cid int
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			continue
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk > 0
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func sampleData(db *sql.DB, tableName string, columns []ColumnInfo, limit int) ([]map[string]string, error) {
	colNames := make([]string, len(columns))
	for i, col := range columns {
		colNames[i] = col.Name
	}

	query := fmt.Sprintf("SELECT %s FROM %s LIMIT %d", strings.Join(colNames, ", "), tableName, limit)
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sample []map[string]string
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return sample, err
		}

		row := make(map[string]string, len(columns))
		for i, col := range columns {
			row[col.Name] = formatValue(values[i])
		}
		sample = append(sample, row)
	}
	return sample, rows.Err()
}

// formatValue renders a scanned column; bridge values are JSON blobs
func formatValue(val interface{}) string {
	var s string
	switch v := val.(type) {
	case nil:
		return "<NULL>"
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprintf("%v", v)
	}
	if strings.Contains(s, "\n") {
		s = strings.Split(s, "\n")[0] + "..."
	}
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
	inspectCmd.Flags().IntVar(&inspectSampleRows, "sample", 3, "Number of sample rows to show")
}
