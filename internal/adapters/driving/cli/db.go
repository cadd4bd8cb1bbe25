package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the customer support database",
	Long:  `Create the support schema, import CSV data and run read-only queries.`,
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the customers, products and tickets tables",
	Args:  cobra.NoArgs,
	RunE:  runDBInit,
}

var dbImportCmd = &cobra.Command{
	Use:   "import [file.csv...]",
	Short: "Import rows from CSV files",
	Long: `Imports rows from CSV files into the support database.

The target table is detected from the header row: every required column of
the table must be present and the table with the best column overlap wins.
Rows are validated before insert and receive new ids.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDBImport,
}

var dbQueryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Run a read-only SELECT query",
	Long: `Runs a query through the same guard the SQL agent uses.

Only a single SELECT statement is accepted; statements that modify data or
schema are rejected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDBQuery,
}

var dbSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema description given to the SQL agent",
	Args:  cobra.NoArgs,
	RunE:  runDBSchema,
}

func init() {
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbImportCmd)
	dbCmd.AddCommand(dbQueryCmd)
	dbCmd.AddCommand(dbSchemaCmd)
	rootCmd.AddCommand(dbCmd)
}

func runDBInit(cmd *cobra.Command, _ []string) error {
	support, err := supportPort(cmd)
	if err != nil {
		return err
	}
	if err := support.InitSchema(commandContext(cmd)); err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	cmd.Println("Support schema ready.")
	return nil
}

func runDBImport(cmd *cobra.Command, args []string) error {
	support, err := supportPort(cmd)
	if err != nil {
		return err
	}

	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		report, err := support.ImportCSV(commandContext(cmd), f)
		f.Close()
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		cmd.Printf("%s: inserted %d rows into %s (%d -> %d)\n",
			path, report.Inserted, report.Table, report.CountBefore, report.CountAfter)
	}
	return nil
}

func runDBQuery(cmd *cobra.Command, args []string) error {
	query, err := queryPort(cmd)
	if err != nil {
		return err
	}
	result, err := query.Run(commandContext(cmd), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	cmd.Println(result.Format())
	return nil
}

func runDBSchema(cmd *cobra.Command, _ []string) error {
	query, err := queryPort(cmd)
	if err != nil {
		return err
	}
	cmd.Println(query.Schema(commandContext(cmd)))
	return nil
}
