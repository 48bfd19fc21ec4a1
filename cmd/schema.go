package cmd

import (
	"fmt"

	"datasync/core/config"
	"datasync/core/database"
	"datasync/core/model"

	"github.com/spf13/cobra"
)

var (
	inferName  string
	inferAlias string
)

// schemaCmd groups the schema file tooling
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Validate and generate model schema files",
}

// schemaCheckCmd loads a schema file into an empty registry
var schemaCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a schema file",
	Long: `Registers every model of a YAML schema file in an empty registry, failing on
the first definition error or on any model reference that does not resolve.
The normalized document is printed on success.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := model.NewRegistry()
		schemas, err := model.LoadSchemaFile(args[0], reg)
		if err != nil {
			return err
		}
		if missing := reg.Unresolved(); len(missing) > 0 {
			return fmt.Errorf("unresolved model references: %v", missing)
		}
		return model.WriteSchemas(cmd.OutOrStdout(), schemas...)
	},
}

// schemaInferCmd derives a schema from a database table
var schemaInferCmd = &cobra.Command{
	Use:   "infer <table>",
	Short: "Generate a schema from a database table",
	Long: `Reads the columns of a table from the configured database and prints a schema
document with one field per column.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		columns, err := database.GetTableColumns(db, args[0])
		if err != nil {
			return err
		}
		if len(columns) == 0 {
			return fmt.Errorf("table %s not found", args[0])
		}

		name := inferName
		if name == "" {
			name = args[0]
		}
		schema, err := model.NewRegistry().Register(name, database.InferFields(columns), inferAlias)
		if err != nil {
			return err
		}
		return model.WriteSchemas(cmd.OutOrStdout(), schema)
	},
}

func init() {
	schemaInferCmd.Flags().StringVar(&inferName, "name", "", "Model identity (defaults to the table name)")
	schemaInferCmd.Flags().StringVar(&inferAlias, "alias", "", "Model class name")

	schemaCmd.AddCommand(schemaCheckCmd)
	schemaCmd.AddCommand(schemaInferCmd)
	RootCmd.AddCommand(schemaCmd)
}
