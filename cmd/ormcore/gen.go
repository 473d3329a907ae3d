package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/ormcore/internal/codegen"
	"github.com/syssam/ormcore/internal/schemacheck"
	"github.com/syssam/ormcore/schema"
)

// dialectFold normalizes a user-typed --dialect flag ("MySQL", "Postgres",
// "SQLITE3") to the lowercase form dialect.MySQL/dialect.Postgres/
// dialect.SQLite expect.
var dialectFold = cases.Lower(language.Und)

func newGenCommand() *cobra.Command {
	var schemaPath, pkgName, outDir, schemaPkg, dialectName string

	cmd := &cobra.Command{
		Use:   "gen --schema relation.json",
		Short: "Emit a static accessor file for a JSON-encoded schema.Relation",
		Long: "gen reads a schema.Relation descriptor (the same shape schema.Column/ " +
			"schema.Key/schema.Relation marshal to) and writes the static accessor " +
			"file internal/codegen.Generate produces: a row struct plus Field/SetField " +
			"methods.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if schemaPath == "" {
				return fmt.Errorf("gen: --schema is required")
			}
			data, err := os.ReadFile(schemaPath)
			if err != nil {
				return fmt.Errorf("gen: reading %q: %w", schemaPath, err)
			}
			var rel schema.Relation
			if err := json.Unmarshal(data, &rel); err != nil {
				return fmt.Errorf("gen: parsing %q: %w", schemaPath, err)
			}

			if dialectName != "" {
				if err := schemacheck.Validate(&rel, dialectFold.String(dialectName)); err != nil {
					return fmt.Errorf("gen: %w", err)
				}
			}

			f, err := codegen.Generate(pkgName, &rel, schemaPkg)
			if err != nil {
				return fmt.Errorf("gen: %w", err)
			}

			out := filepath.Join(outDir, codegen.FileName(&rel))
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("gen: creating %q: %w", outDir, err)
			}
			if err := os.WriteFile(out, []byte(f.GoString()), 0o644); err != nil {
				return fmt.Errorf("gen: writing %q: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to a JSON-encoded schema.Relation")
	cmd.Flags().StringVar(&pkgName, "package", "accessors", "package name for the generated file")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.Flags().StringVar(&schemaPkg, "schema-pkg", "github.com/syssam/ormcore/schema", "import path of the schema package the generated code binds against")
	cmd.Flags().StringVar(&dialectName, "dialect", "", "optional SQL dialect (mysql, postgres, sqlite3) to validate column representability against before generating")
	return cmd
}
