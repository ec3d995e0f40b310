// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dacolabs/jsonforms-go/jsonvalue"
)

var (
	exportDocument string
	exportDebug    bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the linked documents",
	Long: `Load and link the documents, then print them. Without --uischema the
default layout for the schema is generated, one control per property.

With --debug every UI schema element carries its id, its parent's id and
the id of the schema node it is linked to.`,
	Example: `
  formedit export -s person.schema.json                 # generated UI schema
  formedit export -s person.schema.yaml -o yaml --document both
  formedit export -s person.schema.json -u ui.json --debug`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if schemaPath == "" {
			return errNoSchema
		}
		_, state, err := loadState(cmd.Context())
		if err != nil {
			return err
		}

		var doc any
		switch exportDocument {
		case "uischema":
			doc = uiDocument(state, exportDebug)
		case "schema":
			doc = schemaDocument(state)
		case "both":
			doc = jsonvalue.ObjectOf(
				"schema", schemaDocument(state),
				"uiSchema", uiDocument(state, exportDebug),
			)
		default:
			return fmt.Errorf("unknown document %q (want uischema, schema or both)", exportDocument)
		}
		return printDocument(cmd.OutOrStdout(), doc)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addDocumentFlags(exportCmd)
	exportCmd.Flags().StringVar(&exportDocument, "document", "uischema", "document to print (uischema, schema, both)")
	exportCmd.Flags().BoolVar(&exportDebug, "debug", false, "include element ids and links")
}
