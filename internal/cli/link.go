// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dacolabs/jsonforms-go/editor"
	"github.com/dacolabs/jsonforms-go/jsonschema"
	"github.com/dacolabs/jsonforms-go/jsonvalue"
	"github.com/dacolabs/jsonforms-go/uischema"
)

var linkStrict bool

// linkCmd represents the link command
var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Show the schema node each control is linked to",
	Long: `Link the UI schema to the schema and list every control with the schema
node its scope resolves to. Scopes inside the detail of an array control are
resolved against the array's items.`,
	Example: `
  formedit link -s person.schema.json -u person.ui.yaml
  formedit link -s person.schema.json -u person.ui.yaml --strict
  formedit link -s person.schema.json -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if schemaPath == "" {
			return errNoSchema
		}
		_, state, err := loadState(cmd.Context())
		if err != nil {
			return err
		}

		rows := linkRows(state)
		switch viper.GetString("output") {
		case "json", "yaml":
			list := make([]any, len(rows))
			for i, r := range rows {
				list[i] = r.object()
			}
			if err := printDocument(cmd.OutOrStdout(), list); err != nil {
				return err
			}
		default:
			table := make([][]string, len(rows))
			for i, r := range rows {
				table[i] = r.cells()
			}
			printTable(cmd.OutOrStdout(), []string{"ELEMENT", "SCOPE", "SCHEMA NODE", "LABEL"}, table)
		}

		var unlinked int
		for _, r := range rows {
			if r.schemaPath == "" {
				unlinked++
			}
		}
		if linkStrict && unlinked > 0 {
			return fmt.Errorf("%d of %d controls are not linked", unlinked, len(rows))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)
	addDocumentFlags(linkCmd)
	linkCmd.Flags().BoolVar(&linkStrict, "strict", false, "fail if a control's scope does not resolve")
}

// A linkRow describes one control.
type linkRow struct {
	path       string
	scope      string
	schemaPath string // empty when unlinked
	label      string
}

func linkRows(s editor.State) []linkRow {
	var rows []linkRow
	for n := range uischema.All(s.UISchema) {
		if n.Kind != uischema.KindControl {
			continue
		}
		segs, err := uischema.PathFromRoot(n)
		if err != nil {
			continue
		}
		r := linkRow{path: "/" + strings.Join(segs, "/")}
		r.scope, _ = n.Scope()
		if target, ok := jsonschema.Find(s.Schema, n.LinkedSchemaNode); ok {
			r.schemaPath = strings.Join(append([]string{"#"}, jsonschema.PathFromRoot(target)...), "/")
			r.label = jsonschema.Label(target)
		}
		rows = append(rows, r)
	}
	return rows
}

func (r linkRow) cells() []string {
	schemaPath, label := r.schemaPath, r.label
	if schemaPath == "" {
		schemaPath, label = "-", "(unresolved)"
	}
	return []string{r.path, r.scope, schemaPath, label}
}

func (r linkRow) object() *jsonvalue.Object {
	obj := jsonvalue.ObjectOf("element", r.path, "scope", r.scope)
	if r.schemaPath != "" {
		obj.Set("schemaNode", r.schemaPath)
		obj.Set("label", r.label)
	} else {
		obj.Set("schemaNode", nil)
	}
	return obj
}
