// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dacolabs/jsonforms-go/editor"
	"github.com/dacolabs/jsonforms-go/jsonvalue"
)

var (
	applyDiff  bool
	applyWrite bool
)

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply <script>",
	Short: "Apply an edit script to the documents",
	Long: `Apply the actions of an edit script, in order, to the linked documents.

A script is a JSON or YAML list of actions, or an object with an "actions"
list. Each action has the shape accepted by the server's /api/v1/actions
endpoint. Since element ids are generated on load, element references
(elementId, containerId, layoutId, controlId) may also be UI schema paths
such as "/elements/0/options/detail", and schemaNodeId may be a scope such
as "#/properties/name".

The first rejected action stops the script; nothing is written.`,
	Example: `
  formedit apply edits.yaml -s person.schema.json -u person.ui.json
  formedit apply edits.yaml -s person.schema.json -u person.ui.json --diff
  formedit apply edits.yaml -s person.schema.json -u person.ui.json --write`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if schemaPath == "" {
			return errNoSchema
		}
		actions, err := readScript(args[0])
		if err != nil {
			return err
		}
		ed, state, err := loadState(cmd.Context())
		if err != nil {
			return err
		}

		next, err := applyScript(ed, state, actions)
		if err != nil {
			return err
		}
		log.Info().Int("actions", len(actions)).Msg("Edit script applied")

		switch {
		case applyWrite:
			return writeChanges(cmd.OutOrStdout(), state, next)
		case applyDiff:
			return printDiff(cmd.OutOrStdout(), state, next)
		}
		return printDocument(cmd.OutOrStdout(), uiDocument(next, false))
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	addDocumentFlags(applyCmd)
	applyCmd.Flags().BoolVar(&applyDiff, "diff", false, "print the changes instead of the resulting UI schema")
	applyCmd.Flags().BoolVarP(&applyWrite, "write", "w", false, "write changed documents back to their files")
	applyCmd.MarkFlagsMutuallyExclusive("diff", "write")
}

// applyScript dispatches actions in order, stopping at the first rejection.
func applyScript(ed *editor.Editor, state editor.State, actions []*jsonvalue.Object) (editor.State, error) {
	for i, obj := range actions {
		resolved, err := resolveRefs(state, obj)
		if err != nil {
			return state, fmt.Errorf("action %d: %w", i+1, err)
		}
		a, err := editor.ActionFromObject(resolved)
		if err != nil {
			return state, fmt.Errorf("action %d: %w", i+1, err)
		}
		if state, err = ed.Reduce(state, a); err != nil {
			return state, fmt.Errorf("action %d (%s): %w", i+1, a.Type(), err)
		}
	}
	return state, nil
}

// A change is one document before and after an edit script.
type change struct {
	name          string
	path          string
	before, after []byte
}

func (c change) changed() bool { return string(c.before) != string(c.after) }

func changes(before, after editor.State, format string) ([]change, error) {
	out := []change{
		{name: "schema", path: schemaPath},
		{name: "uischema", path: uiSchemaPath},
	}
	docs := [][2]any{
		{schemaDocument(before), schemaDocument(after)},
		{uiDocument(before, false), uiDocument(after, false)},
	}
	for i := range out {
		var err error
		if out[i].before, err = encodeDocument(docs[i][0], format); err != nil {
			return nil, err
		}
		if out[i].after, err = encodeDocument(docs[i][1], format); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func printDiff(w io.Writer, before, after editor.State) error {
	list, err := changes(before, after, viper.GetString("output"))
	if err != nil {
		return err
	}
	shown := false
	for _, c := range list {
		if !c.changed() {
			continue
		}
		shown = true
		fmt.Fprintf(w, "--- %s\n+++ %s\n", c.name, c.name)
		fmt.Fprint(w, lineDiff(string(c.before), string(c.after)))
	}
	if !shown {
		success(w, "No changes")
	}
	return nil
}

var errNoUISchemaFile = errors.New("the UI schema was generated; name a file to write with --uischema")

func writeChanges(w io.Writer, before, after editor.State) error {
	list, err := changes(before, after, "json")
	if err != nil {
		return err
	}
	docs := map[string]any{
		"schema":   schemaDocument(after),
		"uischema": uiDocument(after, false),
	}
	for _, c := range list {
		if !c.changed() {
			continue
		}
		if c.path == "" {
			return errNoUISchemaFile
		}
		if err := writeDocumentFile(c.path, docs[c.name]); err != nil {
			return err
		}
		success(w, fmt.Sprintf("Wrote %s", c.path))
	}
	return nil
}
