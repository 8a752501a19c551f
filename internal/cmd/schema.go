package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hellosign/hellosign-cli/internal/iocontext"
	"github.com/hellosign/hellosign-cli/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schema",
		Aliases: []string{"sc"},
		Short:   "Describe the JSON shape of HelloSign resources",
		Long:    "List and show the fields of HelloSign resources as printed with -o json, for writing --jq filters.",
		Example: strings.TrimSpace(`
  hs schema list
  hs schema show signature_request
  hs schema show reusable_form -o json
`),
	}

	cmd.AddCommand(newSchemaListCmd())
	cmd.AddCommand(newSchemaShowCmd())

	return cmd
}

func newSchemaListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List resources with a schema",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			names := schema.List()

			if isJSON(cmd) {
				type schemaSummary struct {
					Name        string `json:"name"`
					Description string `json:"description"`
				}
				summaries := make([]schemaSummary, 0, len(names))
				for _, name := range names {
					s, _ := schema.Get(name)
					summaries = append(summaries, schemaSummary{Name: name, Description: s.Description})
				}
				return printJSON(cmd, summaries)
			}

			f := newFormatter(cmd)
			f.StartTable([]string{"RESOURCE", "DESCRIPTION"})
			for _, name := range names {
				s, _ := schema.Get(name)
				desc := s.Description
				if len(desc) > 60 {
					desc = desc[:57] + "..."
				}
				f.Row(name, desc)
			}
			return f.EndTable()
		}),
	}
}

func newSchemaShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <resource>",
		Short: "Show the fields of a resource",
		Long:  "Show every field of a resource. Nested fields are listed with jq-style paths such as signatures[].status_code.",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			s, err := schema.Get(name)
			if err != nil {
				return fmt.Errorf("schema %q not found; available: %s", name, strings.Join(schema.List(), ", "))
			}

			if isJSON(cmd) {
				return printJSON(cmd, s)
			}
			printSchemaText(iocontext.GetIO(cmd.Context()).Out, name, s)
			return nil
		}),
	}
}

func printSchemaText(out io.Writer, name string, s *schema.Schema) {
	_, _ = fmt.Fprintf(out, "Schema: %s\n", name)
	if s.Description != "" {
		_, _ = fmt.Fprintf(out, "Description: %s\n", s.Description)
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Fields:")
	for _, field := range schema.Fields(s) {
		printField(out, field)
	}
}

func printField(out io.Writer, field schema.Field) {
	reqMarker := ""
	if field.Required {
		reqMarker = " (required)"
	}
	_, _ = fmt.Fprintf(out, "  %s: %s%s\n", field.Path, field.Type, reqMarker)
	if field.Schema.Description != "" {
		_, _ = fmt.Fprintf(out, "    %s\n", field.Schema.Description)
	}
	if len(field.Schema.Enum) > 0 {
		_, _ = fmt.Fprintf(out, "    Allowed values: %s\n", strings.Join(field.Schema.Enum, ", "))
	}
}
