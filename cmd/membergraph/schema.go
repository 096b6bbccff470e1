package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/hanpama/membergraph/internal/resolver"
	"github.com/hanpama/membergraph/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	var annotate, canonical bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the GraphQL schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, sch, err := resolver.LoadSchema()
			if err != nil {
				return err
			}
			if canonical {
				var buf bytes.Buffer
				formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatSchema(doc)
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), schema.Render(sch, annotate))
			return err
		},
	}
	cmd.Flags().BoolVar(&annotate, "annotate", false, "Mark batched fields with an # async comment")
	cmd.Flags().BoolVar(&canonical, "canonical", false, "Print the schema as normalized by the GraphQL parser")
	return cmd
}
