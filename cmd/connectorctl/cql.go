package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/squashedelephant/connectors"
	"github.com/squashedelephant/connectors/types"
)

func (a *app) cqlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cql",
		Short: "Execute statements against the wide-column store",
		Long: `Execute statements against the wide-column store.

Bound values are passed as strings after the statement.`,
	}

	cmd.AddCommand(
		a.cqlRun("write", "Execute a mutation", (*connectors.WideColumnConnector).Write),
		a.cqlRun("read", "Execute a query and print every row", (*connectors.WideColumnConnector).Read),
	)

	return cmd
}

type cqlOperation func(c *connectors.WideColumnConnector, ctx context.Context, stmt string, values ...any) types.Envelope

func (a *app) cqlRun(use, short string, op cqlOperation) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <statement> [values...]",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.fileConfig()
			if err != nil {
				return err
			}
			conn, err := connectors.NewWideColumnConnector(cfg.CQL, a.options()...)
			if err != nil {
				return err
			}

			values := make([]any, 0, len(args)-1)
			for _, v := range args[1:] {
				values = append(values, v)
			}

			return a.print(op(conn, cmd.Context(), args[0], values...))
		},
	}
}
