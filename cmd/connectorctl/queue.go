package main

import (
	"github.com/spf13/cobra"

	"github.com/squashedelephant/connectors"
)

func (a *app) queueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Send and receive queue items",
	}

	var metadata string
	insert := &cobra.Command{
		Use:   "insert <queue> <body>",
		Short: "Send one item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := parseRecord("metadata", metadata)
			if err != nil {
				return err
			}
			conn, err := a.queueConnector()
			if err != nil {
				return err
			}

			item := map[string]any{
				connectors.ItemBody:     args[1],
				connectors.ItemMetadata: meta,
			}

			return a.print(conn.Insert(cmd.Context(), args[0], item))
		},
	}
	insert.Flags().StringVar(&metadata, "metadata", "", "Item metadata as a JSON object")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <queue>",
			Short: "Create a queue; an existing queue is not an error",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				conn, err := a.queueConnector()
				if err != nil {
					return err
				}

				return a.print(conn.CreateQueue(cmd.Context(), args[0]))
			},
		},
		insert,
		&cobra.Command{
			Use:   "get <queue>",
			Short: "Receive and acknowledge at most one item",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				conn, err := a.queueConnector()
				if err != nil {
					return err
				}

				return a.print(conn.Get(cmd.Context(), args[0]))
			},
		},
	)

	return cmd
}

func (a *app) queueConnector() (*connectors.QueueConnector, error) {
	cfg, err := a.fileConfig()
	if err != nil {
		return nil, err
	}

	return connectors.NewQueueConnector(cfg.Queue, a.options()...)
}
