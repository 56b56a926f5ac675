package main

import (
	"github.com/spf13/cobra"

	"github.com/squashedelephant/connectors"
)

func (a *app) searchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Manage documents in the search engine",
	}

	var settings, mappings string
	add := &cobra.Command{
		Use:   "add <index> <doc-type> <doc-id> <json-document>",
		Short: "Create a document, creating the index if needed",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := parseRecord("document", args[3])
			if err != nil {
				return err
			}
			s, err := parseRecord("settings", settings)
			if err != nil {
				return err
			}
			m, err := parseRecord("mappings", mappings)
			if err != nil {
				return err
			}
			conn, err := a.searchConnector()
			if err != nil {
				return err
			}

			return a.print(conn.AddDocument(cmd.Context(), args[0], args[1], args[2], s, m, doc))
		},
	}
	add.Flags().StringVar(&settings, "settings", "", "Index settings as JSON, used when the index is created")
	add.Flags().StringVar(&mappings, "mappings", "", "Index mappings as JSON, used when the index is created")

	update := &cobra.Command{
		Use:   "update <index> <doc-type> <doc-id> <json-fields>",
		Short: "Apply a partial update to a document",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseRecord("fields", args[3])
			if err != nil {
				return err
			}
			conn, err := a.searchConnector()
			if err != nil {
				return err
			}

			return a.print(conn.UpdateDocument(cmd.Context(), args[0], args[1], args[2], fields))
		},
	}

	cmd.AddCommand(
		add,
		update,
		a.searchQuery("find", "Run a query expected to match one document", false),
		a.searchQuery("query", "Run a query matching any number of documents", true),
		&cobra.Command{
			Use:   "drop <index>",
			Short: "Delete an index",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				conn, err := a.searchConnector()
				if err != nil {
					return err
				}

				return a.print(conn.DropIndex(cmd.Context(), args[0]))
			},
		},
	)

	return cmd
}

func (a *app) searchQuery(use, short string, many bool) *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   use + " <index> <doc-type> <json-dsl>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			dsl, err := parseRecord("dsl", args[2])
			if err != nil {
				return err
			}
			conn, err := a.searchConnector()
			if err != nil {
				return err
			}

			if many {
				return a.print(conn.SearchDocuments(cmd.Context(), args[0], args[1], dsl, fields))
			}

			return a.print(conn.FindDocument(cmd.Context(), args[0], args[1], dsl, fields))
		},
	}
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "Source fields to return")

	return cmd
}

func (a *app) searchConnector() (*connectors.SearchIndexConnector, error) {
	cfg, err := a.fileConfig()
	if err != nil {
		return nil, err
	}

	return connectors.NewSearchIndexConnector(cfg.Search, a.options()...)
}
