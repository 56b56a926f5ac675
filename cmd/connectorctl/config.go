package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/squashedelephant/connectors"
)

const redacted = "****"

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect connector configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Print a configuration file holding every default",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.printYAML(connectors.DefaultFileConfig())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := a.fileConfig()
			if err != nil {
				return err
			}
			if cfg.Search.Password != "" {
				cfg.Search.Password = redacted
			}
			if cfg.Queue.SecretAccessKey != "" {
				cfg.Queue.SecretAccessKey = redacted
			}
			if cfg.Queue.SessionToken != "" {
				cfg.Queue.SessionToken = redacted
			}

			return a.printYAML(cfg)
		},
	})

	return cmd
}

func (a *app) printYAML(cfg connectors.FileConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = a.out.Write(data)

	return err
}
