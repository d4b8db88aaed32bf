package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/container-harness/harness"
)

var errNoDocker = errors.New("docker is not available")

func probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Exit non-zero unless a Docker daemon is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, probe, err := harness.LoadConfig(configPath)
			if err != nil {
				return err
			}
			ok, err := probe.Available(cmd.Context())
			if err != nil {
				return fmt.Errorf("probe: %w", err)
			}
			if !ok {
				return errNoDocker
			}
			fmt.Fprintln(cmd.OutOrStdout(), "docker is available")
			return nil
		},
	}
}
