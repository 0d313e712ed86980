package main

import (
	"fmt"
	"io"

	"github.com/entropic-dev/eos/compact"
	"github.com/spf13/cobra"
)

func newCompactCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compact",
		Short: "fold every loose object into a fresh pack/index pair",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return compactCmd(cmd.OutOrStdout(), cfg)
	}

	return cmd
}

func compactCmd(out io.Writer, cfg *globalFlags) error {
	c, err := loadConfig(cfg)
	if err != nil {
		return err
	}

	result, err := compact.Run(c.PackRoot())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "wrote %s (%d objects)\n", result.PackPath, result.Count)
	return nil
}
