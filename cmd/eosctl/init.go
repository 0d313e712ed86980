package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newInitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "create a new, empty store",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return initCmd(cmd.OutOrStdout(), cfg)
	}

	return cmd
}

func initCmd(out io.Writer, cfg *globalFlags) error {
	c, err := loadConfig(cfg)
	if err != nil {
		return err
	}

	if err := ensureStoreDirs(c.StoreRoot); err != nil {
		return err
	}

	fmt.Fprintf(out, "initialized empty store in %s\n", c.StoreRoot)
	return nil
}
