package main

import (
	"fmt"
	"io"
	"os"

	"github.com/entropic-dev/eos/envelope"
	"github.com/spf13/cobra"
)

func newAddCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add FILE",
		Short: "store FILE as a loose blob and print its content address",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return addCmd(cmd.OutOrStdout(), cfg, args[0])
	}

	return cmd
}

func addCmd(out io.Writer, cfg *globalFlags, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c, err := loadConfig(cfg)
	if err != nil {
		return err
	}

	env := envelope.New(envelope.TagBlob, content)
	if _, err := openLoose(c).Add(env); err != nil {
		return err
	}

	fmt.Fprintln(out, env.Address().String())
	return nil
}
