package main

import (
	"github.com/entropic-dev/eos/env"
	"github.com/spf13/cobra"
)

// globalFlags carries the flags every subcommand can see, mirroring
// the teacher's -C-style override of the working store.
type globalFlags struct {
	store string
	env   *env.Env
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "eosctl",
		Short:         "content-addressed object store for package-registry events",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cfg := &globalFlags{env: env.FromOS()}
	cmd.PersistentFlags().StringVarP(&cfg.store, "store", "C", "",
		"Path to the store root. Defaults to $EOS_STORE_ROOT, then ./.eos.")

	cmd.AddCommand(newInitCmd(cfg))
	cmd.AddCommand(newAddCmd(cfg))
	cmd.AddCommand(newCatCmd(cfg))
	cmd.AddCommand(newCompactCmd(cfg))
	cmd.AddCommand(newSignCmd(cfg))
	cmd.AddCommand(newVerifyCmd(cfg))
	cmd.AddCommand(newLogCmd(cfg))

	return cmd
}
