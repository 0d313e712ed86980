package main

import (
	"fmt"
	"io"

	"github.com/entropic-dev/eos/event"
	"github.com/spf13/cobra"
)

func newLogCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log ADDRESS",
		Short: "walk the event DAG rooted at ADDRESS, newest first",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return logCmd(cmd.OutOrStdout(), cfg, args[0])
	}

	return cmd
}

func logCmd(out io.Writer, cfg *globalFlags, addrHex string) error {
	addr, err := parseAddress(addrHex)
	if err != nil {
		return err
	}

	c, err := loadConfig(cfg)
	if err != nil {
		return err
	}

	reader, packs, err := openReader(c)
	if err != nil {
		return err
	}
	defer closePacks(packs)

	it, err := event.NewIterator(reader, addr)
	if err != nil {
		return err
	}

	for {
		a, ev, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		fmt.Fprintf(out, "%s at=%s signatory=%s claimset=%#02x\n",
			a.String(), ev.At().Format("2006-01-02T15:04:05Z07:00"), ev.Signatory(), ev.Claimset())
	}
}
