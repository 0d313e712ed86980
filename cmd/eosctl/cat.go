package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/entropic-dev/eos/envelope"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newCatCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat ADDRESS",
		Short: "print the payload stored at ADDRESS",
		Args:  cobra.ExactArgs(1),
	}

	typeOnly := cmd.Flags().BoolP("t", "t", false, "print the object's tag instead of its payload")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return catCmd(cmd.OutOrStdout(), cfg, args[0], *typeOnly)
	}

	return cmd
}

func parseAddress(s string) (envelope.Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return envelope.Address{}, xerrors.Errorf("eosctl: %s is not valid hex: %w", s, err)
	}
	return envelope.NewAddressFromBytes(b)
}

func catCmd(out io.Writer, cfg *globalFlags, addrHex string, typeOnly bool) error {
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

	env, found, err := reader.Get(addr)
	if err != nil {
		return err
	}
	if !found {
		return xerrors.Errorf("eosctl: no object at %s", addrHex)
	}

	if typeOnly {
		fmt.Fprintln(out, env.Tag().String())
		return nil
	}

	_, err = out.Write(env.Payload())
	return err
}
