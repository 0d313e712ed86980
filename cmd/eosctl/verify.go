package main

import (
	"fmt"
	"io"

	"github.com/entropic-dev/eos/envelope"
	"github.com/entropic-dev/eos/event"
	"github.com/entropic-dev/eos/keys"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newVerifyCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify ADDRESS",
		Short: "verify the signature on the event stored at ADDRESS",
		Args:  cobra.ExactArgs(1),
	}

	pubKeyPath := cmd.Flags().String("pubkey", "", "path to the raw Ed25519 public key (required)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return verifyCmd(cmd.OutOrStdout(), cfg, args[0], *pubKeyPath)
	}

	return cmd
}

func verifyCmd(out io.Writer, cfg *globalFlags, addrHex, pubKeyPath string) error {
	if pubKeyPath == "" {
		return xerrors.New("eosctl: --pubkey is required")
	}

	addr, err := parseAddress(addrHex)
	if err != nil {
		return err
	}

	pub, err := keys.LoadPublicKey(pubKeyPath)
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
	if env.Tag() != envelope.TagEvent {
		return xerrors.Errorf("eosctl: %s is not an event", addrHex)
	}

	ev, err := event.Parse(env.Payload())
	if err != nil {
		return err
	}

	ok, err := ev.Verify(pub)
	if err != nil {
		return err
	}

	if ok {
		fmt.Fprintln(out, "ok")
		return nil
	}
	fmt.Fprintln(out, "signature invalid")
	return xerrors.New("eosctl: signature invalid")
}
