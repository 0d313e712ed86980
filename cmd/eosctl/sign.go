package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/entropic-dev/eos/config"
	"github.com/entropic-dev/eos/envelope"
	"github.com/entropic-dev/eos/event"
	"github.com/entropic-dev/eos/keys"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newSignCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "build, sign, and store an event",
		Args:  cobra.NoArgs,
	}

	signatory := cmd.Flags().String("signatory", "", "the signing authority's name (required)")
	keyPath := cmd.Flags().String("key", "", "path to the raw Ed25519 secret key (required)")
	authorityFile := cmd.Flags().String("authority-file", "", "optional INI file bootstrapping the allowed signatories")
	parents := cmd.Flags().StringArray("parent", nil, "hex address of a parent event (repeatable)")
	claims := cmd.Flags().StringArray("claim", nil, "claim spec: kind:field:field... (repeatable, see docs)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return signCmd(cmd.OutOrStdout(), cfg, signOpts{
			signatory:     *signatory,
			keyPath:       *keyPath,
			authorityFile: *authorityFile,
			parents:       *parents,
			claims:        *claims,
		})
	}

	return cmd
}

type signOpts struct {
	signatory     string
	keyPath       string
	authorityFile string
	parents       []string
	claims        []string
}

func signCmd(out io.Writer, cfg *globalFlags, opts signOpts) error {
	if opts.signatory == "" || opts.keyPath == "" {
		return xerrors.New("eosctl: --signatory and --key are required")
	}

	sk, err := keys.LoadSecretKey(opts.keyPath)
	if err != nil {
		return err
	}

	b := event.NewBuilder()

	for _, p := range opts.parents {
		addr, err := parseAddress(p)
		if err != nil {
			return err
		}
		b.Parent(event.ParentAddress(addr))
	}

	for _, spec := range opts.claims {
		c, err := parseClaim(spec)
		if err != nil {
			return err
		}
		b.Claim(c)
	}

	c, err := config.Load(cfg.env, config.LoadOptions{
		StoreRoot:     cfg.store,
		AuthorityFile: opts.authorityFile,
	})
	if err != nil {
		return err
	}

	authorities, err := c.LoadAuthoritySet()
	if err != nil {
		return err
	}

	ev, err := b.Sign(opts.signatory, sk, authorities)
	if err != nil {
		return err
	}

	payload, err := ev.MarshalBinary()
	if err != nil {
		return err
	}

	env := envelope.New(envelope.TagEvent, payload)
	if _, err := openLoose(c).Add(env); err != nil {
		return err
	}

	fmt.Fprintln(out, env.Address().String())
	return nil
}

// parseClaim parses a claim spec of the form "kind:field:field...".
// The set of kinds mirrors event.Claim's closed set.
func parseClaim(spec string) (event.Claim, error) {
	parts := strings.Split(spec, ":")
	kind := parts[0]
	args := parts[1:]

	switch kind {
	case "authority-add":
		if len(args) != 2 {
			return nil, xerrors.Errorf("eosctl: authority-add wants name:publicKey, got %q", spec)
		}
		return event.AuthorityAdd{Name: args[0], PublicKey: args[1]}, nil
	case "authority-remove":
		if len(args) != 1 {
			return nil, xerrors.Errorf("eosctl: authority-remove wants name, got %q", spec)
		}
		return event.AuthorityRemove{Name: args[0]}, nil
	case "yank":
		if len(args) != 2 {
			return nil, xerrors.Errorf("eosctl: yank wants version:reason, got %q", spec)
		}
		return event.Yank{Version: args[0], Reason: args[1]}, nil
	case "unyank":
		if len(args) != 1 {
			return nil, xerrors.Errorf("eosctl: unyank wants version, got %q", spec)
		}
		return event.Unyank{Version: args[0]}, nil
	case "tag":
		if len(args) != 2 {
			return nil, xerrors.Errorf("eosctl: tag wants version:tagName, got %q", spec)
		}
		return event.TagClaim{Version: args[0], TagName: args[1]}, nil
	case "publication":
		if len(args) != 2 {
			return nil, xerrors.Errorf("eosctl: publication wants version:idHex, got %q", spec)
		}
		idBytes, err := hex.DecodeString(args[1])
		if err != nil || len(idBytes) != 32 {
			return nil, xerrors.Errorf("eosctl: publication id must be 32 hex bytes, got %q", args[1])
		}
		var id [32]byte
		copy(id[:], idBytes)
		return event.Publication{Version: args[0], ID: id}, nil
	case "other":
		if len(args) != 2 {
			return nil, xerrors.Errorf("eosctl: other wants typeno:data, got %q", spec)
		}
		typeNo, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return nil, xerrors.Errorf("eosctl: invalid typeno %q: %w", args[0], err)
		}
		return event.Other{TypeNo: typeNo, Data: []byte(args[1])}, nil
	default:
		return nil, xerrors.Errorf("eosctl: unknown claim kind %q", kind)
	}
}
