package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/AreaLayer/gdk/internal/config"
	"github.com/AreaLayer/gdk/pkg/psbt"
	"github.com/AreaLayer/gdk/pkg/signer"
)

func main() {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "gdk"
	app.Usage = "Command line interface for the wallet signing core"
	app.Before = func(ctx *cli.Context) error {
		return config.InitConfig()
	}
	app.Commands = append(
		app.Commands,
		&decode,
		&xpub,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

var decode = cli.Command{
	Name:      "decode",
	Usage:     "decode a base64 PSBT/PSET and print a summary of it",
	ArgsUsage: "<base64>",
	Action:    decodeAction,
}

func decodeAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("usage: gdk decode <base64>")
	}
	p, err := psbt.Parse(ctx.Args().First(), config.IsLiquid())
	if err != nil {
		return err
	}
	tx, err := p.Extract()
	if err != nil {
		return err
	}
	txHex, err := tx.ToHex()
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"txhash":            tx.TxHash(),
		"transaction":       txHex,
		"transaction_vsize": tx.VirtualSize(),
		"is_liquid":         p.IsLiquid(),
		"original_version":  p.OriginalVersion(),
		"num_inputs":        p.NumInputs(),
		"num_outputs":       p.NumOutputs(),
	})
}

var xpub = cli.Command{
	Name:  "xpub",
	Usage: "derive a bip32 xpub from a mnemonic or hex seed",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "mnemonic",
			Usage:    "bip39 mnemonic, or a hex seed with the trailing marker",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "passphrase",
			Usage: "optional bip39 passphrase",
		},
		&cli.StringFlag{
			Name:  "path",
			Value: "m",
			Usage: "derivation path, ie. m/44'/1'/0'",
		},
		&cli.BoolFlag{
			Name:  "show-blinding-key",
			Usage: "also print the slip77 master blinding key (Liquid only)",
		},
	},
	Action: xpubAction,
}

func xpubAction(ctx *cli.Context) error {
	credentials, err := signer.NewCredentials(signer.CredentialsOpts{
		Mnemonic:        ctx.String("mnemonic"),
		Bip39Passphrase: ctx.String("passphrase"),
	})
	if err != nil {
		return err
	}
	s, err := signer.New(credentials, nil, signer.NetworkParams{
		Mainnet: config.IsMainnet(),
		Liquid:  config.IsLiquid(),
	})
	if err != nil {
		return err
	}
	defer s.Destroy()

	path, err := signer.ParseDerivationPath(ctx.String("path"))
	if err != nil {
		return err
	}
	derived, err := s.GetBip32Xpub(path)
	if err != nil {
		return err
	}

	result := map[string]interface{}{
		"path": path.String(),
		"xpub": derived,
	}
	if ctx.Bool("show-blinding-key") && s.HasMasterBlindingKey() {
		blindingKey, err := s.GetMasterBlindingKey()
		if err != nil {
			return err
		}
		result["master_blinding_key"] = blindingKey
	}
	return printJSON(result)
}

func printJSON(v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[gdk] %v\n", err)
	os.Exit(1)
}
