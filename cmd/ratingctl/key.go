package main

import (
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/crypto"
	"github.com/tos-network/ratingd/crypto/ed25519"
	"github.com/urfave/cli/v2"
)

type outputKey struct {
	Address    common.Address `json:"address"`
	PublicKey  string         `json:"publicKey,omitempty"`
	PrivateKey string         `json:"privateKey,omitempty"`
	Mnemonic   string         `json:"mnemonic,omitempty"`
}

var (
	privateFlag = &cli.BoolFlag{
		Name:  "private",
		Usage: "include the private key in the output",
	}
	seedFlag = &cli.StringFlag{
		Name:  "seed",
		Usage: "hex encoded 32 byte seed to store instead of a random one",
	}
	mnemonicGenerateFlag = &cli.BoolFlag{
		Name:  "mnemonic-generate",
		Usage: "generate a BIP39 mnemonic and derive the key from it",
	}
	mnemonicFlag = &cli.StringFlag{
		Name:  "mnemonic",
		Usage: "derive the key from an existing BIP39 mnemonic",
	}
	mnemonicPassphraseFlag = &cli.StringFlag{
		Name:  "mnemonic-passphrase",
		Usage: "optional BIP39 passphrase for mnemonic-to-seed",
	}
	mnemonicBitsFlag = &cli.IntFlag{
		Name:  "mnemonic-bits",
		Usage: "entropy bits for a generated mnemonic (128,160,192,224,256)",
		Value: defaultMnemonicBits,
	}
)

var commandKey = &cli.Command{
	Name:  "key",
	Usage: "manage wallet keyfiles",
	Subcommands: []*cli.Command{
		{
			Name:      "generate",
			Usage:     "generate new keyfile",
			ArgsUsage: "[ <keyfile> ]",
			Description: `
Generate a new keyfile holding a hex encoded ed25519 seed.

An existing seed can be stored by setting --seed, or the key can be derived
from a BIP39 mnemonic with --mnemonic or --mnemonic-generate.`,
			Flags:  []cli.Flag{seedFlag, mnemonicGenerateFlag, mnemonicFlag, mnemonicPassphraseFlag, mnemonicBitsFlag},
			Action: generateKey,
		},
		{
			Name:      "inspect",
			Usage:     "inspect a keyfile",
			ArgsUsage: "[ <keyfile> ]",
			Description: `
Print the address and public key of the keyfile.

Private key information can be printed by using the --private flag;
make sure to use this feature with great caution!`,
			Flags:  []cli.Flag{privateFlag},
			Action: inspectKey,
		},
	},
}

func generateKey(ctx *cli.Context) error {
	// Check if keyfile path given and make sure it doesn't already exist.
	keyfilepath := ctx.Args().First()
	if keyfilepath == "" {
		keyfilepath = defaultKeyfileName
	}
	if _, err := os.Stat(keyfilepath); err == nil {
		return fmt.Errorf("keyfile already exists at %s", keyfilepath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error checking if keyfile exists: %v", err)
	}

	var (
		key          ed25519.PrivateKey
		err          error
		generated    string
		mnemonic     = strings.TrimSpace(ctx.String(mnemonicFlag.Name))
		mnemonicMode = mnemonic != "" || ctx.Bool(mnemonicGenerateFlag.Name)
	)
	switch {
	case mnemonicMode && ctx.String(seedFlag.Name) != "":
		return errors.New("can't use --seed with mnemonic flags")
	case mnemonicMode:
		if mnemonic == "" {
			if mnemonic, err = generateMnemonic(ctx.Int(mnemonicBitsFlag.Name)); err != nil {
				return fmt.Errorf("failed to generate mnemonic: %v", err)
			}
			generated = mnemonic
		}
		key, err = keyFromMnemonic(mnemonic, ctx.String(mnemonicPassphraseFlag.Name))
	case ctx.String(seedFlag.Name) != "":
		key, err = crypto.HexToKey(ctx.String(seedFlag.Name))
	default:
		key, err = crypto.GenerateKey(crand.Reader)
	}
	if err != nil {
		return fmt.Errorf("failed to create key: %v", err)
	}
	if err := os.WriteFile(keyfilepath, []byte(hex.EncodeToString(key.Seed())+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write keyfile to %s: %v", keyfilepath, err)
	}

	out := outputKey{Address: crypto.PubkeyToAddress(key), Mnemonic: generated}
	if ctx.Bool(jsonFlag.Name) {
		return printJSON(ctx, out)
	}
	fmt.Fprintln(ctx.App.Writer, "Address: ", out.Address)
	if generated != "" {
		fmt.Fprintln(ctx.App.Writer, "Mnemonic:", generated)
	}
	return nil
}

func inspectKey(ctx *cli.Context) error {
	keyfilepath := ctx.Args().First()
	if keyfilepath == "" {
		keyfilepath = defaultKeyfileName
	}
	key, err := loadKey(keyfilepath)
	if err != nil {
		return err
	}
	out := outputKey{
		Address:   crypto.PubkeyToAddress(key),
		PublicKey: hex.EncodeToString(ed25519.PublicFromPrivate(key)),
	}
	showPrivate := ctx.Bool(privateFlag.Name)
	if showPrivate {
		out.PrivateKey = hex.EncodeToString(key.Seed())
	}
	if ctx.Bool(jsonFlag.Name) {
		return printJSON(ctx, out)
	}
	fmt.Fprintln(ctx.App.Writer, "Address:       ", out.Address)
	fmt.Fprintln(ctx.App.Writer, "Public key:    ", out.PublicKey)
	if showPrivate {
		fmt.Fprintln(ctx.App.Writer, "Private key:   ", out.PrivateKey)
	}
	return nil
}

// loadKey reads a keyfile written by "key generate".
func loadKey(path string) (ed25519.PrivateKey, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the keyfile at '%s': %v", path, err)
	}
	key, err := crypto.HexToKey(strings.TrimSpace(string(blob)))
	if err != nil {
		return nil, fmt.Errorf("invalid keyfile '%s': %v", path, err)
	}
	return key, nil
}
