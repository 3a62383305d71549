package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	ctl := newApp()

	if err := ctl.Run(os.Args); err != nil {
		fmt.Fprintln(ctl.ErrWriter, err)
		os.Exit(1)
	}
}

// newApp creates the mpt instance of [cli.App] with all commands included.
func newApp() *cli.App {
	return &cli.App{
		Name:      "mpt",
		Usage:     "Inspect and modify Merkle Patricia Tries kept in a local store",
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file (in-memory store if omitted)",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Value:   "default",
				Usage:   "name of the trie root to operate on",
			},
			&cli.BoolFlag{
				Name:  "hex",
				Usage: "keys and values are hex encoded instead of UTF-8 strings",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "print the value of a key",
				ArgsUsage: "KEY",
				Action:    getValue,
			},
			{
				Name:      "put",
				Usage:     "set the value of a key and save the new root",
				ArgsUsage: "KEY VALUE",
				Action:    putValue,
			},
			{
				Name:      "delete",
				Usage:     "remove a key and save the new root",
				ArgsUsage: "KEY",
				Action:    deleteValue,
			},
			{
				Name:   "root",
				Usage:  "print the saved root hash",
				Action: printRoot,
			},
			{
				Name:      "prove",
				Usage:     "print the Merkle proof of a key, one hex node per line",
				ArgsUsage: "KEY",
				Action:    proveKey,
			},
			{
				Name:      "verify",
				Usage:     "verify a Merkle proof without opening the store",
				ArgsUsage: "ROOT KEY NODE...",
				Action:    verifyProof,
			},
			{
				Name:   "dump",
				Usage:  "print all key value pairs in key order",
				Action: dumpTrie,
			},
		},
	}
}
