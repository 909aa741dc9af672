// Command txmgr is the CLI front-end over the submission state machine:
// a thin operational wrapper, not part of the library's own public API.
// Each subcommand registers itself against the root command through its
// own registerXxx function, keeping main.go itself a plain dispatch list.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "txmgr",
	Short: "Crash-safe Ethereum transaction submission",
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.toml", "path to the TOML config file")
	for _, register := range []func(*cobra.Command){
		registerSubmit,
		registerRecover,
		registerClear,
		registerServe,
		registerInitConfig,
	} {
		register(rootCmd)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
