package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cartesi/tx-manager/internal/config"
)

func registerInitConfig(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "init-config <path>",
		Short: "Write a starting config.toml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err == nil {
				return fmt.Errorf("%s already exists", args[0])
			}
			return os.WriteFile(args[0], []byte(config.Template), 0o644)
		},
	}
	root.AddCommand(cmd)
}
