package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

func registerClear(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "clear <from>",
		Short: "Discard any persisted in-flight record for an account without driving it to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := loadWiring(cmd)
			if err != nil {
				return err
			}

			from := common.HexToAddress(args[0])
			if err := w.store.Clear(context.Background(), from); err != nil {
				return err
			}
			fmt.Println("cleared")
			return nil
		},
	}
	root.AddCommand(cmd)
}
