package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/cartesi/tx-manager/internal/manager"
)

func registerRecover(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "recover <from>",
		Short: "Drive any in-flight submission for an account to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := loadWiring(cmd)
			if err != nil {
				return err
			}

			from := common.HexToAddress(args[0])
			_, receipt, err := manager.New(context.Background(), w.managerCfg, w.chainAdapter, w.oracle, w.store, w.classifier, w.desc, from)
			if err != nil {
				return err
			}
			if receipt == nil {
				fmt.Println("no in-flight submission found")
				return nil
			}
			fmt.Printf("recovered: tx=%s block=%d\n", receipt.TxHash.Hex(), receipt.BlockNumber.Uint64())
			return nil
		},
	}
	root.AddCommand(cmd)
}
