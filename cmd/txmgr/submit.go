package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/cartesi/tx-manager/internal/chain"
	"github.com/cartesi/tx-manager/internal/manager"
)

func registerSubmit(root *cobra.Command) {
	var toFlag, valueFlag, priorityFlag string
	var confirmations uint64

	cmd := &cobra.Command{
		Use:   "submit <from>",
		Short: "Submit a transaction and block until it is confirmed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := loadWiring(cmd)
			if err != nil {
				return err
			}

			from := common.HexToAddress(args[0])
			priority, err := priorityFromFlag(priorityFlag)
			if err != nil {
				return err
			}

			value, ok := new(big.Int).SetString(valueFlag, 10)
			if !ok {
				return fmt.Errorf("invalid --value %q", valueFlag)
			}

			var to *common.Address
			if toFlag != "" {
				addr := common.HexToAddress(toFlag)
				to = &addr
			}

			m, recovered, err := manager.New(context.Background(), w.managerCfg, w.chainAdapter, w.oracle, w.store, w.classifier, w.desc, from)
			if err != nil {
				return err
			}
			if recovered != nil {
				fmt.Printf("recovered prior submission, mined in block %d\n", recovered.BlockNumber.Uint64())
				return nil
			}

			receipt, err := m.Submit(context.Background(), chain.Request{From: from, To: to, Value: value}, confirmations, priority)
			if err != nil {
				return err
			}
			fmt.Printf("confirmed: tx=%s block=%d status=%d\n", receipt.TxHash.Hex(), receipt.BlockNumber.Uint64(), receipt.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&toFlag, "to", "", "recipient address (omit for contract creation)")
	cmd.Flags().StringVar(&valueFlag, "value", "0", "value to send, in wei")
	cmd.Flags().StringVar(&priorityFlag, "priority", "normal", "lowest|low|normal|high|highest")
	cmd.Flags().Uint64Var(&confirmations, "confirmations", 1, "confirmation depth to wait for")

	root.AddCommand(cmd)
}

func priorityFromFlag(s string) (chain.Priority, error) {
	switch s {
	case "lowest":
		return chain.Lowest, nil
	case "low":
		return chain.Low, nil
	case "normal":
		return chain.Normal, nil
	case "high":
		return chain.High, nil
	case "highest":
		return chain.Highest, nil
	default:
		return chain.Normal, fmt.Errorf("unknown priority %q", s)
	}
}
