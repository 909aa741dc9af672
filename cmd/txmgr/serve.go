package main

import (
	"github.com/spf13/cobra"

	"github.com/cartesi/tx-manager/pkg/txmgrrpc"
)

func registerServe(root *cobra.Command) {
	var listenAddress string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the submission state machine over JSON-RPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := loadWiring(cmd)
			if err != nil {
				return err
			}

			handler := txmgrrpc.NewHandler(w.chainAdapter, w.oracle, w.store, w.classifier, w.desc, w.managerCfg)
			server, err := txmgrrpc.NewServer(handler, listenAddress)
			if err != nil {
				return err
			}
			return server.Run()
		},
	}

	cmd.Flags().StringVar(&listenAddress, "listen", "0.0.0.0:8645", "address to serve JSON-RPC on")
	root.AddCommand(cmd)
}
