package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cartesi/tx-manager/internal/chain"
	"github.com/cartesi/tx-manager/internal/classifier"
	"github.com/cartesi/tx-manager/internal/config"
	"github.com/cartesi/tx-manager/internal/ethadapter"
	"github.com/cartesi/tx-manager/internal/manager"
	"github.com/cartesi/tx-manager/internal/oracle"
	"github.com/cartesi/tx-manager/internal/store"
	"github.com/cartesi/tx-manager/internal/store/filestore"
	"github.com/cartesi/tx-manager/internal/store/sqlstore"
)

type wiring struct {
	cfg          *config.Config
	chainAdapter ethadapter.Chain
	oracle       oracle.Oracle
	store        store.Store
	classifier   classifier.Classifier
	desc         chain.Descriptor
	managerCfg   manager.Config
}

func loadWiring(cmd *cobra.Command) (*wiring, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	chainAdapter, err := ethadapter.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RpcUrl, err)
	}

	var st store.Store
	switch cfg.Store {
	case config.StoreFile:
		st = filestore.New(cfg.FileStoreDir)
	case config.StoreSQL:
		st, err = sqlstore.Connect(cfg.DbUsername, cfg.DbPassword, cfg.DbHost, cfg.DbPort, cfg.DbSchema)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}

	var gasOracle oracle.Oracle
	if cfg.GasStationURL != "" {
		gasOracle = oracle.NewHTTPStation(cfg.GasStationURL, cfg.GasStationAPIKey, nil)
	} else {
		gasOracle = oracle.NewNode(chainAdapter)
	}

	return &wiring{
		cfg:          cfg,
		chainAdapter: chainAdapter,
		oracle:       gasOracle,
		store:        st,
		classifier:   classifier.Default{},
		desc:         chain.Descriptor{ChainID: cfg.ChainID, IsLegacy: cfg.IsLegacy},
		managerCfg: manager.Config{
			PollInterval:             time.Duration(cfg.PollIntervalSeconds) * time.Second,
			TransactionMiningTimeout: time.Duration(cfg.TransactionMiningTimeoutSeconds) * time.Second,
			BlockTime:                time.Duration(cfg.BlockTimeSeconds) * time.Second,
			MinBumpFactorPct:         cfg.MinBumpFactorPct,
		},
	}, nil
}
