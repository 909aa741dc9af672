package oracle

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/cartesi/tx-manager/internal/chain"
	"github.com/cartesi/tx-manager/internal/ethadapter"
	"github.com/sisu-network/lib/log"
)

const (
	// queueSize is the number of recent blocks averaged for the base
	// fee/tip estimate.
	queueSize = 40

	defaultBaseFee  = int64(15_000_000_000) // 15 gwei
	defaultGasPrice = int64(20_000_000_000) // 20 gwei
	defaultTip      = int64(1_000_000_000)  // 1 gwei
)

// priorityMultiplier scales the rolling-average fee by priority tier, the
// same way a fixed-tier gas station (low/average/fast/fastest) would, but
// generalized to this package's five Priority levels.
var priorityMultiplier = map[chain.Priority]int64{
	chain.Lowest:  90,
	chain.Low:     100,
	chain.Normal:  115,
	chain.High:    140,
	chain.Highest: 175,
}

func scale(v *big.Int, priority chain.Priority) *big.Int {
	pct := priorityMultiplier[priority]
	if pct == 0 {
		pct = 100
	}
	scaled := new(big.Int).Mul(v, big.NewInt(pct))
	return scaled.Div(scaled, big.NewInt(100))
}

// Node is the default gas oracle: it derives a fee quote from the chain
// adapter's own view of recent blocks, an "ask the node" fallback for any
// chain that doesn't have a dedicated pricing service in front of it. It is
// the oracle this module wires in when no custom oracle is supplied.
type Node struct {
	chainAdapter ethadapter.Chain

	lock         sync.RWMutex
	baseFeeQueue []*big.Int
	tipQueue     []*big.Int
	queueIndex   int
}

// NewNode constructs a Node oracle over chainAdapter.
func NewNode(chainAdapter ethadapter.Chain) *Node {
	return &Node{chainAdapter: chainAdapter}
}

// Observe records a newly seen block's base fee and priority tip. Callers
// that run a block-watching loop should call this once per block so the
// rolling average tracks the market; it is optional — Quote works without
// it, just with the hardcoded defaults until enough samples accumulate.
func (n *Node) Observe(baseFee, tip *big.Int) {
	n.lock.Lock()
	defer n.lock.Unlock()

	if len(n.baseFeeQueue) < queueSize {
		n.baseFeeQueue = append(n.baseFeeQueue, big.NewInt(0))
		n.tipQueue = append(n.tipQueue, big.NewInt(0))
	}

	next := (n.queueIndex + 1) % len(n.baseFeeQueue)
	n.baseFeeQueue[next] = baseFee
	n.tipQueue[next] = tip
	n.queueIndex = next
}

func average(queue []*big.Int, fallback int64) *big.Int {
	if len(queue) == 0 {
		return big.NewInt(fallback)
	}
	total := new(big.Int)
	for _, v := range queue {
		total.Add(total, v)
	}
	return total.Div(total, big.NewInt(int64(len(queue))))
}

// Quote implements Oracle.
func (n *Node) Quote(ctx context.Context, priority chain.Priority, desc chain.Descriptor) (chain.Quote, error) {
	if desc.IsLegacy {
		gasPrice, err := n.chainAdapter.LegacyGasPrice(ctx)
		if err != nil {
			log.Errorf("oracle: failed to get gas price, falling back to default: %v", err)
			gasPrice = big.NewInt(defaultGasPrice)
		}
		return chain.Quote{GasPrice: scale(gasPrice, priority)}, nil
	}

	n.lock.RLock()
	baseFee := average(n.baseFeeQueue, defaultBaseFee)
	tip := average(n.tipQueue, defaultTip)
	n.lock.RUnlock()

	scaledTip := scale(tip, priority)
	maxFee := new(big.Int).Add(baseFee, scaledTip)
	maxFee = scale(maxFee, priority)

	return chain.Quote{MaxFee: maxFee, MaxPriorityFee: scaledTip}, nil
}

// UpdateInterval is exposed for callers that want to poll legacy gas price
// periodically rather than per-block.
var UpdateInterval = time.Second * 60
