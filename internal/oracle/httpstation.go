package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/cartesi/tx-manager/internal/chain"
	"github.com/cartesi/tx-manager/network"
)

// gweiToWei converts the gwei-denominated fields of stationResponse to wei.
var gweiToWei = new(big.Int).Exp(big.NewInt(10), big.NewInt(9), nil)

// stationResponse is the subset of the ETH Gas Station API response this
// oracle understands.
type stationResponse struct {
	Fastest uint64 `json:"fastest"`
	Fast    uint64 `json:"fast"`
	Average uint64 `json:"average"`
	Low     uint64 `json:"safeLow"`
}

func (r stationResponse) forPriority(priority chain.Priority) uint64 {
	switch priority {
	case chain.Lowest, chain.Low:
		return r.Low
	case chain.Normal:
		return r.Average
	case chain.High:
		return r.Fast
	case chain.Highest:
		return r.Fastest
	default:
		return r.Average
	}
}

// HTTPStation is a gas oracle backed by an ETH-Gas-Station-style HTTP API.
// It only ever produces legacy gas prices (the API it speaks predates
// EIP-1559), so it is only appropriate for chain.Descriptor{IsLegacy:
// true}; Quote returns an error otherwise.
type HTTPStation struct {
	url    string
	apiKey string
	http   network.Http
}

// NewHTTPStation constructs an HTTPStation oracle against url, appending
// apiKey as a query parameter on every request.
func NewHTTPStation(url, apiKey string, httpClient network.Http) *HTTPStation {
	if httpClient == nil {
		httpClient = network.NewHttp()
	}
	return &HTTPStation{url: url, apiKey: apiKey, http: httpClient}
}

func (s *HTTPStation) Quote(ctx context.Context, priority chain.Priority, desc chain.Descriptor) (chain.Quote, error) {
	if !desc.IsLegacy {
		return chain.Quote{}, fmt.Errorf("oracle: http gas station only supports legacy chains")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?api-key=%s", s.url, s.apiKey), nil)
	if err != nil {
		return chain.Quote{}, err
	}

	body, err := s.http.Get(req)
	if err != nil {
		return chain.Quote{}, fmt.Errorf("oracle: gas station request failed: %w", err)
	}

	var resp stationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return chain.Quote{}, fmt.Errorf("oracle: could not parse gas station response: %w", err)
	}

	gasPrice := new(big.Int).Mul(big.NewInt(int64(resp.forPriority(priority))), gweiToWei)
	return chain.Quote{GasPrice: gasPrice}, nil
}
