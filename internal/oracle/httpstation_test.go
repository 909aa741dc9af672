package oracle

import (
	"context"
	"math/big"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartesi/tx-manager/internal/chain"
	"github.com/cartesi/tx-manager/network"
)

func TestHTTPStation_Quote_RejectsNonLegacyChain(t *testing.T) {
	station := NewHTTPStation("http://example.invalid", "key", &network.MockHttp{})

	_, err := station.Quote(context.Background(), chain.Normal, chain.Descriptor{IsLegacy: false})

	require.Error(t, err)
}

func TestHTTPStation_Quote_ConvertsGweiToWei(t *testing.T) {
	mock := &network.MockHttp{
		GetFunc: func(req *http.Request) ([]byte, error) {
			return []byte(`{"fast":50,"fastest":80,"average":30,"safeLow":10}`), nil
		},
	}
	station := NewHTTPStation("http://example.invalid", "key", mock)

	quote, err := station.Quote(context.Background(), chain.High, chain.Descriptor{IsLegacy: true})

	require.NoError(t, err)
	want := new(big.Int).Mul(big.NewInt(50), gweiToWei)
	assert.Equal(t, 0, want.Cmp(quote.GasPrice))
}

func TestHTTPStation_Quote_PropagatesRequestError(t *testing.T) {
	mock := &network.MockHttp{
		GetFunc: func(req *http.Request) ([]byte, error) {
			return nil, assertErr
		},
	}
	station := NewHTTPStation("http://example.invalid", "key", mock)

	_, err := station.Quote(context.Background(), chain.Normal, chain.Descriptor{IsLegacy: true})

	require.Error(t, err)
}

func TestHTTPStation_Quote_RejectsUnparsableResponse(t *testing.T) {
	mock := &network.MockHttp{
		GetFunc: func(req *http.Request) ([]byte, error) {
			return []byte(`not json`), nil
		},
	}
	station := NewHTTPStation("http://example.invalid", "key", mock)

	_, err := station.Quote(context.Background(), chain.Normal, chain.Descriptor{IsLegacy: true})

	require.Error(t, err)
}
