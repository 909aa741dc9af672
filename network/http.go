// Package network is the thin HTTP facade the gas station oracle
// (internal/oracle.HTTPStation) talks through, so tests can substitute
// MockHttp instead of hitting a real pricing API.
package network

import (
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

type Http interface {
	Get(req *http.Request) ([]byte, error)
}

// DefaultHttp is Http backed by a real *http.Client with a bounded
// request timeout — a gas station query must not be allowed to hang the
// manager's poll tick indefinitely.
type DefaultHttp struct {
	client *http.Client
}

// NewHttp constructs a DefaultHttp with defaultTimeout.
func NewHttp() Http {
	return &DefaultHttp{client: &http.Client{Timeout: defaultTimeout}}
}

func (d *DefaultHttp) Get(req *http.Request) ([]byte, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
