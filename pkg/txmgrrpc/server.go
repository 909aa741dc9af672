package txmgrrpc

import (
	"fmt"
	"net"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sisu-network/lib/log"
)

// Server wraps a go-ethereum *rpc.Server, serving it over plain HTTP. The
// listen address is caller-supplied rather than port-only, since this
// module has no fixed default port convention of its own.
type Server struct {
	rpcServer     *rpc.Server
	listenAddress string
}

// NewServer registers handler under the "txmgr" namespace and returns a
// Server ready to Run on listenAddress (e.g. "0.0.0.0:8645").
func NewServer(handler *Handler, listenAddress string) (*Server, error) {
	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName("txmgr", handler); err != nil {
		return nil, fmt.Errorf("txmgrrpc: register handler: %w", err)
	}
	return &Server{rpcServer: rpcServer, listenAddress: listenAddress}, nil
}

// Run listens on s.listenAddress and serves JSON-RPC until the listener
// fails.
func (s *Server) Run() error {
	listener, err := net.Listen("tcp", s.listenAddress)
	if err != nil {
		return fmt.Errorf("txmgrrpc: listen on %s: %w", s.listenAddress, err)
	}

	httpServer := &http.Server{Handler: s.rpcServer}
	log.Infof("txmgrrpc: serving at %s", s.listenAddress)
	return httpServer.Serve(listener)
}
